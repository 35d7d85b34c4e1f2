// Package config reads application settings from a config file, the
// environment and command line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"threshold-studio/internal/pixel"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

const (
	// FileName is the config file looked up in the home directory (without extension).
	FileName = ".threshold-studio"
	// EnvPrefix prefixes every environment override, e.g. TSTUDIO_EXPORT_QUALITY.
	EnvPrefix = "TSTUDIO"
)

// Keys understood by Load.
const (
	KeyThreshold      = "threshold"
	KeyWorkers        = "workers"
	KeyDecoder        = "decoder"
	KeyExportFormat   = "export.format"
	KeyExportQuality  = "export.quality"
	KeyLogLevel       = "log.level"
	KeyLogJSON        = "log.json"
	KeyMaxUploadBytes = "max_upload_bytes"
)

// Decoder backends.
const (
	DecoderImaging = "imaging"
	DecoderOpenCV  = "opencv"
)

// Config is the validated, typed form of the settings.
type Config struct {
	Threshold      int
	Workers        int
	Decoder        string
	ExportFormat   string
	ExportQuality  int
	LogLevel       string
	LogJSON        bool
	MaxUploadBytes int64
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyThreshold, 0)
	v.SetDefault(KeyWorkers, 0)
	v.SetDefault(KeyDecoder, DecoderImaging)
	v.SetDefault(KeyExportFormat, "jpg")
	v.SetDefault(KeyExportQuality, 95)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogJSON, false)
	v.SetDefault(KeyMaxUploadBytes, 10<<20)
}

// Init wires v to its sources. When cfgFile is empty the home directory is
// searched for FileName. A missing config file is not an error; the returned
// string is the file actually used, if any.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			return "", fmt.Errorf("locate home directory: %w", err)
		}
		v.AddConfigPath(home)
		v.SetConfigName(FileName)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("read config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load extracts and validates a Config from v.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Threshold:      v.GetInt(KeyThreshold),
		Workers:        v.GetInt(KeyWorkers),
		Decoder:        strings.ToLower(v.GetString(KeyDecoder)),
		ExportFormat:   strings.ToLower(strings.TrimPrefix(v.GetString(KeyExportFormat), ".")),
		ExportQuality:  v.GetInt(KeyExportQuality),
		LogLevel:       v.GetString(KeyLogLevel),
		LogJSON:        v.GetBool(KeyLogJSON),
		MaxUploadBytes: v.GetInt64(KeyMaxUploadBytes),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field. Out-of-range values are errors, not clamped.
func (c Config) Validate() error {
	if err := pixel.CheckThreshold(c.Threshold); err != nil {
		return fmt.Errorf("config %s: %w", KeyThreshold, err)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config %s: must not be negative, got %d", KeyWorkers, c.Workers)
	}
	switch c.Decoder {
	case DecoderImaging, DecoderOpenCV:
	default:
		return fmt.Errorf("config %s: unknown decoder %q", KeyDecoder, c.Decoder)
	}
	if c.ExportQuality < 1 || c.ExportQuality > 100 {
		return fmt.Errorf("config %s: must be within [1,100], got %d", KeyExportQuality, c.ExportQuality)
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config %s: must be positive, got %d", KeyMaxUploadBytes, c.MaxUploadBytes)
	}
	return nil
}
