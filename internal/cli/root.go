// Package cli implements the threshold-studio command line.
package cli

import (
	"context"
	"fmt"
	"os"

	"threshold-studio/internal/config"
	"threshold-studio/internal/logger"
	"threshold-studio/internal/models"
	"threshold-studio/internal/opencv"
	"threshold-studio/internal/services"
	"threshold-studio/internal/timing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// app carries what every subcommand needs once configuration is loaded.
type app struct {
	cfgFile string
	v       *viper.Viper
	cfg     config.Config
	log     logger.Logger
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// NewRootCmd builds the command tree with its own viper instance.
func NewRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "threshold-studio",
		Short: "Binarize images at a chosen intensity threshold",
		Long: `Threshold Studio computes the intensity histogram of an image and turns it
into a black and white image: pixels whose intensity floor((R+G+B)/3) is at or
above the threshold become white, the others black.`,
		SilenceUsage:      true,
		PersistentPreRunE: a.init,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is $HOME/"+config.FileName+".yaml)")
	flags.Int("workers", 0, "goroutines per pass (0 uses every CPU, 1 is sequential)")
	flags.String("decoder", config.DecoderImaging, "image decoder: imaging or opencv")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	a.v.BindPFlag(config.KeyWorkers, flags.Lookup("workers"))
	a.v.BindPFlag(config.KeyDecoder, flags.Lookup("decoder"))
	a.v.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level"))

	rootCmd.AddCommand(
		newHistogramCmd(a),
		newApplyCmd(a),
		newGUICmd(a),
	)
	return rootCmd
}

func (a *app) init(cmd *cobra.Command, _ []string) error {
	used, err := config.Init(a.v, a.cfgFile)
	if err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), logger.ParseLevel(cfg.LogLevel), cfg.LogJSON)

	if used != "" {
		a.log.Debug("CLI", "using config file", map[string]interface{}{"path": used})
	}
	return nil
}

func (a *app) decoder() services.Decoder {
	if a.cfg.Decoder == config.DecoderOpenCV {
		return opencv.NewDecoder()
	}
	return services.ImagingDecoder{}
}

func (a *app) imageService() *services.ImageService {
	return services.NewImageService(a.log, a.decoder(), a.cfg.MaxUploadBytes, a.cfg.ExportQuality)
}

func (a *app) processingService() *services.ProcessingService {
	return services.NewProcessingService(models.NewSession(), a.log, timing.NewTracker(a.log, 0), a.cfg.Workers)
}

// load decodes path and computes its original histogram.
func (a *app) load(ctx context.Context, path string) (*models.ImageData, *services.ImageService, *services.ProcessingService, error) {
	images := a.imageService()
	processing := a.processingService()

	img, err := images.Open(ctx, path)
	if err != nil {
		return nil, nil, nil, err
	}
	if _, err := processing.Analyze(ctx, img); err != nil {
		return nil, nil, nil, err
	}
	return img, images, processing, nil
}
