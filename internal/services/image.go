package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"threshold-studio/internal/logger"
	"threshold-studio/internal/models"
	"threshold-studio/internal/pixel"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

// ErrTooLarge is returned for uploads above the configured size limit.
var ErrTooLarge = errors.New("image exceeds upload limit")

// Decoder turns encoded image bytes into an RGBA buffer.
type Decoder interface {
	Decode(data []byte) (pixel.Buffer, string, error)
}

// Encoder is implemented by decoders that also write images. When the
// configured decoder is one, exports go through it.
type Encoder interface {
	Encode(format string, buf pixel.Buffer, quality int) ([]byte, error)
}

// ImagingDecoder decodes with the registered Go codecs through imaging,
// applying EXIF orientation.
type ImagingDecoder struct{}

func (ImagingDecoder) Decode(data []byte) (pixel.Buffer, string, error) {
	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return pixel.Buffer{}, "", fmt.Errorf("failed to detect image format: %w", err)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return pixel.Buffer{}, "", fmt.Errorf("failed to decode image: %w", err)
	}

	buf, err := pixel.FromImage(img)
	if err != nil {
		return pixel.Buffer{}, "", err
	}
	return buf, format, nil
}

// ImageService handles image loading and export.
type ImageService struct {
	logger   logger.Logger
	decoder  Decoder
	maxBytes int64
	quality  int
}

// NewImageService creates an image service. maxBytes bounds uploads and
// quality is the JPEG export quality.
func NewImageService(log logger.Logger, decoder Decoder, maxBytes int64, quality int) *ImageService {
	if decoder == nil {
		decoder = ImagingDecoder{}
	}
	return &ImageService{
		logger:   log,
		decoder:  decoder,
		maxBytes: maxBytes,
		quality:  quality,
	}
}

// Decode reads an encoded image from r. name is only used for bookkeeping
// and format fallback.
func (is *ImageService) Decode(ctx context.Context, r io.Reader, name string) (*models.ImageData, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	data, err := io.ReadAll(io.LimitReader(r, is.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	if int64(len(data)) > is.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, is.maxBytes)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	buf, format, err := is.decoder.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	if format == "" {
		format = formatFromName(name)
	}

	imageData := &models.ImageData{
		Name:     name,
		Format:   format,
		Buffer:   buf,
		FileSize: int64(len(data)),
		LoadTime: time.Now(),
	}

	is.logger.Info("ImageService", "image decoded", map[string]interface{}{
		"name":   name,
		"format": format,
		"width":  buf.Width,
		"height": buf.Height,
		"bytes":  len(data),
	})

	return imageData, nil
}

// Open decodes the image file at path.
func (is *ImageService) Open(ctx context.Context, path string) (*models.ImageData, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return is.Decode(ctx, f, filepath.Base(path))
}

// Export encodes buf to w in the given format ("jpg", "png", "gif", "bmp",
// "tiff").
func (is *ImageService) Export(w io.Writer, buf pixel.Buffer, format string) error {
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("no image data to save: %w", err)
	}

	format = strings.TrimPrefix(strings.ToLower(format), ".")
	f, err := imaging.FormatFromExtension(format)
	if err != nil {
		return fmt.Errorf("export format %q: %w", format, err)
	}

	// OpenCV has no GIF writer
	if enc, ok := is.decoder.(Encoder); ok && f != imaging.GIF {
		data, err := enc.Encode(format, buf, is.quality)
		if err != nil {
			return fmt.Errorf("export %s: %w", format, err)
		}
		_, err = w.Write(data)
		return err
	}

	return imaging.Encode(w, buf.Image(), f, imaging.JPEGQuality(is.quality))
}

// ExportFile writes buf to path, choosing the format from its extension.
func (is *ImageService) ExportFile(path string, buf pixel.Buffer) error {
	if err := buf.Validate(); err != nil {
		return fmt.Errorf("no image data to save: %w", err)
	}

	format := strings.TrimPrefix(filepath.Ext(path), ".")
	if _, err := imaging.FormatFromExtension(format); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := is.Export(f, buf, format); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}

	is.logger.Info("ImageService", "image exported", map[string]interface{}{
		"path":   path,
		"width":  buf.Width,
		"height": buf.Height,
	})
	return nil
}

// SupportedFormats lists the export formats.
func (is *ImageService) SupportedFormats() []string {
	return []string{"jpg", "jpeg", "png", "gif", "bmp", "tif", "tiff"}
}

func formatFromName(name string) string {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".jpg", ".jpeg":
		return "jpeg"
	case ".tif", ".tiff":
		return "tiff"
	case "":
		return ""
	default:
		return ext[1:]
	}
}
