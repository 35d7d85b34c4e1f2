package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"threshold-studio/internal/chart"
	"threshold-studio/internal/config"
	"threshold-studio/internal/histogram"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

func newApplyCmd(a *app) *cobra.Command {
	var (
		output   string
		chartDir string
	)

	cmd := &cobra.Command{
		Use:   "apply <image>",
		Short: "Binarize an image at a threshold and export it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, images, processing, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			result, err := processing.ApplyThreshold(cmd.Context(), a.cfg.Threshold)
			if err != nil {
				return err
			}

			if output == "" {
				output = "edited_image." + a.cfg.ExportFormat
			}
			if err := images.ExportFile(output, result.Buffer); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "image: %s (%dx%d)\n", img.Name, img.Buffer.Width, img.Buffer.Height)
			fmt.Fprintf(out, "threshold: %d\n", result.Threshold)
			fmt.Fprintf(out, "white: %d\n", result.White())
			fmt.Fprintf(out, "black: %d\n", result.Black())
			fmt.Fprintf(out, "output: %s\n", output)

			if chartDir == "" {
				return nil
			}
			if err := os.MkdirAll(chartDir, 0o755); err != nil {
				return err
			}
			snap := processing.Snapshot()
			charts := []struct {
				name  string
				h     histogram.Histogram
				style chart.Style
			}{
				{"original_histogram.png", snap.OriginalHistogram, chart.OriginalStyle},
				{"modified_histogram.png", snap.ModifiedHistogram, chart.ModifiedStyle},
			}
			for _, c := range charts {
				path := filepath.Join(chartDir, c.name)
				if err := imaging.Save(chart.Render(c.h, c.style), path); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
			}
			fmt.Fprintf(out, "histograms: %s\n", chartDir)
			return nil
		},
	}

	cmd.Flags().IntP("threshold", "t", 0, "intensity threshold in [0,255]; ties become white")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file; the extension picks the format (default edited_image.<export.format>)")
	cmd.Flags().StringVar(&chartDir, "histograms", "", "write original and modified histogram charts into this directory")
	a.v.BindPFlag(config.KeyThreshold, cmd.Flags().Lookup("threshold"))
	return cmd
}
