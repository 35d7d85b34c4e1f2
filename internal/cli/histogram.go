package cli

import (
	"fmt"
	"io"

	"threshold-studio/internal/chart"
	"threshold-studio/internal/histogram"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
)

func newHistogramCmd(a *app) *cobra.Command {
	var chartPath string

	cmd := &cobra.Command{
		Use:   "histogram <image>",
		Short: "Print the intensity histogram of an image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, _, processing, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			h := processing.Snapshot().OriginalHistogram

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "image: %s (%dx%d, %s)\n", img.Name, img.Buffer.Width, img.Buffer.Height, img.Format)
			printHistogram(out, h)

			if chartPath != "" {
				if err := imaging.Save(chart.Render(h, chart.OriginalStyle), chartPath); err != nil {
					return fmt.Errorf("write chart: %w", err)
				}
				fmt.Fprintf(out, "chart: %s\n", chartPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&chartPath, "png", "", "also draw the histogram chart to this file")
	return cmd
}

func printHistogram(w io.Writer, h histogram.Histogram) {
	populated := h.Populated()
	fmt.Fprintf(w, "pixels: %d\n", h.Total())
	fmt.Fprintf(w, "populated buckets: %d\n", len(populated))
	for _, i := range populated {
		fmt.Fprintf(w, "%5d: %d\n", i, h[i])
	}
}
