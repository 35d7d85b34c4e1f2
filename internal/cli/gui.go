package cli

import (
	"threshold-studio/internal/gui"

	"github.com/spf13/cobra"
)

func newGUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "gui [image]",
		Short: "Open the interactive viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return gui.NewApplication(a.cfg, a.decoder(), a.log).Run(path)
		},
	}
}
