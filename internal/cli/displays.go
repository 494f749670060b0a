package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pmartell/ddcswitch/internal/display"
	"github.com/pmartell/ddcswitch/internal/process"
	"github.com/pmartell/ddcswitch/internal/ui"
)

func displaysCmd() *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "displays",
		Short: "List detected displays",
		Example: `  ddcswitch displays
  ddcswitch displays --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			mgr, err := newManager()
			if err != nil {
				return err
			}

			displays, err := mgr.List(ctx)
			if err != nil {
				return fmt.Errorf("failed to list displays: %w", err)
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(displays)
			}

			infos := make([]ui.DisplayInfo, len(displays))
			for i, d := range displays {
				infos[i] = ui.DisplayInfo{Number: d.Number, Name: d.Name, ID: d.ID}
			}

			renderer := ui.NewRenderer()
			renderer.RenderDisplayList(infos)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Output as JSON")

	return cmd
}

func newManager() (*display.Manager, error) {
	runner, err := process.NewRunner()
	if err != nil {
		return nil, err
	}
	return display.NewManager(runner, newLogger()), nil
}
