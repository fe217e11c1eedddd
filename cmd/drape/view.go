package main

import (
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/spf13/cobra"

	"diesel.com/drape/app"
	"diesel.com/drape/cloth"
	"diesel.com/drape/config"
)

func newViewCommand(root *rootFlags) *cobra.Command {
	opts := app.DefaultViewerOptions()
	var watch bool

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Opens the interactive viewer.",
		Long: `Opens the interactive viewer.

Keys:
  Space        toggle wireframe
  C            toggle self collisions
  S            toggle sphere collisions
  O            toggle the octree overlay
  P            pause
  R            reset the cloth
  + / -        wind up / down
  Arrows       move the selected sphere (up/down: y, left/right: z)
  Tab          select the next sphere
  Escape       quit

Drag with the left mouse button to orbit, scroll to zoom.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuner, err := openTuner(cmd, root)
			if err != nil {
				return err
			}

			if watch {
				tuner.Watch(func(p config.Preset) {
					logs.WithTag("wind", p.Params.WindTarget).
						WithTag("spheres", len(p.Spheres)).
						Debug("tunables reloaded")
				})
			}

			sim, err := cloth.NewSimulation(tuner.Preset().Options())
			if err != nil {
				return err
			}
			return app.Run(cmd.Context(), tuner, sim, opts)
		},
	}

	f := cmd.Flags()
	f.IntVar(&opts.Width, "width", opts.Width, "Window width.")
	f.IntVar(&opts.Height, "height", opts.Height, "Window height.")
	f.BoolVar(&watch, "watch", true, "Reload tunables when the preset file changes.")
	return cmd
}
