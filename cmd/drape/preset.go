package main

import (
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"diesel.com/drape/config"
)

func newPresetCommand(root *rootFlags) *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "preset",
		Short: "Prints the effective preset as TOML.",
		Long: `Prints the effective preset as TOML: defaults, then the preset file, then
DRAPE_* environment variables, then flags and --set overrides.

With --check, the preset file is also decoded strictly and unknown keys are
reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuner, err := openTuner(cmd, root)
			if err != nil {
				return err
			}

			if check && root.preset != "" {
				unknown, err := config.Check(afero.NewOsFs(), root.preset)
				if err != nil {
					return err
				}
				for _, key := range unknown {
					logs.Warn(errors.New("unknown preset key").
						WithType(config.ErrTypeConfig).
						WithTag("key", key).
						WithTag("path", root.preset))
				}
				if len(unknown) != 0 {
					return errors.Newf("preset has %d unknown keys", len(unknown)).
						WithType(config.ErrTypeConfig).
						WithTag("path", root.preset)
				}
			}

			b, err := config.Encode(tuner.Preset())
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(b)
			return err
		},
	}

	cmd.Flags().BoolVar(&check, "check", false, "Report preset file keys that do not map to any setting.")
	return cmd
}
