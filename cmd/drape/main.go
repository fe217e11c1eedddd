package main

import (
	"context"
	"os"
	"strings"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"diesel.com/drape/config"
)

var (
	//The drape version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "drape_info",
		Help:        "Drape information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

//rootFlags are shared by every command.
type rootFlags struct {
	preset   string
	logLevel string
	logJSON  bool
	dt       float32
	seed     int64
	set      []string
}

func main() {
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		logs.Fatal(err)
	}
}

func newRootCommand() *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "drape",
		Short:         "Mass spring cloth simulation with octree self collisions.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.preset, "preset", "p", "", "Preset file (toml, yaml or json). Defaults apply when empty.")
	pf.StringVar(&flags.logLevel, "log-level", logs.InfoLevel.String(), "Log level (debug|info|warning|error).")
	pf.BoolVar(&flags.logJSON, "log-json", false, "Log as JSON lines.")
	pf.Float32Var(&flags.dt, "dt", config.Default().Dt, "Seconds per tick.")
	pf.Int64Var(&flags.seed, "seed", config.Default().Seed, "Wind random seed.")
	pf.StringArrayVar(&flags.set, "set", nil, "Override a preset key, e.g. --set params.wind=0.1. Repeatable.")

	root.AddCommand(
		newViewCommand(&flags),
		newSimulateCommand(&flags),
		newPresetCommand(&flags),
	)
	return root
}

//openTuner loads the preset with flag and environment overrides, applies
//--set values and configures logging from the result.
func openTuner(cmd *cobra.Command, flags *rootFlags) (*config.Tuner, error) {
	pf := cmd.Flags()
	tuner, err := config.Open(afero.NewOsFs(), flags.preset,
		config.WithFlag("log_level", pf.Lookup("log-level")),
		config.WithFlag("dt", pf.Lookup("dt")),
		config.WithFlag("seed", pf.Lookup("seed")),
	)
	if err != nil {
		return nil, err
	}

	for _, kv := range flags.set {
		i := strings.Index(kv, "=")
		if i <= 0 {
			return nil, errors.New("--set expects key=value").
				WithType(config.ErrTypeConfig).
				WithTag("set", kv)
		}
		if err := tuner.Set(strings.TrimSpace(kv[:i]), strings.TrimSpace(kv[i+1:])); err != nil {
			return nil, err
		}
	}

	setupLogs(tuner.Preset().LogLevel, flags.logJSON)
	return tuner, nil
}

func setupLogs(level string, asJSON bool) {
	logs.SetLevel(logs.ParseLevel(level))
	if asJSON {
		logs.Encoder = json.Marshal
	} else {
		logs.SetInlineEncoder()
	}
	errors.Encoder = json.Marshal
}
