package main

import (
	"context"
	"io"
	"net/http"
	"net/http/pprof"
	"time"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"github.com/spf13/cobra"

	"diesel.com/drape/app"
	"diesel.com/drape/cloth"
	"diesel.com/drape/config"
	"diesel.com/drape/record"
)

type simulateFlags struct {
	ticks       int
	reportEvery int
	adminAddr   string
	profile     string
	profileDir  string
	output      string
	recordEvery int
	watch       bool
}

//report is one JSON line of the progress stream.
type report struct {
	Tick            int           `json:"tick"`
	Time            float64       `json:"time"`
	Wind            float32       `json:"wind"`
	MaxSpeed        float32       `json:"max_speed"`
	RepulseContacts int           `json:"repulse_contacts"`
	SphereContacts  int           `json:"sphere_contacts"`
	OctreeNodes     int           `json:"octree_nodes"`
	TickDuration    time.Duration `json:"tick_duration"`
}

func newSimulateCommand(root *rootFlags) *cobra.Command {
	var flags simulateFlags

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Runs the simulation headless.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			tuner, err := openTuner(cmd, root)
			if err != nil {
				return err
			}

			if flags.watch {
				tuner.Watch(nil)
			}

			switch flags.profile {
			case "":
			case "cpu":
				defer profile.Start(profile.CPUProfile, profile.ProfilePath(flags.profileDir), profile.NoShutdownHook).Stop()
			case "mem":
				defer profile.Start(profile.MemProfile, profile.ProfilePath(flags.profileDir), profile.NoShutdownHook).Stop()
			default:
				return errors.New("unknown profile mode").
					WithTag("profile", flags.profile)
			}

			if flags.adminAddr != "" {
				stop := serveAdmin(flags.adminAddr)
				defer stop()
			}

			return simulate(cmd.Context(), tuner, flags, cmd.OutOrStdout())
		},
	}

	f := cmd.Flags()
	f.IntVarP(&flags.ticks, "ticks", "n", 600, "Number of ticks to run.")
	f.IntVar(&flags.reportEvery, "report-every", 60, "Write a JSON stats line every N ticks. 0 disables.")
	f.StringVar(&flags.adminAddr, "admin-addr", "", "Serve Prometheus metrics and pprof on this address.")
	f.StringVar(&flags.profile, "profile", "", "Write a cpu or mem profile.")
	f.StringVar(&flags.profileDir, "profile-dir", ".", "Directory for profile output.")
	f.StringVarP(&flags.output, "output", "o", "", "Record the trajectory into this HDF5 file.")
	f.IntVar(&flags.recordEvery, "record-every", 1, "Record one frame every N ticks.")
	f.BoolVar(&flags.watch, "watch", false, "Reload tunables when the preset file changes.")
	return cmd
}

func simulate(ctx context.Context, tuner *config.Tuner, flags simulateFlags, out io.Writer) (err error) {
	preset := tuner.Preset()
	sim, err := cloth.NewSimulation(preset.Options())
	if err != nil {
		return err
	}
	controls := app.NewControls(tuner, sim)

	var w *record.Writer
	if flags.output != "" {
		encoded, err := config.Encode(preset)
		if err != nil {
			return err
		}

		w, err = record.Create(record.Options{
			Path:       flags.output,
			Ticks:      flags.ticks,
			Every:      flags.recordEvery,
			Particles:  sim.Cloth.Count,
			Attributes: map[string]string{"preset": string(encoded), "version": version},
		})
		if err != nil {
			return err
		}
		defer func() {
			if cerr := w.Close(); err == nil {
				err = cerr
			}
		}()

		if err := w.Observe(sim); err != nil {
			return err
		}
	}

	enc := json.NewEncoder(out)
	start := time.Now()

	for i := 0; i < flags.ticks; i++ {
		if ctx.Err() != nil {
			logs.Warn(errors.New("simulation interrupted").
				WithTag("tick", sim.Timer.Ticks).
				Wrap(ctx.Err()))
			break
		}

		if err := controls.Tick(); err != nil {
			return err
		}

		if w != nil {
			if err := w.Observe(sim); err != nil {
				return err
			}
		}

		if flags.reportEvery > 0 && sim.Timer.Ticks%flags.reportEvery == 0 {
			if err := enc.Encode(newReport(sim)); err != nil {
				return errors.New("writing report failed").Wrap(err)
			}
		}
	}

	logs.WithTag("ticks", sim.Timer.Ticks).
		WithTag("particles", sim.Cloth.Count).
		WithTag("elapsed", time.Since(start).String()).
		Info("simulation done")
	return nil
}

func newReport(sim *cloth.Simulation) report {
	return report{
		Tick:            sim.Timer.Ticks,
		Time:            sim.Timer.T,
		Wind:            sim.Wind(),
		MaxSpeed:        sim.MaxSpeed(),
		RepulseContacts: sim.Stats.RepulseContacts,
		SphereContacts:  sim.Stats.SphereContacts,
		OctreeNodes:     sim.Stats.Nodes,
		TickDuration:    sim.Stats.Duration,
	}
}

//serveAdmin serves metrics and pprof in the background and returns a function
//that shuts the server down.
func serveAdmin(addr string) func() {
	var admin http.ServeMux
	admin.Handle("/metrics", promhttp.Handler())
	admin.HandleFunc("/debug/pprof/", pprof.Index)
	admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
	admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	admin.HandleFunc("/debug/pprof/trace", pprof.Trace)

	server := &http.Server{Addr: addr, Handler: &admin}
	go func() {
		logs.WithTag("addr", addr).Info("serving admin")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logs.WithTag("addr", addr).Error(errors.New("admin server failed").Wrap(err))
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}
}
