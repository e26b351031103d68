package commands

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/floodlink-io/floodlink/internal/state"
	"github.com/spf13/cobra"
)

// RunOptions holds options for the run command.
type RunOptions struct {
	Until   string
	DT      float64
	OutDir  string
	NoState bool
}

// NewRunCommand creates the run command.
func NewRunCommand() *cobra.Command {
	opts := &RunOptions{}

	cmd := &cobra.Command{
		Use:   "run <parfile>",
		Short: "Run a model from a par file",
		Long: `Initialize the model from a par file and step it forward in time.

By default the model runs to the end time derived from sim_time. Use
--until to stop earlier, and --dt to override the update interval. Each
update is recorded in the run-history database unless --no-state is set.`,
		Example: `  # Run a model to its configured end time
  floodlink run bench.par

  # Run until a given model datetime
  floodlink run bench.par --until "2000-01-02 12:00:00"

  # Run with hourly updates into a different output directory
  floodlink run bench.par --dt 3600 --out-dir results/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRun(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.Until, "until", "", "Model datetime to stop at (YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)")
	cmd.Flags().Float64Var(&opts.DT, "dt", 0, "Update interval in seconds (default: model timestep)")
	cmd.Flags().StringVar(&opts.OutDir, "out-dir", "", "Redirect model output to this directory")
	cmd.Flags().BoolVar(&opts.NoState, "no-state", false, "Skip recording the run in the state database")

	return cmd
}

func runRun(cmd *cobra.Command, parPath string, opts *RunOptions) error {
	cmdCtx := NewCommandContext(cmd)
	cfg := cmdCtx.Cfg
	out := cmd.OutOrStdout()

	model, err := newModel(cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}

	if err := model.InitializeConfig(parPath, nil); err != nil {
		return fmt.Errorf("failed to read %s: %w", parPath, err)
	}
	if opts.OutDir != "" {
		if err := model.SetOutDir(opts.OutDir); err != nil {
			return err
		}
	}
	if err := model.InitializeModel(); err != nil {
		return fmt.Errorf("failed to initialize model: %w", err)
	}

	target, err := model.EndTime()
	if err != nil {
		return err
	}
	if opts.Until != "" {
		target, err = parseModelTime(opts.Until)
		if err != nil {
			return err
		}
		end, err := model.EndTime()
		if err != nil {
			return err
		}
		if target.After(end) {
			return fmt.Errorf("--until %s is past the model end time %s",
				target.Format(time.DateTime), end.Format(time.DateTime))
		}
	}

	var store state.Store
	var run *state.Run
	if !opts.NoState {
		store, err = openStore(cfg, cmdCtx.Logger)
		if err != nil {
			return err
		}
		defer store.Close()

		absPath, _ := filepath.Abs(parPath)
		run, err = store.CreateRun(model.Name(), absPath, cfg.Engine)
		if err != nil {
			return fmt.Errorf("failed to record run: %w", err)
		}
	}

	startWall := time.Now()
	cur, err := model.CurrentTime()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Running %s from %s to %s\n",
		model.Name(), cur.Format(time.DateTime), target.Format(time.DateTime))

	seq := 0
	for cur.Before(target) {
		stepWall := time.Now()
		if err := model.Update(opts.DT); err != nil {
			finishRun(store, run, state.RunStatusFailed, err.Error())
			return fmt.Errorf("update %d failed: %w", seq, err)
		}
		if cur, err = model.CurrentTime(); err != nil {
			finishRun(store, run, state.RunStatusFailed, err.Error())
			return err
		}
		if store != nil {
			if err := store.RecordStep(run.ID, seq, cur, model.LastIterations(), time.Since(stepWall)); err != nil {
				cmdCtx.Logger.Warn("failed to record step", "seq", seq, "error", err)
			}
		}
		seq++
	}

	if err := model.Finalize(); err != nil {
		finishRun(store, run, state.RunStatusFailed, err.Error())
		return fmt.Errorf("failed to finalize model: %w", err)
	}
	finishRun(store, run, state.RunStatusCompleted, "")

	if run != nil {
		fmt.Fprintf(out, "Run %s: %s\n", run.ID, state.RunStatusCompleted)
	}
	fmt.Fprintf(out, "Completed %d updates, model time %s, in %s\n",
		seq, cur.Format(time.DateTime), time.Since(startWall).Round(time.Millisecond))
	return nil
}

func finishRun(store state.Store, run *state.Run, status state.RunStatus, errMsg string) {
	if store == nil || run == nil {
		return
	}
	_ = store.FinishRun(run.ID, status, errMsg)
}

// parseModelTime accepts a model datetime or bare date.
func parseModelTime(s string) (time.Time, error) {
	for _, layout := range []string{time.DateTime, "2006-01-02T15:04:05", time.DateOnly} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time %q (want YYYY-MM-DD or YYYY-MM-DD HH:MM:SS)", s)
}
