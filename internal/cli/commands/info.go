package commands

import (
	"fmt"
	"time"

	"github.com/floodlink-io/floodlink/internal/lfp"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// NewInfoCommand creates the info command.
func NewInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <parfile>",
		Short: "Show model identity, timing and variables for a par file",
		Long: `Read a par file and print the model identity, the derived simulation
window, the configuration attributes, and the exchange variable table.

The model binary is not started; everything shown comes from the par
file and the adapter's variable metadata.`,
		Example: `  # Inspect a model setup
  floodlink info bench.par`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd, args[0])
		},
	}

	return cmd
}

func runInfo(cmd *cobra.Command, parPath string) error {
	cmdCtx := NewCommandContext(cmd)
	out := cmd.OutOrStdout()

	model, err := newModel(cmdCtx.Cfg, cmdCtx.Logger)
	if err != nil {
		return err
	}
	if err := model.InitializeConfig(parPath, nil); err != nil {
		return fmt.Errorf("failed to read %s: %w", parPath, err)
	}

	fmt.Fprintf(out, "%s (%s) v%s\n", model.Name(), model.LongName(), model.Version())

	start, err := model.StartTime()
	if err != nil {
		return err
	}
	end, err := model.EndTime()
	if err != nil {
		return err
	}
	dt, err := model.TimeStep()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Simulation: %s to %s, initial timestep %g %s\n\n",
		start.Format(time.DateTime), end.Format(time.DateTime), dt, model.TimeUnits())

	names, err := model.AttributeNames()
	if err != nil {
		return err
	}
	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Attribute", "Value"})
	for _, name := range names {
		value, err := model.AttributeValue(name)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{name, value})
	}
	t.Render()
	fmt.Fprintln(out)

	vt := table.NewWriter()
	vt.SetOutputMirror(out)
	vt.SetStyle(table.StyleLight)
	vt.AppendHeader(table.Row{"Variable", "Units", "Role", "Staggering"})
	for _, name := range lfp.VarNames() {
		info := model.Info(name)
		vt.AppendRow(table.Row{name, info.Units, info.Role, info.Staggering})
	}
	vt.Render()

	return nil
}
