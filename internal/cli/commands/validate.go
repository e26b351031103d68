package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/floodlink-io/floodlink/internal/parfile"
	"github.com/spf13/cobra"
)

// requiredKeys are the par file keys the adapter cannot run without.
var requiredKeys = []string{"DEMfile", "dirroot", "sim_time", "initial_tstep"}

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <parfile>",
		Short: "Check a par file for problems",
		Long: `Parse a par file and report malformed lines and missing required keys.

Exits non-zero when the file cannot be parsed or a required key is
absent.`,
		Example: `  # Validate a model setup before running it
  floodlink validate bench.par`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, args[0])
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, parPath string) error {
	out := cmd.OutOrStdout()

	f, err := parfile.ParseFile(parPath)
	if err != nil {
		var perr *parfile.ParseError
		if errors.As(err, &perr) {
			return fmt.Errorf("%s: line %d: %q is not a KEY VALUE pair", parPath, perr.Line, perr.Text)
		}
		return err
	}

	var missing []string
	for _, key := range requiredKeys {
		if _, ok := f.Get(key); !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing required keys: %s", parPath, strings.Join(missing, ", "))
	}

	fmt.Fprintf(out, "%s: OK (%d keys)\n", parPath, f.Len())
	return nil
}
