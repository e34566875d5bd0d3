package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dshills/keyloop/internal/macro"
	"github.com/dshills/keyloop/internal/storage"
)

func newInspectCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect [file]",
		Short: "Validate a record file and summarize it",
		Long: `Decodes a record file without playing it and prints the number of
events, the loop duration and a count per event kind. Defaults to the
configured record path.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := e.cfg.Record.Path
			if len(args) == 1 {
				path = args[0]
			}

			data, err := storage.NewFileStore().Load(path)
			if err != nil {
				return err
			}
			seq, err := macro.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			return summarize(cmd.OutOrStdout(), path, seq)
		},
	}
}

var kindOrder = []macro.Kind{
	macro.KeyPress,
	macro.KeyRelease,
	macro.PointerMove,
	macro.PointerButtonDown,
	macro.PointerButtonUp,
	macro.PointerScroll,
}

func summarize(out io.Writer, path string, seq macro.Sequence) error {
	fmt.Fprintf(out, "File:     %s\n", path)
	fmt.Fprintf(out, "Events:   %d\n", seq.Len())
	fmt.Fprintf(out, "Duration: %s\n", seq.Duration())
	if seq.IsEmpty() {
		return nil
	}

	counts := seq.CountByKind()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw)
	for _, k := range kindOrder {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(tw, "  %s\t%d\n", k, n)
		}
	}
	return tw.Flush()
}
