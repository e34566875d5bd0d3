// Package cli implements the keyloop command line: an interactive menu plus
// record, play, inspect and version commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dshills/keyloop/internal/app"
	"github.com/dshills/keyloop/internal/config"
)

// env carries state shared by every command of one invocation.
type env struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config

	// interactive reports whether r is attached to a terminal.
	interactive func(r io.Reader) bool

	// newApp builds the App a session runs on.
	newApp func(cfg *config.Config) (*app.App, error)
}

func newEnv() *env {
	return &env{
		v:           viper.New(),
		interactive: isTerminal,
		newApp: func(cfg *config.Config) (*app.App, error) {
			return app.New(cfg, app.Options{})
		},
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// flagBindings maps persistent flags to config keys.
var flagBindings = map[string]string{
	"record":         "record.path",
	"watch":          "record.watch",
	"source":         "input.source",
	"sink":           "output.sink",
	"idle-stop":      "session.idle_stop",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"metrics-listen": "metrics.listen",
}

func newRootCommand(e *env, version string) *cobra.Command {
	root := &cobra.Command{
		Use:   "keyloop",
		Short: "Record and replay keyboard and mouse input",
		Long: `keyloop records keyboard and pointer input between a start and a stop
hotkey, saves it as a JSON record and replays it in a loop with the
original timing until the stop hotkey is pressed.

Run without a command to open the interactive menu.`,
		Version:       version,
		RunE:          e.runMenu,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.v, e.cfgFile)
			if err != nil {
				return err
			}
			e.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&e.cfgFile, "config", "c", "", "config file (default: keyloop.toml, keyloop.yaml or the user config dir)")
	flags.StringP("record", "r", "", "record file path")
	flags.Bool("watch", false, "reload the record file when it changes on disk")
	flags.String("source", "", "input source: terminal or none")
	flags.String("sink", "", "output sink: trace or virtual")
	flags.String("idle-stop", "", "stop hotkey while idle: ignore, exit or disarm")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("metrics-listen", "", "serve Prometheus metrics on this address")
	for name, key := range flagBindings {
		// Lookup never fails for flags registered above.
		_ = e.v.BindPFlag(key, flags.Lookup(name))
	}

	root.AddCommand(
		newMenuCommand(e),
		newRecordCommand(e),
		newPlayCommand(e),
		newInspectCommand(e),
		newVersionCommand(version),
	)
	return root
}

// Execute runs the root command.
func Execute(ctx context.Context, version string) error {
	root := newRootCommand(newEnv(), version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the keyloop version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "keyloop %s\n", version)
		},
	}
}
