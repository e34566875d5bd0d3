package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/keyloop/internal/app"
)

// ErrNotInteractive is returned when the menu is started without a
// terminal on standard input.
var ErrNotInteractive = errors.New("the menu needs an interactive terminal; use the record or play commands")

func newMenuCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "menu",
		Short: "Open the interactive menu (default)",
		Args:  cobra.NoArgs,
		RunE:  e.runMenu,
	}
}

func (e *env) runMenu(cmd *cobra.Command, args []string) error {
	if !e.interactive(cmd.InOrStdin()) {
		return ErrNotInteractive
	}

	a, err := e.newApp(e.cfg)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	in := bufio.NewReader(cmd.InOrStdin())
	return menu(cmd.Context(), a, in, cmd.OutOrStdout())
}

const menuText = `
What do you want to do?
  1 : Play a record
  2 : Create a new record
  3 : Quit`

// menu loops over the main menu until the user quits, input ends or ctx is
// canceled. A failed session is reported and the menu shown again.
func menu(ctx context.Context, a *app.App, in *bufio.Reader, out io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprintln(out, menuText)
		fmt.Fprint(out, "> ")

		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) == "" {
			fmt.Fprintln(out)
			return nil
		}

		var serr error
		switch strings.TrimSpace(line) {
		case "1":
			serr = play(ctx, a, out, false)
		case "2":
			serr = record(ctx, a, in, out, false)
		case "3":
			fmt.Fprintln(out, "Good bye!")
			return nil
		default:
			fmt.Fprintln(out, "Invalid response")
			continue
		}

		switch {
		case errors.Is(serr, app.ErrQuit):
			fmt.Fprintln(out, "Good bye!")
			return nil
		case serr != nil && ctx.Err() != nil:
			return ctx.Err()
		case serr != nil:
			fmt.Fprintf(out, "Error: %v\n", serr)
		}
	}
}
