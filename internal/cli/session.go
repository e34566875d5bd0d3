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
	"github.com/dshills/keyloop/internal/session"
)

func newRecordCommand(e *env) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a new sequence",
		Long: `Waits for the start hotkey, records input until the stop hotkey and
then asks whether to save the record.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.newApp(e.cfg)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			in := bufio.NewReader(cmd.InOrStdin())
			return quitIsExit(record(cmd.Context(), a, in, cmd.OutOrStdout(), yes))
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "save without asking")
	return cmd
}

func newPlayCommand(e *env) *cobra.Command {
	var now bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Replay the saved sequence in a loop",
		Long: `Loads the record file and replays it from the start hotkey, looping
until the stop hotkey is pressed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := e.newApp(e.cfg)
			if err != nil {
				return err
			}
			defer a.Shutdown()

			return quitIsExit(play(cmd.Context(), a, cmd.OutOrStdout(), now))
		},
	}
	cmd.Flags().BoolVar(&now, "now", false, "start playing without waiting for the start hotkey")
	return cmd
}

// quitIsExit turns a quit request into a clean exit.
func quitIsExit(err error) error {
	if errors.Is(err, app.ErrQuit) {
		return nil
	}
	return err
}

// disarmed reports whether the session ended before it started.
func disarmed(tr session.Transition) bool {
	return tr.From == session.Idle && tr.To == session.Idle
}

func instructions(a *app.App, action string) string {
	hk := a.Config().Hotkeys
	return fmt.Sprintf("Press %s to start and %s to stop %s", hk.Start, hk.Stop, action)
}

// record runs one recording session and offers to save it.
func record(ctx context.Context, a *app.App, in *bufio.Reader, out io.Writer, yes bool) error {
	fmt.Fprintln(out, instructions(a, "recording"))
	tr, err := a.RunSession(ctx, session.ModeRecord, false)
	if err != nil {
		return err
	}
	if disarmed(tr) {
		fmt.Fprintln(out, "Recording canceled")
		return nil
	}
	fmt.Fprintln(out, "Stop recording")

	if a.Sequence().IsEmpty() {
		fmt.Fprintln(out, "Nothing recorded")
		return nil
	}
	if !yes {
		save, err := ask(in, out, "Save this record?: ")
		if err != nil {
			return err
		}
		if !save {
			fmt.Fprintln(out, "Record discarded")
			return nil
		}
	}
	if err := a.SaveRecord(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Record saved to %s\n", a.Config().Record.Path)
	return nil
}

// play loads the record file and runs one playback session.
func play(ctx context.Context, a *app.App, out io.Writer, now bool) error {
	if err := a.LoadRecord(); err != nil {
		return err
	}
	seq := a.Sequence()
	fmt.Fprintf(out, "Record loaded: %d events, %s per loop\n", seq.Len(), seq.Duration())

	if !now {
		fmt.Fprintln(out, instructions(a, "playing"))
	}
	tr, err := a.RunSession(ctx, session.ModePlay, now)
	if err != nil {
		return err
	}
	if disarmed(tr) {
		fmt.Fprintln(out, "Playback canceled")
		return nil
	}
	if tr.Err != nil {
		fmt.Fprintf(out, "Playback aborted: %v\n", tr.Err)
		return nil
	}
	fmt.Fprintln(out, "Stop playing")
	return nil
}

// ask prints question and reads a yes/no answer. A closed input without an
// answer counts as no.
func ask(in *bufio.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprint(out, question)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	if errors.Is(err, io.EOF) && line == "" {
		fmt.Fprintln(out)
		return false, nil
	}
	return confirmed(line), nil
}

// confirmed reports whether answer means yes. Only answers starting with
// n, 0 or f mean no.
func confirmed(answer string) bool {
	a := strings.ToLower(strings.TrimSpace(answer))
	return a == "" || !strings.ContainsAny(a[:1], "n0f")
}
