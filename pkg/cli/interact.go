package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/journal/pkg/render"
	"github.com/m-mizutani/journal/pkg/usecase/assistant"
)

// errShown marks a failure that was already printed to the user
var errShown = goerr.New("failure already shown")

// busyIndicator shows a spinner on stderr while a submission is in flight
type busyIndicator struct {
	spinner *spinner.Spinner
}

func newBusyIndicator() *busyIndicator {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " thinking..."
	return &busyIndicator{spinner: s}
}

// hook follows the assistant state: spinning only while submitting
func (b *busyIndicator) hook(snap assistant.Snapshot) {
	if snap.State == assistant.StateSubmitting {
		b.spinner.Start()
		return
	}
	b.spinner.Stop()
}

// submit sends one prompt and prints the outcome. Failures are printed and
// returned; the assistant stays usable for the next prompt.
func submit(ctx context.Context, w io.Writer, uc *assistant.UseCase, prompt string, showRaw bool) error {
	snap, err := uc.Submit(ctx, prompt)
	printSnapshot(w, snap, showRaw)
	return err
}

func printSnapshot(w io.Writer, snap assistant.Snapshot, showRaw bool) {
	printer := render.NewPrinter(w)
	switch snap.State {
	case assistant.StateError:
		fmt.Fprintf(w, "Error: %s\n", snap.Error)
	case assistant.StateSuccess:
		if showRaw {
			printer.PrintRaw(snap.Raw)
		}
		if len(snap.Cards) == 0 {
			fmt.Fprintln(w, "No actions found")
			return
		}
		printer.Print(snap.Cards)
	}
}
