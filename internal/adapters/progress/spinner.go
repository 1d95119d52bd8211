package progress

import (
	"context"
	"io"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// SpinnerProgressReporter shows the running stage behind a spinner and
// leaves a line for every stage that finished.
type SpinnerProgressReporter struct {
	out          io.Writer
	spinner      *spinner.Spinner
	currentStage string
	stageMessage string
	stageStart   time.Time
}

// NewSpinnerProgressReporter creates a spinner reporter writing to out
func NewSpinnerProgressReporter(out io.Writer) *SpinnerProgressReporter {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(out))
	s.HideCursor = false

	return &SpinnerProgressReporter{
		out:     out,
		spinner: s,
	}
}

// OnProgress handles progress events
func (r *SpinnerProgressReporter) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	if event.Stage != r.currentStage {
		r.completeCurrentStage(event.Stage)
		r.currentStage = event.Stage
		r.stageStart = time.Now()
	}

	if event.Spinner {
		r.stageMessage = event.Message
		r.spinner.Suffix = " " + event.Message
		if !r.spinner.Active() {
			r.spinner.Start()
		}
	} else if r.spinner.Active() {
		r.spinner.Stop()
	}
}

// Info prints an info message
func (r *SpinnerProgressReporter) Info(message string) {
	r.pause(func() {
		color.New(color.FgCyan).Fprintln(r.out, message)
	})
}

// Error prints an error message
func (r *SpinnerProgressReporter) Error(message string) {
	r.pause(func() {
		color.New(color.FgRed).Fprintln(r.out, message)
	})
}

// pause stops the spinner while fn writes, then restarts it
func (r *SpinnerProgressReporter) pause(fn func()) {
	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	fn()

	if wasActive {
		r.spinner.Start()
	}
}

// completeCurrentStage prints the outcome of the stage being left
func (r *SpinnerProgressReporter) completeCurrentStage(next string) {
	if r.currentStage == "" || r.stageMessage == "" {
		return
	}

	if r.spinner.Active() {
		r.spinner.Stop()
	}

	elapsed := time.Since(r.stageStart).Round(time.Millisecond)
	if next == string(domain.StageFailed) {
		color.New(color.FgRed).Fprintf(r.out, "✗ %s (%s)\n", r.stageMessage, elapsed)
	} else {
		color.New(color.FgGreen).Fprintf(r.out, "✓ %s (%s)\n", r.stageMessage, elapsed)
	}
	r.stageMessage = ""
}

// Ensure SpinnerProgressReporter implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerProgressReporter)(nil)
