package progress

import (
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/usecase"
)

// NewNopSink creates a progress sink that drops every event
func NewNopSink() usecase.ProgressSink {
	return usecase.NopProgress{}
}

// ProvideProgressSink shows a spinner on interactive terminals. Structured
// output and redirected stderr get no progress output at all.
func ProvideProgressSink(cfg *config.RuntimeConfig, log *slog.Logger) usecase.ProgressSink {
	if cfg.Format.Structured() || cfg.Debug {
		return NewNopSink()
	}

	fd := os.Stderr.Fd()
	if !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		log.Debug("stderr is not a terminal, progress disabled")
		return NewNopSink()
	}

	return NewSpinnerProgressReporter(os.Stderr)
}
