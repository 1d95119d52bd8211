package progress

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/trebuchet-org/sling/internal/domain"
	"github.com/trebuchet-org/sling/internal/domain/config"
	"github.com/trebuchet-org/sling/internal/logging"
	"github.com/trebuchet-org/sling/internal/usecase"
)

func TestSpinnerProgressReporter_StageLines(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewSpinnerProgressReporter(&buf)
	ctx := context.Background()

	r.OnProgress(ctx, usecase.ProgressEvent{Stage: string(domain.StageResolving), Message: "Resolving Marketplace", Spinner: true})
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: string(domain.StageSubmitting), Message: "Submitting Marketplace", Spinner: true})
	r.Info("Transaction sent: 0xabc")
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: string(domain.StageFailed), Message: "SubmissionRejected: nonce too low"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if assert.Len(t, lines, 3) {
		assert.True(t, strings.HasPrefix(lines[0], "✓ Resolving Marketplace ("), lines[0])
		assert.Equal(t, "Transaction sent: 0xabc", lines[1])
		assert.True(t, strings.HasPrefix(lines[2], "✗ Submitting Marketplace ("), lines[2])
	}
}

func TestSpinnerProgressReporter_Success(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	r := NewSpinnerProgressReporter(&buf)
	ctx := context.Background()

	r.OnProgress(ctx, usecase.ProgressEvent{Stage: string(domain.StageAwaitingConfirmation), Message: "Waiting for 1 confirmation(s)", Spinner: true})
	r.OnProgress(ctx, usecase.ProgressEvent{Stage: string(domain.StageSucceeded), Message: "Marketplace deployed"})

	assert.Contains(t, buf.String(), "✓ Waiting for 1 confirmation(s)")
	assert.NotContains(t, buf.String(), "Marketplace deployed")
}

func TestProvideProgressSink(t *testing.T) {
	log := logging.Discard()

	sink := ProvideProgressSink(&config.RuntimeConfig{Format: config.FormatJSON}, log)
	assert.IsType(t, usecase.NopProgress{}, sink)

	sink = ProvideProgressSink(&config.RuntimeConfig{Format: config.FormatText, Debug: true}, log)
	assert.IsType(t, usecase.NopProgress{}, sink)
}
