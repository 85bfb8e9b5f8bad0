package signal_test

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	gsignal "github.com/gantryci/gantry/internal/signal"
)

func TestNewHandler_ContextActive(t *testing.T) {
	h := gsignal.NewHandler(context.Background())
	defer h.Stop()

	require.NoError(t, h.Context().Err())

	select {
	case <-h.Interrupted():
		t.Fatal("interrupted channel should not be closed yet")
	default:
	}
}

func TestHandler_Stop_CancelsContext(t *testing.T) {
	h := gsignal.NewHandler(context.Background())
	h.Stop()

	assert.ErrorIs(t, h.Context().Err(), context.Canceled)
}

func TestHandler_Stop_Idempotent(t *testing.T) {
	h := gsignal.NewHandler(context.Background())
	h.Stop()
	h.Stop() // must not panic
}

func TestHandler_ParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := gsignal.NewHandler(parent)
	defer h.Stop()

	cancel()

	select {
	case <-h.Context().Done():
	case <-time.After(time.Second):
		t.Fatal("handler context should follow parent cancellation")
	}
}

func TestHandler_SIGINT_ClosesInterrupted(t *testing.T) {
	h := gsignal.NewHandler(context.Background())
	defer h.Stop()

	// Deliver SIGINT to this process; the handler owns the signal channel.
	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	select {
	case <-h.Interrupted():
	case <-time.After(2 * time.Second):
		t.Fatal("interrupted channel should close after SIGINT")
	}

	assert.ErrorIs(t, h.Context().Err(), context.Canceled)
}
