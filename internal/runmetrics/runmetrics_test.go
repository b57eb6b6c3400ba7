package runmetrics

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserversDoNotPanic(t *testing.T) {
	ObserveStepDuration("image_scale", 1.25)
	AddPagesProcessed("image_scale", 10)
	IncGranularSeen()
	SetWorkerPoolSize("image_scale", 4)
	ObserveRunOutcome(true)
	ObserveRunOutcome(false)
}

func TestServeRespondsAndShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:19273") }()

	time.Sleep(100 * time.Millisecond)
	resp, err := http.Get("http://127.0.0.1:19273/metrics")
	if err == nil {
		resp.Body.Close()
	}

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down in time")
	}
	assert.True(t, true)
}
