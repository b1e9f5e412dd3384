package pipeline

import (
	"context"
	"testing"
)

// A Worker with an empty queue never calls into its Controller, so these
// exercise Start/Stop idempotency without needing a live store.
func TestWorker_StartTwiceIsNoOp(t *testing.T) {
	w := NewWorker(NewQueue(), nil, nil)
	w.Start(context.Background())
	w.Start(context.Background()) // must not panic or replace the running loop
	w.Stop()
}

func TestWorker_StopBeforeStartIsNoOp(t *testing.T) {
	w := NewWorker(NewQueue(), nil, nil)
	w.Stop()
}

func TestWorker_StopTwiceIsNoOp(t *testing.T) {
	w := NewWorker(NewQueue(), nil, nil)
	w.Start(context.Background())
	w.Stop()
	w.Stop()
}
