package pipeline

import (
	"testing"
	"time"

	"github.com/eswarib/biodatamine/internal/domain"
)

func TestQueue_PopIsFIFO(t *testing.T) {
	q := NewQueue()
	q.Push(domain.Job{DatasetID: "a"})
	q.Push(domain.Job{DatasetID: "b"})
	q.Push(domain.Job{DatasetID: "c"})

	for _, want := range []string{"a", "b", "c"} {
		job, ok := q.Pop()
		if !ok {
			t.Fatalf("expected a job, queue empty early")
		}
		if job.DatasetID != want {
			t.Errorf("Pop() = %q, want %q", job.DatasetID, want)
		}
	}
	if _, ok := q.Pop(); ok {
		t.Fatal("expected queue to be empty")
	}
}

func TestQueue_PushSignalsWakeAtMostOncePerPendingSignal(t *testing.T) {
	q := NewQueue()
	q.Push(domain.Job{DatasetID: "a"})
	q.Push(domain.Job{DatasetID: "b"}) // second push while first wake unconsumed: coalesced

	select {
	case <-q.Wake():
	case <-time.After(time.Second):
		t.Fatal("expected a wake signal")
	}

	select {
	case <-q.Wake():
		t.Fatal("expected only one coalesced wake signal, got a second")
	default:
	}
}
