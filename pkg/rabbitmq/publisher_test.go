package rabbitmq

import (
	"context"
	"errors"
	"testing"
)

// TestPublishWithoutConnection verifies that a broker-less publisher rejects
// enqueues with an explicit unavailable error instead of dropping work.
func TestPublishWithoutConnection(t *testing.T) {
	p := NewPublisher(nil)

	err := p.Publish(context.Background(), TranscriptionStage, map[string]string{"k": "v"})
	if !errors.Is(err, ErrQueueUnavailable) {
		t.Fatalf("err = %v, want %v", err, ErrQueueUnavailable)
	}
}

// TestConsumeWithoutConnection verifies worker start is a no-op rather than a
// crash when no broker is reachable.
func TestConsumeWithoutConnection(t *testing.T) {
	c := NewConsumer[struct{}](nil, DebriefStage, Options{}, nil)
	if err := c.Consume(context.Background(), struct{}{}); err != nil {
		t.Fatalf("consume: %v", err)
	}
}
