package events

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"lecture-sync/pkg/models"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startBus(t *testing.T, b *Bus) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = b.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		_ = b.Close()
	})

	select {
	case <-b.Running():
	case <-time.After(2 * time.Second):
		t.Fatal("bus did not start")
	}
}

func TestBusDeliversJobSubmitted(t *testing.T) {
	bus, err := NewBus(logr.Discard())
	require.NoError(t, err)

	var mu sync.Mutex
	var received []JobSubmitted
	bus.OnJobSubmitted("test", func(ctx context.Context, evt JobSubmitted) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, evt)
		return nil
	})
	startBus(t, bus)

	requestID := uuid.NewString()
	require.NoError(t, bus.PublishJobSubmitted(context.Background(), JobSubmitted{
		RequestID: requestID,
		Job:       models.Job{ID: "job-1", Status: models.StatusPending, FolderID: "f1"},
	}))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 1
	}, 2*time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, requestID, received[0].RequestID)
	assert.Equal(t, models.JobID("job-1"), received[0].Job.ID)
}

func TestBusDeliversStatusChanged(t *testing.T) {
	bus, err := NewBus(logr.Discard())
	require.NoError(t, err)

	got := make(chan StatusChanged, 1)
	bus.OnStatusChanged("test", func(ctx context.Context, evt StatusChanged) error {
		got <- evt
		return nil
	})
	startBus(t, bus)

	require.NoError(t, bus.PublishStatusChanged(context.Background(), StatusChanged{
		JobID: "a",
		From:  models.StatusTranscribing,
		To:    models.StatusCompleted,
	}))

	select {
	case evt := <-got:
		assert.Equal(t, models.StatusTranscribing, evt.From)
		assert.Equal(t, models.StatusCompleted, evt.To)
	case <-time.After(2 * time.Second):
		t.Fatal("status event not delivered")
	}
}

func TestBusForwardTo(t *testing.T) {
	bus, err := NewBus(logr.Discard())
	require.NoError(t, err)

	target := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	defer target.Close()
	out, err := target.Subscribe(context.Background(), TopicJobSubmitted)
	require.NoError(t, err)

	bus.ForwardTo("export", TopicJobSubmitted, target)
	startBus(t, bus)

	require.NoError(t, bus.PublishJobSubmitted(context.Background(), JobSubmitted{
		RequestID: "req-42",
		Job:       models.Job{ID: "job-9"},
	}))

	select {
	case msg := <-out:
		msg.Ack()
		var evt JobSubmitted
		require.NoError(t, json.Unmarshal(msg.Payload, &evt))
		assert.Equal(t, models.JobID("job-9"), evt.Job.ID)
		assert.Equal(t, "req-42", middleware.MessageCorrelationID(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("message not forwarded")
	}
}
