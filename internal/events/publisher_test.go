package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventPublisher(t *testing.T) {
	pub := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = pub.PublishEvent(ctx, NewEvent(EventResponseSubmitted, ResponseSubmittedEvent{QuizID: "q"}))
		}()
	}
	wg.Wait()

	published := pub.GetPublishedEvents()
	require.Len(t, published, 10)
	assert.Equal(t, EventResponseSubmitted, published[0].Type)
	assert.Equal(t, "quiz-service", published[0].Source)
	assert.NotEmpty(t, published[0].ID)

	pub.ClearEvents()
	assert.Empty(t, pub.GetPublishedEvents())
}

func TestToMessage(t *testing.T) {
	event := NewEvent(EventQuizCreated, QuizCreatedEvent{QuizID: "q1", Title: "Algebra"})

	msg, err := toMessage(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, event.ID, msg.UUID)
	assert.Equal(t, "quiz.created", msg.Metadata.Get("event_type"))
	assert.Contains(t, string(msg.Payload), `"title":"Algebra"`)

	bad := NewEvent(EventQuizCreated, make(chan int))
	_, err = toMessage(context.Background(), bad)
	assert.Error(t, err)
}
