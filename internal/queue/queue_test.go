package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMessage() Message {
	return Message{ID: "m-1", Type: "status_change", Body: json.RawMessage(`{"studentId":"a1"}`)}
}

func receive(t *testing.T, ch <-chan Message) Message {
	t.Helper()
	select {
	case msg, ok := <-ch:
		require.True(t, ok, "channel closed")
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return Message{}
	}
}

func TestNewMessage(t *testing.T) {
	msg, err := NewMessage("status_change", map[string]string{"studentId": "a1"})
	require.NoError(t, err)

	assert.NotEmpty(t, msg.ID)
	assert.Equal(t, "status_change", msg.Type)
	assert.JSONEq(t, `{"studentId":"a1"}`, string(msg.Body))
}

func TestInMemory_PublishConsume(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	q := NewInMemory(4)
	require.NoError(t, q.Publish(ctx, fixedMessage()))

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixedMessage(), receive(t, ch))

	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestInMemory_PublishRespectsContext(t *testing.T) {
	q := NewInMemory(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, q.Publish(ctx, fixedMessage()), context.Canceled)
}

func TestNop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	var q Queue = Nop{}
	assert.ErrorIs(t, q.Publish(ctx, fixedMessage()), ErrClosed)

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	cancel()
	_, ok := <-ch
	assert.False(t, ok)
}

func TestRedisQueue_Publish(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewRedisQueue(db, "feed")

	payload, err := json.Marshal(fixedMessage())
	require.NoError(t, err)
	mock.ExpectLPush("feed", string(payload)).SetVal(1)

	require.NoError(t, q.Publish(context.Background(), fixedMessage()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisQueue_PublishError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewRedisQueue(db, "feed")

	payload, err := json.Marshal(fixedMessage())
	require.NoError(t, err)
	mock.ExpectLPush("feed", string(payload)).SetErr(errors.New("connection refused"))

	assert.Error(t, q.Publish(context.Background(), fixedMessage()))
}

func TestRedisQueue_Consume(t *testing.T) {
	db, mock := redismock.NewClientMock()
	q := NewRedisQueue(db, "feed")

	payload, err := json.Marshal(fixedMessage())
	require.NoError(t, err)
	mock.ExpectBRPop(pollTimeout, "feed").SetVal([]string{"feed", "garbage"})
	mock.ExpectBRPop(pollTimeout, "feed").SetVal([]string{"feed", string(payload)})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, err := q.Consume(ctx)
	require.NoError(t, err)
	assert.Equal(t, fixedMessage(), receive(t, ch))

	cancel()
	for range ch {
	}
}

func TestNewRedisQueue_DefaultKey(t *testing.T) {
	db, _ := redismock.NewClientMock()
	q := NewRedisQueue(db, "")
	assert.Equal(t, "admin:status-changes", q.key)
}
