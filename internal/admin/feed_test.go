package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adminpanel/internal/model"
	"adminpanel/internal/queue"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) Bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return bytes.Clone(b.buf.Bytes())
}

func TestAuditFeed_LogsStatusChanges(t *testing.T) {
	var buf lockedBuffer
	log := slog.New(slog.NewJSONHandler(&buf, nil))

	q := queue.NewInMemory(4)
	ctx, cancel := context.WithCancel(context.Background())

	change, err := queue.NewMessage(StatusChangeType, StatusChange{StudentID: "a1", From: model.Present, To: model.Absent, At: time.Now()})
	require.NoError(t, err)
	require.NoError(t, q.Publish(ctx, queue.Message{ID: "x", Type: "other", Body: json.RawMessage(`{}`)}))
	require.NoError(t, q.Publish(ctx, change))

	done := make(chan error, 1)
	go func() { done <- AuditFeed(ctx, q, log) }()

	require.Eventually(t, func() bool {
		return bytes.Contains(buf.Bytes(), []byte("student status changed"))
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line))
	assert.Equal(t, "a1", line["student_id"])
	assert.Equal(t, "Absent", line["to"])
}
