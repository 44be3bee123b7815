package admin

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"adminpanel/internal/logger"
	"adminpanel/internal/model"
	"adminpanel/internal/queue"
)

// StatusChangeType tags status change messages on the feed.
const StatusChangeType = "status_change"

// StatusChange is published after the roster service confirms a toggle.
type StatusChange struct {
	StudentID string       `json:"studentId"`
	From      model.Status `json:"from"`
	To        model.Status `json:"to"`
	At        time.Time    `json:"at"`
}

// AuditFeed logs every status change on q until ctx is done.
func AuditFeed(ctx context.Context, q queue.Queue, log *slog.Logger) error {
	messages, err := q.Consume(ctx)
	if err != nil {
		return err
	}

	for msg := range messages {
		if msg.Type != StatusChangeType {
			log.Debug("skipping feed message", slog.String("type", msg.Type), slog.String("id", msg.ID))
			continue
		}
		var change StatusChange
		if err := json.Unmarshal(msg.Body, &change); err != nil {
			log.Warn("undecodable status change", slog.String("id", msg.ID), logger.Err(err))
			continue
		}
		log.Info("student status changed",
			slog.String("id", msg.ID),
			slog.String("student_id", change.StudentID),
			slog.String("from", string(change.From)),
			slog.String("to", string(change.To)),
			slog.Time("at", change.At),
		)
	}
	return nil
}
