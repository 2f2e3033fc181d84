package database

import (
	"context"
	"fmt"

	"club-points-ledger/internal/models"

	"go.uber.org/zap"
)

func scanPointEvent(row rowScanner, event *models.PointEvent) error {
	var createdAt int64
	if err := row.Scan(&event.Key, &event.TargetUserId, &event.Delta,
		&event.PointsBefore, &event.PointsAfter, &createdAt); err != nil {
		return err
	}
	event.CreatedAt = fromMillis(createdAt)
	return nil
}

// GetPointHistory returns a member's point events, newest first
func (s *Service) GetPointHistory(ctx context.Context, userId string, limit, offset int) ([]models.PointEvent, error) {
	zap.L().Debug("Getting point history",
		zap.String("user_id", userId),
		zap.Int("limit", limit),
		zap.Int("offset", offset))

	rows, err := s.db.QueryContext(ctx, queryGetPointHistory, userId, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get point history: %w", err)
	}
	defer closeRows(rows)

	var events []models.PointEvent
	for rows.Next() {
		var event models.PointEvent
		if err := scanPointEvent(rows, &event); err != nil {
			return nil, fmt.Errorf("failed to scan point event: %w", err)
		}
		events = append(events, event)
	}
	return events, rows.Err()
}

// FetchOutbox returns up to limit undelivered events in commit order
func (s *Service) FetchOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	rows, err := s.db.QueryContext(ctx, queryFetchOutbox, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch outbox: %w", err)
	}
	defer closeRows(rows)

	var entries []models.OutboxEntry
	for rows.Next() {
		var entry models.OutboxEntry
		var createdAt int64
		err := rows.Scan(&entry.Seq, &entry.Event.Key, &entry.Event.TargetUserId, &entry.Event.Delta,
			&entry.Event.PointsBefore, &entry.Event.PointsAfter, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox entry: %w", err)
		}
		entry.Event.CreatedAt = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// AckOutbox removes a delivered entry. The point event itself is kept.
func (s *Service) AckOutbox(ctx context.Context, seq int64) error {
	if _, err := s.db.ExecContext(ctx, queryAckOutbox, seq); err != nil {
		return fmt.Errorf("failed to ack outbox entry %d: %w", seq, err)
	}
	return nil
}
