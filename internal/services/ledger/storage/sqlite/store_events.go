package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// AppendEvent atomically appends an event to the journal and returns it with
// the assigned sequence number. Timestamps are truncated to millisecond
// precision so the persisted value round-trips exactly.
func (s *Store) AppendEvent(ctx context.Context, evt event.Event) (event.Event, error) {
	if !evt.Type.IsValid() {
		return event.Event{}, fmt.Errorf("event type is required")
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	evt.Timestamp = evt.Timestamp.UTC().Truncate(time.Millisecond)

	res, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO events (id, event_type, timestamp, player_id, game_id, level, entity_type, entity_id, payload_json)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		evt.ID,
		string(evt.Type),
		toMillis(evt.Timestamp),
		evt.PlayerID,
		evt.GameID,
		evt.Level,
		evt.EntityType,
		evt.EntityID,
		evt.PayloadJSON,
	)
	if err != nil {
		return event.Event{}, fmt.Errorf("append event: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return event.Event{}, fmt.Errorf("read event seq: %w", err)
	}
	if seq <= 0 {
		return event.Event{}, fmt.Errorf("event seq is required")
	}
	evt.Seq = uint64(seq)
	return evt, nil
}

const eventColumns = "seq, id, event_type, timestamp, player_id, game_id, level, entity_type, entity_id, payload_json"

// ListEvents returns journal events ordered by sequence ascending. A zero
// gameID returns the unscoped journal.
func (s *Store) ListEvents(ctx context.Context, gameID uint64, afterSeq uint64, limit int) ([]event.Event, error) {
	if limit <= 0 {
		limit = 100
	}

	var query strings.Builder
	query.WriteString("SELECT " + eventColumns + " FROM events WHERE seq > ?")
	args := []any{afterSeq}
	if gameID != 0 {
		query.WriteString(" AND game_id = ?")
		args = append(args, gameID)
	}
	query.WriteString(" ORDER BY seq ASC LIMIT ?")
	args = append(args, limit)

	rows, err := s.sqlDB.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return events, nil
}

// ListEventsPage returns one page of filtered journal history along with the
// total count of matching events. The filter clause is produced by the
// filter translator and binds positional parameters only.
func (s *Store) ListEventsPage(ctx context.Context, req storage.ListEventsPageRequest) (storage.ListEventsPageResult, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	where := "seq > ?"
	args := []any{req.AfterSeq}
	if strings.TrimSpace(req.FilterClause) != "" {
		where += " AND (" + req.FilterClause + ")"
		args = append(args, req.FilterParams...)
	}

	var total int
	countArgs := make([]any, len(args))
	copy(countArgs, args)
	if err := s.sqlDB.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM events WHERE "+where, countArgs...,
	).Scan(&total); err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("count events: %w", err)
	}

	order := "ASC"
	if req.Descending {
		order = "DESC"
	}
	query := "SELECT " + eventColumns + " FROM events WHERE " + where +
		" ORDER BY seq " + order + " LIMIT ?"
	args = append(args, pageSize+1)

	rows, err := s.sqlDB.QueryContext(ctx, query, args...)
	if err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("list events page: %w", err)
	}
	defer rows.Close()

	var result storage.ListEventsPageResult
	result.TotalCount = total
	for rows.Next() {
		evt, err := scanEvent(rows)
		if err != nil {
			return storage.ListEventsPageResult{}, err
		}
		result.Events = append(result.Events, evt)
	}
	if err := rows.Err(); err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("read events page: %w", err)
	}

	if len(result.Events) > pageSize {
		result.Events = result.Events[:pageSize]
		result.HasNextPage = true
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEvent(row rowScanner) (event.Event, error) {
	var evt event.Event
	var eventType string
	var timestamp int64
	if err := row.Scan(
		&evt.Seq,
		&evt.ID,
		&eventType,
		&timestamp,
		&evt.PlayerID,
		&evt.GameID,
		&evt.Level,
		&evt.EntityType,
		&evt.EntityID,
		&evt.PayloadJSON,
	); err != nil {
		return event.Event{}, fmt.Errorf("scan event: %w", err)
	}
	evt.Type = event.Type(eventType)
	evt.Timestamp = fromMillis(timestamp)
	return evt, nil
}
