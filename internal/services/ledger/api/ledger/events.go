package ledger

import (
	"context"
	"fmt"

	apperrors "github.com/louisbranch/elysium-descent/internal/platform/errors"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/core/filter"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/domain/event"
	"github.com/louisbranch/elysium-descent/internal/services/ledger/storage"
)

// ListEvents returns the journal for one game ordered by sequence. A game ID
// of zero returns the unscoped journal.
func (s *Service) ListEvents(ctx context.Context, gameID uint64, afterSeq uint64, limit int) ([]event.Event, error) {
	events, err := s.store.ListEvents(ctx, gameID, afterSeq, limit)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

// ListEventsPage returns one page of journal history filtered by an AIP-160
// expression over player_id, game_id, level, type, entity_type, entity_id
// and ts.
func (s *Service) ListEventsPage(ctx context.Context, filterStr string, afterSeq uint64, pageSize int, descending bool) (storage.ListEventsPageResult, error) {
	req := storage.ListEventsPageRequest{
		AfterSeq:   afterSeq,
		PageSize:   pageSize,
		Descending: descending,
	}
	if filterStr != "" {
		cond, err := filter.ParseEventFilter(filterStr)
		if err != nil {
			return storage.ListEventsPageResult{}, apperrors.Wrap(apperrors.CodeUnknown, "invalid event filter", err)
		}
		req.FilterClause = cond.Clause
		req.FilterParams = cond.Params
	}
	res, err := s.store.ListEventsPage(ctx, req)
	if err != nil {
		return storage.ListEventsPageResult{}, fmt.Errorf("list events page: %w", err)
	}
	return res, nil
}
