package session

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Delete removes a candidate remotely first and mutates local state only on
// success: the record leaves the store (and with it every derived view), and
// the detail panel closes when it was showing that candidate. On failure the
// error surfaces to the caller and nothing changes, so no rollback is ever
// needed.
func (s *Session) Delete(_ context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("candidate id is required")
	}

	if err := s.client.Delete(id); err != nil {
		s.logger.Warn("deleting candidate failed",
			zap.String("candidate_id", id),
			zap.Error(err),
		)
		return fmt.Errorf("delete candidate %s: %w", id, err)
	}

	s.store.Remove(id)

	s.mu.Lock()
	if s.detailID == id {
		s.detailID = ""
	}
	// Keep the page position but clamp it: removing the last record of the
	// last page must not strand the user on an empty page.
	current := s.pager.page
	s.mu.Unlock()

	s.GoToPage(current)

	s.logger.Info("candidate deleted", zap.String("candidate_id", id))
	return nil
}
