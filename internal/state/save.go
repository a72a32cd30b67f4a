package state

import (
	"context"
	"log/slog"

	"savoo/internal/api"
	"savoo/internal/core"
)

// saveState tracks the profile-save coalescing machine:
// Idle -> Saving -> (PendingRetry -> Saving)* -> Idle.
// At most one retry is ever queued; a newer request while one is already
// queued overwrites it (last-write-wins).
type saveState int

const (
	saveIdle saveState = iota
	saveSaving
	savePendingRetry
)

// SaveProfile persists profile settings. If a save is already in flight
// the request is queued and coalesced into a single follow-up save after
// the in-flight one completes. Returns false only when the save (or the
// follow-up that superseded it) failed.
func (s *Store) SaveProfile(ctx context.Context, p core.UserProfile) bool {
	if err := p.Validate(); err != nil {
		s.setError(err.Error())
		s.notify()
		return false
	}

	s.mu.Lock()
	if s.saveState != saveIdle {
		s.pendingProfile = p
		s.saveState = savePendingRetry
		s.mu.Unlock()
		return true
	}
	s.saveState = saveSaving
	s.mu.Unlock()

	ok := true
	for {
		err := s.apiClient.UpdateProfile(ctx, p)
		if err != nil {
			ok = false
			if api.IsAuthError(err) {
				s.ForceLogout(ctx)
				return false
			}
			slog.WarnContext(ctx, "Profile save failed", "error", err)
			s.setError(api.ErrorMessage(err))
		} else {
			s.mu.Lock()
			s.snap.Profile = p
			s.snap.LastError = ""
			s.mu.Unlock()
		}

		s.mu.Lock()
		if s.saveState == savePendingRetry {
			p = s.pendingProfile
			s.saveState = saveSaving
			s.mu.Unlock()
			ok = true // the queued request supersedes the previous outcome
			continue
		}
		s.saveState = saveIdle
		s.mu.Unlock()
		s.notify()
		return ok
	}
}
