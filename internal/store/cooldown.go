package store

import (
	"os"
	"time"

	"github.com/fractalmind/teamchat-go/internal/errors"
	"github.com/fractalmind/teamchat-go/internal/fsutil"
	"github.com/fractalmind/teamchat-go/internal/lock"
)

// CheckAndRecordCooldown checks and, if the window has elapsed, refreshes
// the cooldown ledger entry for key under the nudge-cooldown lock. Returns
// the number of seconds remaining in the current cooldown window, or 0 if
// the send may proceed (and the ledger was updated to now).
func (s *Store) CheckAndRecordCooldown(key string, seconds int) (int, error) {
	if seconds <= 0 {
		return 0, nil
	}

	var remaining int
	err := s.locks.With(lock.NudgeCooldown, func() error {
		ledger := map[string]int64{}
		if _, err := os.Stat(s.nudgeIndexPath()); err == nil {
			if err := fsutil.ReadJSON(s.nudgeIndexPath(), &ledger); err != nil {
				return errors.NewStoreError("read cooldown ledger", err).WithTeam(s.team).WithOp("check_and_record_cooldown")
			}
		}

		now := time.Now().Unix()
		last, ok := ledger[key]
		if ok && now-last < int64(seconds) {
			remaining = seconds - int(now-last)
			return nil
		}

		ledger[key] = now
		if err := fsutil.WriteJSONAtomic(s.nudgeIndexPath(), ledger); err != nil {
			return errors.NewStoreError("write cooldown ledger", err).WithTeam(s.team).WithOp("check_and_record_cooldown")
		}
		remaining = 0
		return nil
	})
	if err != nil {
		return 0, err
	}
	return remaining, nil
}
