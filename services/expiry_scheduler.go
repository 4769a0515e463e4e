// services/expiry_scheduler.go
package services

import (
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/sirupsen/logrus"
)

// StartExpirySweep runs the inactivity sweep: every minute, sessions whose
// last move predates the threshold are expired. Expire is idempotent, so a
// redundant or overlapping sweep is harmless.
func (s *SessionService) StartExpirySweep(inactivity time.Duration) {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			cutoff := time.Now().Add(-inactivity)
			sessions, err := s.Sessions.ListInactiveBefore(cutoff)
			if err != nil {
				logrus.Errorf("[Sweep] DB error: %v", err)
				return
			}

			for _, session := range sessions {
				if _, err := s.Expire(session.ID); err != nil {
					logrus.Warnf("[Sweep] Failed to expire session %s: %v", session.ID, err)
				} else {
					logrus.Infof("✅ Auto-expired session: %s (idle since %s)", session.ID, session.LastMoveAt.Format(time.RFC3339))
				}
			}
		}),
	)
}
