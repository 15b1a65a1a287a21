// Package retention removes rooms nobody has touched in a while. Rooms are
// the only swept entity; projects stay, they are owned resources a user can
// reopen later.
package retention

import (
	"time"

	"github.com/codehive/codehive/config"
	"github.com/codehive/codehive/globals"
	"github.com/codehive/codehive/persistence"
	"github.com/robfig/cron/v3"
)

type Sweeper struct {
	persister persistence.Persister
	maxIdle   time.Duration
	schedule  string
	cron      *cron.Cron
}

func NewSweeper(persister persistence.Persister, cfg config.RetentionConfig) *Sweeper {
	return &Sweeper{
		persister: persister,
		maxIdle:   cfg.MaxIdle,
		schedule:  cfg.Schedule,
	}
}

// Start schedules the periodic sweep. A non-positive max idle disables
// retention entirely.
func (s *Sweeper) Start() error {
	if s.maxIdle <= 0 {
		globals.AppLogger.Info("room retention disabled")
		return nil
	}
	s.cron = cron.New()
	if _, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.SweepOnce(time.Now()); err != nil {
			globals.AppLogger.Error("retention sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}
	s.cron.Start()
	globals.AppLogger.Info("room retention enabled", "max_idle", s.maxIdle.String(), "schedule", s.schedule)
	return nil
}

func (s *Sweeper) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// SweepOnce deletes every room whose last update is older than the max idle
// window relative to now. Returns the number of rooms removed.
func (s *Sweeper) SweepOnce(now time.Time) (int, error) {
	if s.maxIdle <= 0 {
		return 0, nil
	}
	rooms, err := s.persister.GetRooms()
	if err != nil {
		return 0, err
	}
	cutoff := now.Add(-s.maxIdle)
	removed := 0
	for _, r := range rooms {
		if r.UpdatedAt.Before(cutoff) {
			if err := s.persister.DeleteRoom(r); err != nil {
				globals.AppLogger.Error("could not delete idle room", "room", r.Id, "error", err)
				continue
			}
			removed++
			globals.AppLogger.Info("deleted idle room", "room", r.Id, "last_update", r.UpdatedAt)
		}
	}
	return removed, nil
}
