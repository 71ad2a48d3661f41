// internal/reminder/reminder.go
//
// Periodic reminder emails for unfinished games. A scheduled sweep finds
// users that have an email address and at least one unfinished game idle
// for more than a day, and nudges them over SMTP. The sweep only reads
// game state; it never coordinates with in-flight moves.

package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog/log"

	"github.com/ajmarin/concentration/internal/store"
)

// idleAfter is how long a game must sit untouched before its owner gets
// a reminder.
const idleAfter = 24 * time.Hour

// Mailer sends one plain-text message. Satisfied by SMTP below and by a
// fake in tests.
type Mailer interface {
	Send(to, subject, body string) error
}

// Sweeper runs the reminder sweep on a schedule.
type Sweeper struct {
	st       store.Store
	mailer   Mailer
	interval time.Duration
}

// New builds a Sweeper. interval is how often the sweep runs (the original
// deployment ran it every 24 hours from a cron job).
func New(st store.Store, m Mailer, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Sweeper{st: st, mailer: m, interval: interval}
}

// Start schedules the sweep and returns the running scheduler so the caller
// can shut it down.
func (s *Sweeper) Start() (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}
	_, err = sched.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() {
			if err := s.Sweep(context.Background()); err != nil {
				log.Error().Err(err).Msg("reminder sweep failed")
			}
		}),
	)
	if err != nil {
		return nil, err
	}
	sched.Start()
	log.Info().Dur("interval", s.interval).Msg("reminder sweep scheduled")
	return sched, nil
}

// Sweep sends one reminder to every user with an idle unfinished game.
// Individual send failures are logged and skipped; the sweep itself only
// fails if the store does.
func (s *Sweeper) Sweep(ctx context.Context) error {
	users, err := s.st.IdleUsers(ctx, time.Now().UTC().Add(-idleAfter))
	if err != nil {
		return fmt.Errorf("list idle users: %w", err)
	}
	for _, u := range users {
		body := fmt.Sprintf("Hi %s, you have an unfinished Concentration game.", u.Username)
		if err := s.mailer.Send(u.Email, "Reminder for unfinished Concentration game", body); err != nil {
			log.Warn().Err(err).Str("user", u.Username).Msg("send reminder")
			continue
		}
		log.Debug().Str("user", u.Username).Msg("reminder sent")
	}
	return nil
}
