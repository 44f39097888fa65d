// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

// Package scheduler fires journaling reminders at the configured times of
// day and takes periodic archive snapshots.
package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/tejzpr/moodlog-mcp/internal/logging"
	"github.com/tejzpr/moodlog-mcp/internal/metrics"
	"github.com/tejzpr/moodlog-mcp/internal/mood"
)

// SettingsSource supplies the current reminder settings
type SettingsSource interface {
	ReminderSettings(ctx context.Context) mood.ReminderSettings
}

// Notifier delivers one reminder
type Notifier interface {
	Notify(ctx context.Context, slot, message string) error
}

// SnapshotFunc takes one archive snapshot
type SnapshotFunc func(ctx context.Context) error

// LogNotifier writes reminders to the log
type LogNotifier struct {
	Logger *logging.Logger
}

// Notify logs the reminder
func (n LogNotifier) Notify(_ context.Context, slot, message string) error {
	log := n.Logger
	if log == nil {
		log = logging.Nop()
	}
	log.Infow("reminder", "slot", slot, "message", message)
	return nil
}

// Config configures a Scheduler
type Config struct {
	CheckInterval    time.Duration
	SnapshotInterval time.Duration // zero disables snapshots
	Location         *time.Location
	Logger           *logging.Logger
	Metrics          *metrics.Recorder
	Now              func() time.Time
}

// Scheduler checks reminder slots on a ticker. Each slot fires at most once
// per local day.
type Scheduler struct {
	settings SettingsSource
	notifier Notifier
	snapshot SnapshotFunc
	cfg      Config
	log      *logging.Logger

	mu    sync.Mutex
	fired map[string]string // slot -> day key it last fired on

	stopChan chan struct{}
	done     sync.WaitGroup
	stopOnce sync.Once
}

// NewScheduler creates a new scheduler
func NewScheduler(settings SettingsSource, notifier Notifier, cfg Config) *Scheduler {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = 30 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if notifier == nil {
		notifier = LogNotifier{Logger: cfg.Logger}
	}
	return &Scheduler{
		settings: settings,
		notifier: notifier,
		cfg:      cfg,
		log:      cfg.Logger.WithComponent("scheduler"),
		fired:    make(map[string]string),
		stopChan: make(chan struct{}),
	}
}

// WithSnapshot enables periodic snapshots
func (s *Scheduler) WithSnapshot(fn SnapshotFunc) *Scheduler {
	s.snapshot = fn
	return s
}

// Start begins the scheduler
func (s *Scheduler) Start(ctx context.Context) {
	reminders := time.NewTicker(s.cfg.CheckInterval)

	var snapshots <-chan time.Time
	var snapshotTicker *time.Ticker
	if s.snapshot != nil && s.cfg.SnapshotInterval > 0 {
		snapshotTicker = time.NewTicker(s.cfg.SnapshotInterval)
		snapshots = snapshotTicker.C
	}

	s.done.Add(1)
	go func() {
		defer s.done.Done()
		defer reminders.Stop()
		if snapshotTicker != nil {
			defer snapshotTicker.Stop()
		}

		for {
			select {
			case <-reminders.C:
				s.CheckReminders(ctx)
			case <-snapshots:
				s.RunSnapshot(ctx)
			case <-s.stopChan:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	s.log.Infow("scheduler started",
		"check_interval", s.cfg.CheckInterval.String(),
		"snapshots", snapshots != nil)
}

// Stop stops the scheduler and waits for the loop to exit
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.done.Wait()
}

// CheckReminders fires every due slot that has not fired today and returns
// the slots it fired. A slot is due during the first check window after its
// time of day.
func (s *Scheduler) CheckReminders(ctx context.Context) []string {
	settings := s.settings.ReminderSettings(ctx)
	if !settings.Enabled {
		return nil
	}

	now := s.cfg.Now().In(s.cfg.Location)
	today := now.Format("2006-01-02")
	window := s.cfg.CheckInterval
	if window < time.Minute {
		window = time.Minute
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var fired []string
	for _, slot := range settings.Times {
		at, err := mood.ParseClock(slot)
		if err != nil {
			s.log.Debugw("ignoring invalid reminder time", "slot", slot)
			continue
		}
		due := time.Date(now.Year(), now.Month(), now.Day(), at.Hour(), at.Minute(), 0, 0, s.cfg.Location)
		if now.Before(due) || !now.Before(due.Add(window)) {
			continue
		}
		if s.fired[slot] == today {
			continue
		}

		if err := s.notifier.Notify(ctx, slot, settings.Message); err != nil {
			s.log.Warnw("failed to deliver reminder", "slot", slot, "error", err)
			continue
		}
		s.fired[slot] = today
		s.cfg.Metrics.ReminderFired()
		fired = append(fired, slot)
	}
	return fired
}

// RunSnapshot takes one snapshot, logging failures
func (s *Scheduler) RunSnapshot(ctx context.Context) {
	if s.snapshot == nil {
		return
	}
	if err := s.snapshot(ctx); err != nil {
		s.log.Errorw("snapshot failed", "error", err)
	}
}
