package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"gymplan/internal/models"
	"gymplan/internal/notifications"
)

// WorkoutSource supplies the persisted workouts whose reminders must be
// re-armed after a process restart. The local cache repository satisfies it.
type WorkoutSource interface {
	FindNotificationEnabled() ([]models.Workout, error)
}

// ReminderScheduler arms two timers per workout: a reminder that fires
// NotificationTime minutes before the workout starts and a completion that
// fires Duration minutes after. Re-scheduling the same workout always
// cancels first, so a workout never holds more than one timer pair.
type ReminderScheduler struct {
	delivery notifications.Delivery
	source   WorkoutSource
	now      func() time.Time

	mu     sync.Mutex
	timers map[string]*timerPair
}

type timerPair struct {
	reminder   *time.Timer
	completion *time.Timer
}

func NewReminderScheduler(delivery notifications.Delivery, source WorkoutSource) *ReminderScheduler {
	return &ReminderScheduler{
		delivery: delivery,
		source:   source,
		now:      time.Now,
		timers:   make(map[string]*timerPair),
	}
}

// Schedule arms both timers for this coming week's occurrence of the
// workout's slot. A fire instant already in the past rolls forward exactly
// one week. Workouts with notifications disabled only have any leftover
// timers cancelled.
func (s *ReminderScheduler) Schedule(w models.Workout) error {
	s.Cancel(w.ID)

	if !w.NotificationEnabled {
		return nil
	}
	if w.ID == "" {
		return fmt.Errorf("cannot schedule reminder without workout id")
	}

	now := s.now()
	start, err := occurrenceInWeek(now, w.DayOfWeek, w.Time)
	if err != nil {
		return fmt.Errorf("cannot compute occurrence for workout %s: %w", w.ID, err)
	}

	reminderAt := rollForward(start.Add(-time.Duration(w.NotificationTime)*time.Minute), now)
	completionAt := rollForward(start.Add(time.Duration(w.Duration)*time.Minute), now)

	workout := w
	pair := &timerPair{}

	// The pair goes into the map before the timers are armed: a near-zero
	// delay can fire before Schedule returns, and fire must find the entry
	// to clear its leg. fire waits on the mutex, so it cannot observe a
	// half-armed pair.
	s.mu.Lock()
	s.timers[w.ID] = pair
	pair.reminder = time.AfterFunc(reminderAt.Sub(now), func() {
		s.fire(workout, notifications.KindReminder)
	})
	pair.completion = time.AfterFunc(completionAt.Sub(now), func() {
		s.fire(workout, notifications.KindCompletion)
	})
	s.mu.Unlock()

	log.Printf("Reminders armed for workout %s: reminder %s, completion %s",
		w.ID, reminderAt.Format(time.RFC3339), completionAt.Format(time.RFC3339))
	return nil
}

// Cancel stops both timers for the workout id. Safe to call when nothing is
// armed.
func (s *ReminderScheduler) Cancel(id string) {
	s.mu.Lock()
	pair, ok := s.timers[id]
	if ok {
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if !ok {
		return
	}
	if pair.reminder != nil {
		pair.reminder.Stop()
	}
	if pair.completion != nil {
		pair.completion.Stop()
	}
	s.delivery.Cancel(id)
}

// CancelAll stops every timer this scheduler has armed.
func (s *ReminderScheduler) CancelAll() {
	s.mu.Lock()
	timers := s.timers
	s.timers = make(map[string]*timerPair)
	s.mu.Unlock()

	for _, pair := range timers {
		if pair.reminder != nil {
			pair.reminder.Stop()
		}
		if pair.completion != nil {
			pair.completion.Stop()
		}
	}
	s.delivery.CancelAll()
}

// Armed reports whether the workout id currently holds any armed timer.
func (s *ReminderScheduler) Armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.timers[id]
	return ok
}

// ArmedCount returns how many workouts currently hold armed timers.
func (s *ReminderScheduler) ArmedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// RestoreAll re-arms reminders for every cached workout that wants them.
// Timer state does not survive a process restart, so this runs at startup.
func (s *ReminderScheduler) RestoreAll() error {
	workouts, err := s.source.FindNotificationEnabled()
	if err != nil {
		return fmt.Errorf("failed to load workouts for reminder restore: %w", err)
	}

	restored := 0
	for _, w := range workouts {
		if err := s.Schedule(w); err != nil {
			log.Printf("Skipping reminder restore for workout %s: %v", w.ID, err)
			continue
		}
		restored++
	}
	log.Printf("Restored reminders for %d workout(s)", restored)
	return nil
}

// fire delivers one leg of the timer pair and clears it. Delivery failures
// are logged only; a missed notification must not disturb the schedule.
func (s *ReminderScheduler) fire(w models.Workout, kind notifications.Kind) {
	if err := s.delivery.Deliver(w.Title, w.Location, kind); err != nil {
		log.Printf("Failed to deliver %s notification for workout %s: %v", kind, w.ID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pair, ok := s.timers[w.ID]
	if !ok {
		return
	}
	switch kind {
	case notifications.KindReminder:
		pair.reminder = nil
	case notifications.KindCompletion:
		pair.completion = nil
	}
	if pair.reminder == nil && pair.completion == nil {
		delete(s.timers, w.ID)
	}
}

// occurrenceInWeek returns the next calendar occurrence of the zero-based
// weekday at hhmm, counting from now's date (today when the weekday
// matches). The instant may be in the past when today's slot time has gone
// by; callers roll it forward.
func occurrenceInWeek(now time.Time, dayOfWeek int, hhmm string) (time.Time, error) {
	if dayOfWeek < 0 || dayOfWeek > 6 {
		return time.Time{}, fmt.Errorf("day of week %d out of range", dayOfWeek)
	}
	hour, minute, err := models.ParseClock(hhmm)
	if err != nil {
		return time.Time{}, err
	}

	daysAhead := (dayOfWeek - int(now.Weekday()) + 7) % 7
	day := now.AddDate(0, 0, daysAhead)
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, now.Location()), nil
}

// rollForward pushes an instant already in the past forward exactly one
// week.
func rollForward(at, now time.Time) time.Time {
	if at.After(now) {
		return at
	}
	return at.AddDate(0, 0, 7)
}
