package services

import (
	"log"

	"gymplan/internal/models"
	"gymplan/internal/scheduler"
)

// ScheduleService is the façade callers talk to. It validates input, lets
// the store run conflict detection and persistence, and keeps reminder
// state in sync with every mutation. The service owns the store and the
// reminder scheduler; neither holds a reference back.
type ScheduleService struct {
	store     *ScheduleStore
	reminders *scheduler.ReminderScheduler
}

func NewScheduleService(store *ScheduleStore, reminders *scheduler.ReminderScheduler) *ScheduleService {
	return &ScheduleService{store: store, reminders: reminders}
}

// Add validates the candidate, checks its slot, and persists it. On
// success the workout's reminders are armed before the result is
// delivered. A conflict reports the occupying workouts so the caller can
// decide to ForceAdd or abandon.
func (s *ScheduleService) Add(workout *models.Workout, done models.ResultFunc) {
	if bad := validateWorkout(workout); bad != nil {
		done(*bad)
		return
	}
	s.store.Insert(workout, false, s.armThen(done))
}

// ForceAdd persists the candidate without conflict detection. Only for
// callers that have already seen and accepted a reported conflict.
func (s *ScheduleService) ForceAdd(workout *models.Workout, done models.ResultFunc) {
	if bad := validateWorkout(workout); bad != nil {
		done(*bad)
		return
	}
	s.store.Insert(workout, true, s.armThen(done))
}

// Update rewrites the workout and re-arms its reminders. Conflicts with a
// different record reject the update; the record never conflicts with
// itself.
func (s *ScheduleService) Update(workout *models.Workout, done models.ResultFunc) {
	if bad := validateWorkout(workout); bad != nil {
		done(*bad)
		return
	}
	s.store.Update(workout, s.armThen(done))
}

// Delete removes the workout and cancels its reminders.
func (s *ScheduleService) Delete(workout *models.Workout, done models.ResultFunc) {
	s.store.Delete(workout, func(r models.Result) {
		if r.Kind == models.ResultSuccess {
			s.reminders.Cancel(workout.ID)
		}
		done(r)
	})
}

// DeleteAll clears the whole schedule and every armed reminder.
func (s *ScheduleService) DeleteAll(done models.ResultFunc) {
	s.store.DeleteAll(func(r models.Result) {
		if r.Kind == models.ResultSuccess {
			s.reminders.CancelAll()
		}
		done(r)
	})
}

// LoadAll returns the current schedule snapshot, ordered by (day, time).
func (s *ScheduleService) LoadAll() []models.Workout {
	return s.store.LoadAll()
}

// LoadByDay returns the cached workouts for one weekday.
func (s *ScheduleService) LoadByDay(dayOfWeek int) ([]models.Workout, error) {
	return s.store.WorkoutsByDay(dayOfWeek)
}

// Refresh triggers an asynchronous remote reload. Failures are soft: the
// local schedule keeps serving.
func (s *ScheduleService) Refresh(done func(error)) {
	s.store.RefreshFromRemote(done)
}

// armThen wraps a result callback so reminders are re-armed after a
// successful persist, and only then. Arming failures are logged, not
// surfaced: the schedule write already succeeded.
func (s *ScheduleService) armThen(done models.ResultFunc) models.ResultFunc {
	return func(r models.Result) {
		if r.Kind == models.ResultSuccess && r.Workout != nil {
			if err := s.reminders.Schedule(*r.Workout); err != nil {
				log.Printf("Failed to arm reminders for workout %s: %v", r.Workout.ID, err)
			}
		}
		if done != nil {
			done(r)
		}
	}
}

// validateWorkout checks required fields before any persistence work. A
// nil return means the candidate is acceptable.
func validateWorkout(w *models.Workout) *models.Result {
	w.Normalize()

	if w.Title == "" {
		r := models.ValidationResult("name", "name is required")
		return &r
	}
	if w.Time == "" {
		r := models.ValidationResult("time", "time is required")
		return &r
	}
	if _, _, err := models.ParseClock(w.Time); err != nil {
		r := models.ValidationResult("time", err.Error())
		return &r
	}
	if w.DayOfWeek < 0 || w.DayOfWeek > 6 {
		r := models.ValidationResult("day_of_week", "must be between 0 (Sunday) and 6 (Saturday)")
		return &r
	}
	if w.Duration <= 0 {
		r := models.ValidationResult("duration", "must be a positive number of minutes")
		return &r
	}
	if w.Location == "" {
		r := models.ValidationResult("location", "location is required")
		return &r
	}
	if !models.ValidWorkoutType(w.Type) {
		r := models.ValidationResult("type", "unknown workout type")
		return &r
	}
	if !models.ValidNotificationTime(w.NotificationTime) {
		r := models.ValidationResult("notification_time", "must be one of 0, 15, 30 or 60 minutes")
		return &r
	}
	return nil
}
