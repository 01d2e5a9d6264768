package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Workout is one recurring weekly scheduled activity. It is stored in the
// local SQLite cache through gorm and mirrored as a JSON document in the
// per-user remote collection, keyed by ID in both places.
type Workout struct {
	ID                  string    `gorm:"primaryKey" json:"id"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
	Name                string    `json:"name"`
	Title               string    `json:"title"`
	Description         string    `json:"description"`
	Type                string    `json:"type"`
	DayOfWeek           int       `gorm:"column:day_of_week" json:"day_of_week"`
	Time                string    `gorm:"column:time" json:"time"`
	Duration            int       `json:"duration"`
	Instructor          string    `json:"instructor"`
	Location            string    `json:"location"`
	Completed           int       `json:"completed"`
	Difficulty          string    `json:"difficulty"`
	Notes               string    `json:"notes"`
	Latitude            float64   `json:"latitude"`
	Longitude           float64   `json:"longitude"`
	NotificationEnabled bool      `gorm:"column:notification_enabled" json:"notification_enabled"`
	NotificationTime    int       `gorm:"column:notification_time" json:"notification_time"`
}

// Days are zero-based with Sunday = 0, matching time.Weekday.
var dayNames = []string{"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

// WorkoutTypes is the closed set of accepted workout categories.
var WorkoutTypes = []string{"Cardio", "Strength", "Flexibility", "HIIT", "Yoga", "Other"}

// NotificationLeadTimes are the accepted minutes-before-start reminder offsets.
var NotificationLeadTimes = []int{0, 15, 30, 60}

// Normalize applies the field conventions every persisted workout must hold:
// name and title mirror each other (title wins when both are set) and free
// text fields are never stored as anything but plain strings.
func (w *Workout) Normalize() {
	w.Name = strings.TrimSpace(w.Name)
	w.Title = strings.TrimSpace(w.Title)
	if w.Title == "" {
		w.Title = w.Name
	}
	w.Name = w.Title
	w.Time = strings.TrimSpace(w.Time)
	w.Location = strings.TrimSpace(w.Location)
	if w.Type == "" {
		w.Type = "Other"
	}
}

// HasTimeConflict reports whether the other workout occupies the same weekly
// slot: same day of week, same start time, different id. A workout never
// conflicts with itself, so updating a record in place is never flagged.
func (w *Workout) HasTimeConflict(other *Workout) bool {
	return w.DayOfWeek == other.DayOfWeek &&
		w.Time == other.Time &&
		w.ID != other.ID
}

// Equals compares every user-visible field. The timestamps are bookkeeping
// and excluded on purpose.
func (w *Workout) Equals(other *Workout) bool {
	return w.ID == other.ID &&
		w.Name == other.Name &&
		w.Title == other.Title &&
		w.Description == other.Description &&
		w.Type == other.Type &&
		w.DayOfWeek == other.DayOfWeek &&
		w.Time == other.Time &&
		w.Duration == other.Duration &&
		w.Instructor == other.Instructor &&
		w.Location == other.Location &&
		w.Completed == other.Completed
}

// DayName returns the weekday label for the workout's day, or "" when the
// day is out of range.
func (w *Workout) DayName() string {
	if w.DayOfWeek < 0 || w.DayOfWeek >= len(dayNames) {
		return ""
	}
	return dayNames[w.DayOfWeek]
}

// ValidWorkoutType reports whether s is one of the accepted categories,
// case-insensitively.
func ValidWorkoutType(s string) bool {
	for _, t := range WorkoutTypes {
		if strings.EqualFold(t, s) {
			return true
		}
	}
	return false
}

// ValidNotificationTime reports whether minutes is an accepted reminder lead
// time.
func ValidNotificationTime(minutes int) bool {
	for _, m := range NotificationLeadTimes {
		if m == minutes {
			return true
		}
	}
	return false
}

// ParseClock parses a canonical 24h "HH:MM" string into hour and minute.
func ParseClock(hhmm string) (hour, minute int, err error) {
	parts := strings.Split(hhmm, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", hhmm)
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid hour in %q: %w", hhmm, err)
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid minute in %q: %w", hhmm, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range", hhmm)
	}
	return hour, minute, nil
}
