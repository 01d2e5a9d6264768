package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeMirrorsNameAndTitle(t *testing.T) {
	tests := []struct {
		name     string
		workout  Workout
		expected string
	}{
		{
			name:     "title wins when both set",
			workout:  Workout{Name: "Old", Title: "Morning Run"},
			expected: "Morning Run",
		},
		{
			name:     "name fills empty title",
			workout:  Workout{Name: "Spin Class"},
			expected: "Spin Class",
		},
		{
			name:     "whitespace trimmed",
			workout:  Workout{Title: "  Yoga  "},
			expected: "Yoga",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.workout.Normalize()
			assert.Equal(t, tt.expected, tt.workout.Name)
			assert.Equal(t, tt.expected, tt.workout.Title)
		})
	}
}

func TestNormalizeDefaultsType(t *testing.T) {
	w := Workout{Name: "Run"}
	w.Normalize()
	assert.Equal(t, "Other", w.Type)
}

func TestHasTimeConflict(t *testing.T) {
	a := Workout{ID: "a", DayOfWeek: 1, Time: "08:00"}
	b := Workout{ID: "b", DayOfWeek: 1, Time: "08:00"}
	c := Workout{ID: "c", DayOfWeek: 1, Time: "09:00"}
	d := Workout{ID: "d", DayOfWeek: 2, Time: "08:00"}

	// Same slot, different id: conflict is symmetric.
	assert.True(t, a.HasTimeConflict(&b))
	assert.True(t, b.HasTimeConflict(&a))

	// A workout never conflicts with itself.
	assert.False(t, a.HasTimeConflict(&a))
	same := a
	assert.False(t, a.HasTimeConflict(&same))

	// Different time or day is no conflict.
	assert.False(t, a.HasTimeConflict(&c))
	assert.False(t, a.HasTimeConflict(&d))
}

func TestDayName(t *testing.T) {
	assert.Equal(t, "Sunday", (&Workout{DayOfWeek: 0}).DayName())
	assert.Equal(t, "Monday", (&Workout{DayOfWeek: 1}).DayName())
	assert.Equal(t, "Saturday", (&Workout{DayOfWeek: 6}).DayName())
	assert.Equal(t, "", (&Workout{DayOfWeek: 7}).DayName())
	assert.Equal(t, "", (&Workout{DayOfWeek: -1}).DayName())
}

func TestValidWorkoutType(t *testing.T) {
	assert.True(t, ValidWorkoutType("Cardio"))
	assert.True(t, ValidWorkoutType("cardio"))
	assert.True(t, ValidWorkoutType("HIIT"))
	assert.True(t, ValidWorkoutType("yoga"))
	assert.False(t, ValidWorkoutType("swimming"))
	assert.False(t, ValidWorkoutType(""))
}

func TestValidNotificationTime(t *testing.T) {
	for _, m := range []int{0, 15, 30, 60} {
		assert.True(t, ValidNotificationTime(m), "lead time %d should be accepted", m)
	}
	for _, m := range []int{-15, 5, 45, 120} {
		assert.False(t, ValidNotificationTime(m), "lead time %d should be rejected", m)
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		input   string
		hour    int
		minute  int
		wantErr bool
	}{
		{input: "08:00", hour: 8},
		{input: "23:59", hour: 23, minute: 59},
		{input: "00:00"},
		{input: "24:00", wantErr: true},
		{input: "12:60", wantErr: true},
		{input: "8am", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			hour, minute, err := ParseClock(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.hour, hour)
			assert.Equal(t, tt.minute, minute)
		})
	}
}

func TestEqualsIgnoresTimestamps(t *testing.T) {
	a := Workout{ID: "a", Name: "Run", Title: "Run", DayOfWeek: 1, Time: "08:00", Duration: 30}
	b := a
	assert.True(t, a.Equals(&b))

	b.Duration = 45
	assert.False(t, a.Equals(&b))
}
