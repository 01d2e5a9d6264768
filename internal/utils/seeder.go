package utils

import (
	"fmt"
	"log"
	mathrand "math/rand"
	"time"

	"gymplan/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultNumWorkouts = 12

var sampleNames = map[string][]string{
	"Cardio":      {"Morning Run", "Spin Class", "Treadmill Intervals"},
	"Strength":    {"Upper Body", "Leg Day", "Full Body Circuit"},
	"Flexibility": {"Stretch & Mobility", "Foam Rolling"},
	"HIIT":        {"HIIT Blast", "Tabata Session"},
	"Yoga":        {"Vinyasa Flow", "Evening Yoga"},
	"Other":       {"Open Gym", "Swim Session"},
}

var sampleLocations = []string{"Main Gym", "Studio A", "Studio B", "Pool", "Outdoor Track"}

var sampleDifficulties = []string{"Beginner", "Intermediate", "Advanced"}

// SeedWorkouts fills the schedule with randomly generated sample entries.
// Slots are drawn without collision so the result is conflict free.
func SeedWorkouts(db *gorm.DB, numWorkouts int) error {
	r := mathrand.New(mathrand.NewSource(time.Now().UnixNano()))

	usedSlots := make(map[string]bool)
	var existing []models.Workout
	if err := db.Find(&existing).Error; err != nil {
		return fmt.Errorf("failed to read existing schedule: %w", err)
	}
	for _, w := range existing {
		usedSlots[fmt.Sprintf("%d/%s", w.DayOfWeek, w.Time)] = true
	}

	created := 0
	for attempts := 0; created < numWorkouts && attempts < numWorkouts*20; attempts++ {
		w := generateWorkout(r)
		slot := fmt.Sprintf("%d/%s", w.DayOfWeek, w.Time)
		if usedSlots[slot] {
			continue
		}
		if err := db.Create(&w).Error; err != nil {
			return fmt.Errorf("failed to create workout %q: %w", w.Title, err)
		}
		usedSlots[slot] = true
		created++
	}

	log.Printf("Seeded %d sample workouts", created)
	return nil
}

// ClearWorkouts removes every schedule entry.
func ClearWorkouts(db *gorm.DB) error {
	result := db.Where("1 = 1").Delete(&models.Workout{})
	if result.Error != nil {
		return fmt.Errorf("failed to clear schedule: %w", result.Error)
	}
	log.Printf("Deleted %d workouts", result.RowsAffected)
	return nil
}

// WorkoutStats logs entry counts per day of week.
func WorkoutStats(db *gorm.DB) error {
	var total int64
	if err := db.Model(&models.Workout{}).Count(&total).Error; err != nil {
		return fmt.Errorf("failed to count workouts: %w", err)
	}

	log.Printf("Schedule contains %d workouts", total)
	for day := 0; day < 7; day++ {
		var count int64
		if err := db.Model(&models.Workout{}).Where("day_of_week = ?", day).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to count workouts for day %d: %w", day, err)
		}
		if count > 0 {
			w := models.Workout{DayOfWeek: day}
			log.Printf("  %-9s %d", w.DayName(), count)
		}
	}
	return nil
}

func generateWorkout(r *mathrand.Rand) models.Workout {
	workoutType := models.WorkoutTypes[r.Intn(len(models.WorkoutTypes))]
	names := sampleNames[workoutType]
	title := names[r.Intn(len(names))]

	// Keep times on the half hour between 06:00 and 20:30.
	hour := 6 + r.Intn(15)
	minute := 30 * r.Intn(2)

	w := models.Workout{
		ID:                  uuid.NewString(),
		Title:               title,
		Type:                workoutType,
		DayOfWeek:           r.Intn(7),
		Time:                fmt.Sprintf("%02d:%02d", hour, minute),
		Duration:            30 + 15*r.Intn(4),
		Location:            sampleLocations[r.Intn(len(sampleLocations))],
		Difficulty:          sampleDifficulties[r.Intn(len(sampleDifficulties))],
		NotificationEnabled: r.Intn(2) == 0,
		NotificationTime:    models.NotificationLeadTimes[r.Intn(len(models.NotificationLeadTimes))],
	}
	w.Normalize()
	return w
}
