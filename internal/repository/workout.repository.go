package repository

import (
	"gymplan/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// WorkoutRepository is the local cache contract: a keyed table of workouts
// by id, always readable offline. The schedule store treats it as the
// source of truth for what the user sees next.
type WorkoutRepository interface {
	FindAllOrdered() ([]models.Workout, error)
	FindByID(id string) (*models.Workout, error)
	FindByDay(dayOfWeek int) ([]models.Workout, error)
	FindBySlot(dayOfWeek int, timeOfDay string) ([]models.Workout, error)
	FindNotificationEnabled() ([]models.Workout, error)
	Upsert(workout *models.Workout) error
	Update(workout *models.Workout) error
	Delete(id string) error
	DeleteAll() error
}

type workoutRepository struct {
	db *gorm.DB
}

func NewWorkoutRepository(db *gorm.DB) WorkoutRepository {
	return &workoutRepository{db}
}

func (r *workoutRepository) FindAllOrdered() ([]models.Workout, error) {
	var workouts []models.Workout
	err := r.db.Order("day_of_week ASC, time ASC").Find(&workouts).Error
	return workouts, err
}

func (r *workoutRepository) FindByID(id string) (*models.Workout, error) {
	var workout models.Workout
	err := r.db.First(&workout, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &workout, nil
}

func (r *workoutRepository) FindByDay(dayOfWeek int) ([]models.Workout, error) {
	var workouts []models.Workout
	err := r.db.Where("day_of_week = ?", dayOfWeek).
		Order("time ASC").
		Find(&workouts).Error
	return workouts, err
}

func (r *workoutRepository) FindBySlot(dayOfWeek int, timeOfDay string) ([]models.Workout, error) {
	var workouts []models.Workout
	err := r.db.Where("day_of_week = ? AND time = ?", dayOfWeek, timeOfDay).
		Find(&workouts).Error
	return workouts, err
}

func (r *workoutRepository) FindNotificationEnabled() ([]models.Workout, error) {
	var workouts []models.Workout
	err := r.db.Where("notification_enabled = ?", true).Find(&workouts).Error
	return workouts, err
}

// Upsert inserts the workout or replaces the row with the same id, matching
// the insert-or-replace semantics the remote reconciliation relies on.
func (r *workoutRepository) Upsert(workout *models.Workout) error {
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(workout).Error
}

func (r *workoutRepository) Update(workout *models.Workout) error {
	return r.db.Save(workout).Error
}

func (r *workoutRepository) Delete(id string) error {
	return r.db.Delete(&models.Workout{}, "id = ?", id).Error
}

func (r *workoutRepository) DeleteAll() error {
	return r.db.Where("1 = 1").Delete(&models.Workout{}).Error
}
