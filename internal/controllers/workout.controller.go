package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"gymplan/internal/cache"
	"gymplan/internal/models"
)

// resultTimeout bounds how long a request waits for the serialized store
// worker before giving up.
const resultTimeout = 20 * time.Second

// Scheduling is the slice of the schedule service the HTTP layer uses.
type Scheduling interface {
	Add(workout *models.Workout, done models.ResultFunc)
	ForceAdd(workout *models.Workout, done models.ResultFunc)
	Update(workout *models.Workout, done models.ResultFunc)
	Delete(workout *models.Workout, done models.ResultFunc)
	DeleteAll(done models.ResultFunc)
	LoadAll() []models.Workout
	LoadByDay(dayOfWeek int) ([]models.Workout, error)
	Refresh(done func(error))
}

type WorkoutController struct {
	service   Scheduling
	viewCache *cache.ScheduleCache
}

func NewWorkoutController(service Scheduling, viewCache *cache.ScheduleCache) *WorkoutController {
	return &WorkoutController{service: service, viewCache: viewCache}
}

// CreateWorkout adds a workout to the schedule. Pass ?force=true to bypass
// conflict detection after a conflict was reported and accepted.
func (wc *WorkoutController) CreateWorkout(c *gin.Context) {
	var workout models.Workout
	if err := c.ShouldBindJSON(&workout); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request data",
			"error":   err.Error(),
		})
		return
	}

	force := c.Query("force") == "true"
	result, ok := wc.await(func(done models.ResultFunc) {
		if force {
			wc.service.ForceAdd(&workout, done)
		} else {
			wc.service.Add(&workout, done)
		}
	})
	if !ok {
		respondTimeout(c)
		return
	}

	switch result.Kind {
	case models.ResultSuccess:
		c.JSON(http.StatusCreated, gin.H{
			"status":  "success",
			"message": "Workout scheduled successfully",
			"data":    result.Workout,
		})
	case models.ResultConflict:
		c.JSON(http.StatusConflict, gin.H{
			"status":    "conflict",
			"message":   "Workout conflicts with an existing schedule slot",
			"conflicts": result.Conflicts,
		})
	default:
		respondError(c, result)
	}
}

// GetWorkouts returns the full schedule ordered by (day, time), serving
// the Redis view cache when it is warm.
func (wc *WorkoutController) GetWorkouts(c *gin.Context) {
	userID := c.GetString("user_id")

	if wc.viewCache != nil && userID != "" {
		if workouts, hit, err := wc.viewCache.GetView(userID); err == nil && hit {
			c.JSON(http.StatusOK, gin.H{
				"status": "success",
				"data":   workouts,
				"cached": true,
			})
			return
		} else if err != nil {
			log.Printf("View cache read failed: %v", err)
		}
	}

	workouts := wc.service.LoadAll()

	if wc.viewCache != nil && userID != "" {
		if err := wc.viewCache.StoreView(userID, workouts); err != nil {
			log.Printf("View cache write failed: %v", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   workouts,
	})
}

// GetWorkoutsByDay returns the schedule for one zero-based weekday.
func (wc *WorkoutController) GetWorkoutsByDay(c *gin.Context) {
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil || day < 0 || day > 6 {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid day of week",
			"error":   "Day must be an integer between 0 (Sunday) and 6 (Saturday)",
		})
		return
	}

	workouts, err := wc.service.LoadByDay(day)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Failed to retrieve workouts",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "success",
		"data":   workouts,
	})
}

// UpdateWorkout rewrites the workout at the path id.
func (wc *WorkoutController) UpdateWorkout(c *gin.Context) {
	var workout models.Workout
	if err := c.ShouldBindJSON(&workout); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Invalid request data",
			"error":   err.Error(),
		})
		return
	}
	workout.ID = c.Param("id")

	result, ok := wc.await(func(done models.ResultFunc) {
		wc.service.Update(&workout, done)
	})
	if !ok {
		respondTimeout(c)
		return
	}

	switch result.Kind {
	case models.ResultSuccess:
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Workout updated successfully",
			"data":    result.Workout,
		})
	case models.ResultConflict:
		c.JSON(http.StatusConflict, gin.H{
			"status":    "conflict",
			"message":   "Updated slot conflicts with another workout",
			"conflicts": result.Conflicts,
		})
	default:
		respondError(c, result)
	}
}

// DeleteWorkout removes the workout at the path id.
func (wc *WorkoutController) DeleteWorkout(c *gin.Context) {
	id := c.Param("id")

	var target *models.Workout
	for _, w := range wc.service.LoadAll() {
		if w.ID == id {
			workout := w
			target = &workout
			break
		}
	}
	if target == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"status":  "error",
			"message": "Workout not found",
			"error":   "No workout exists with the provided ID",
		})
		return
	}

	result, ok := wc.await(func(done models.ResultFunc) {
		wc.service.Delete(target, done)
	})
	if !ok {
		respondTimeout(c)
		return
	}

	if result.Kind != models.ResultSuccess {
		respondError(c, result)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Workout deleted successfully",
	})
}

// DeleteAllWorkouts clears the whole schedule.
func (wc *WorkoutController) DeleteAllWorkouts(c *gin.Context) {
	result, ok := wc.await(func(done models.ResultFunc) {
		wc.service.DeleteAll(done)
	})
	if !ok {
		respondTimeout(c)
		return
	}

	if result.Kind != models.ResultSuccess {
		respondError(c, result)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "All workouts deleted",
	})
}

// RefreshWorkouts triggers a remote reload. A fetch failure is reported as
// a warning, not an error: the local schedule keeps serving.
func (wc *WorkoutController) RefreshWorkouts(c *gin.Context) {
	done := make(chan error, 1)
	wc.service.Refresh(func(err error) { done <- err })

	select {
	case err := <-done:
		if err != nil {
			c.JSON(http.StatusOK, gin.H{
				"status":  "warning",
				"message": "Remote refresh failed, serving local data",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "success",
			"message": "Schedule refreshed from remote",
		})
	case <-time.After(resultTimeout):
		respondTimeout(c)
	}
}

// await bridges the callback-based service API into a synchronous HTTP
// handler. Every operation completes through exactly one result, so the
// buffered channel never leaks a goroutine.
func (wc *WorkoutController) await(start func(models.ResultFunc)) (models.Result, bool) {
	done := make(chan models.Result, 1)
	start(func(r models.Result) { done <- r })

	select {
	case r := <-done:
		return r, true
	case <-time.After(resultTimeout):
		return models.Result{}, false
	}
}

func respondError(c *gin.Context, r models.Result) {
	switch r.Kind {
	case models.ResultValidation:
		c.JSON(http.StatusBadRequest, gin.H{
			"status":  "error",
			"message": "Validation failed",
			"field":   r.Field,
			"error":   r.Err.Error(),
		})
	case models.ResultPersistence:
		c.JSON(http.StatusBadGateway, gin.H{
			"status":  "error",
			"message": "Failed to persist workout",
			"error":   r.Err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "Unexpected result",
		})
	}
}

func respondTimeout(c *gin.Context) {
	c.JSON(http.StatusGatewayTimeout, gin.H{
		"status":  "error",
		"message": "Operation timed out",
	})
}
