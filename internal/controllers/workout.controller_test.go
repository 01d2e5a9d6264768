package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gymplan/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockScheduling struct {
	mock.Mock
}

func (m *mockScheduling) Add(w *models.Workout, done models.ResultFunc) {
	m.Called(w, done)
}

func (m *mockScheduling) ForceAdd(w *models.Workout, done models.ResultFunc) {
	m.Called(w, done)
}

func (m *mockScheduling) Update(w *models.Workout, done models.ResultFunc) {
	m.Called(w, done)
}

func (m *mockScheduling) Delete(w *models.Workout, done models.ResultFunc) {
	m.Called(w, done)
}

func (m *mockScheduling) DeleteAll(done models.ResultFunc) {
	m.Called(done)
}

func (m *mockScheduling) LoadAll() []models.Workout {
	args := m.Called()
	return args.Get(0).([]models.Workout)
}

func (m *mockScheduling) LoadByDay(dayOfWeek int) ([]models.Workout, error) {
	args := m.Called(dayOfWeek)
	return args.Get(0).([]models.Workout), args.Error(1)
}

func (m *mockScheduling) Refresh(done func(error)) {
	m.Called(done)
}

// complete makes a mock call deliver its result through the operation
// callback, the way the real service does.
func complete(result models.Result) func(mock.Arguments) {
	return func(args mock.Arguments) {
		done := args.Get(1).(models.ResultFunc)
		done(result)
	}
}

func setupRouter(svc Scheduling) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	controller := NewWorkoutController(svc, nil)

	router.POST("/workouts/", controller.CreateWorkout)
	router.GET("/workouts/", controller.GetWorkouts)
	router.GET("/workouts/day/:day", controller.GetWorkoutsByDay)
	router.PUT("/workouts/:id", controller.UpdateWorkout)
	router.DELETE("/workouts/:id", controller.DeleteWorkout)
	router.POST("/workouts/refresh", controller.RefreshWorkouts)
	return router
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func sampleBody() map[string]interface{} {
	return map[string]interface{}{
		"title":       "Morning Run",
		"type":        "Cardio",
		"day_of_week": 1,
		"time":        "08:00",
		"duration":    30,
		"location":    "Gym",
	}
}

func TestCreateWorkoutSuccess(t *testing.T) {
	svc := new(mockScheduling)
	svc.On("Add", mock.Anything, mock.Anything).
		Run(complete(models.SuccessResult(&models.Workout{ID: "w1", Title: "Morning Run"}))).
		Return()

	rec := postJSON(t, setupRouter(svc), "/workouts/", sampleBody())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "w1")
	svc.AssertExpectations(t)
}

func TestCreateWorkoutConflict(t *testing.T) {
	svc := new(mockScheduling)
	conflicts := []models.Workout{{ID: "taken", Title: "Existing", DayOfWeek: 1, Time: "08:00"}}
	svc.On("Add", mock.Anything, mock.Anything).
		Run(complete(models.ConflictResult(conflicts))).
		Return()

	rec := postJSON(t, setupRouter(svc), "/workouts/", sampleBody())

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "taken")
	svc.AssertExpectations(t)
}

func TestCreateWorkoutValidationError(t *testing.T) {
	svc := new(mockScheduling)
	svc.On("Add", mock.Anything, mock.Anything).
		Run(complete(models.ValidationResult("duration", "must be a positive number of minutes"))).
		Return()

	rec := postJSON(t, setupRouter(svc), "/workouts/", sampleBody())

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "duration")
}

func TestCreateWorkoutForceBypassesDetection(t *testing.T) {
	svc := new(mockScheduling)
	svc.On("ForceAdd", mock.Anything, mock.Anything).
		Run(complete(models.SuccessResult(&models.Workout{ID: "w2"}))).
		Return()

	rec := postJSON(t, setupRouter(svc), "/workouts/?force=true", sampleBody())

	assert.Equal(t, http.StatusCreated, rec.Code)
	svc.AssertNotCalled(t, "Add", mock.Anything, mock.Anything)
	svc.AssertExpectations(t)
}

func TestCreateWorkoutPersistenceError(t *testing.T) {
	svc := new(mockScheduling)
	svc.On("Add", mock.Anything, mock.Anything).
		Run(complete(models.PersistenceResult(assert.AnError))).
		Return()

	rec := postJSON(t, setupRouter(svc), "/workouts/", sampleBody())

	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetWorkouts(t *testing.T) {
	svc := new(mockScheduling)
	svc.On("LoadAll").Return([]models.Workout{
		{ID: "a", Title: "Run", DayOfWeek: 1, Time: "08:00"},
	})

	router := setupRouter(svc)
	req := httptest.NewRequest(http.MethodGet, "/workouts/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Run")
}

func TestGetWorkoutsByDayRejectsBadDay(t *testing.T) {
	svc := new(mockScheduling)
	router := setupRouter(svc)

	for _, day := range []string{"7", "-1", "tuesday"} {
		req := httptest.NewRequest(http.MethodGet, "/workouts/day/"+day, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "day %q should be rejected", day)
	}
}

func TestDeleteWorkoutNotFound(t *testing.T) {
	svc := new(mockScheduling)
	svc.On("LoadAll").Return([]models.Workout{})

	router := setupRouter(svc)
	req := httptest.NewRequest(http.MethodDelete, "/workouts/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	svc.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteWorkout(t *testing.T) {
	svc := new(mockScheduling)
	svc.On("LoadAll").Return([]models.Workout{{ID: "w1", Title: "Run"}})
	svc.On("Delete", mock.Anything, mock.Anything).
		Run(complete(models.SuccessResult(nil))).
		Return()

	router := setupRouter(svc)
	req := httptest.NewRequest(http.MethodDelete, "/workouts/w1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestRefreshReportsSoftFailure(t *testing.T) {
	svc := new(mockScheduling)
	svc.On("Refresh", mock.Anything).Run(func(args mock.Arguments) {
		done := args.Get(0).(func(error))
		done(assert.AnError)
	}).Return()

	router := setupRouter(svc)
	req := httptest.NewRequest(http.MethodPost, "/workouts/refresh", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	// A failed refresh is a warning, never a blocking error.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "warning")
}
