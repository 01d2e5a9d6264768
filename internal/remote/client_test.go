package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"gymplan/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, InitialBackoff: time.Millisecond, Multiplier: 1.0}
}

func TestFetchAllDecodesCollection(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/users/u1/workouts", r.URL.Path)
		json.NewEncoder(w).Encode([]models.Workout{
			{ID: "a", Title: "Run", DayOfWeek: 1, Time: "08:00"},
			{ID: "b", Title: "Lift", DayOfWeek: 2, Time: "18:00"},
		})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, fastRetry())
	workouts, err := client.FetchAll(context.Background(), "u1")

	require.NoError(t, err)
	require.Len(t, workouts, 2)
	assert.Equal(t, "Run", workouts[0].Title)
}

func TestSetRetriesTransientFailures(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			http.Error(w, "temporarily unavailable", http.StatusInternalServerError)
			return
		}
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/users/u1/workouts/w1", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, fastRetry())
	err := client.Set(context.Background(), "u1", &models.Workout{ID: "w1", Title: "Run"})

	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSetExhaustsRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "broken", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, fastRetry())
	err := client.Set(context.Background(), "u1", &models.Workout{ID: "w1"})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "after 3 attempt")
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestDeleteTreatsMissingDocumentAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, fastRetry())
	assert.NoError(t, client.Delete(context.Background(), "u1", "already-gone"))
}

func TestFetchSingleDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/users/u1/workouts/w1", r.URL.Path)
		json.NewEncoder(w).Encode(models.Workout{ID: "w1", Title: "Swim"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, fastRetry())
	workout, err := client.Fetch(context.Background(), "u1", "w1")

	require.NoError(t, err)
	assert.Equal(t, "Swim", workout.Title)
}

func TestDocumentRoundTripPreservesAllFields(t *testing.T) {
	// The remote document is the wire form of the schedule entry; writing
	// a record and reading it back must reproduce every field, including
	// the auxiliary ones no validation ever touches.
	var stored []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPut:
			stored, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		case http.MethodGet:
			w.Header().Set("Content-Type", "application/json")
			w.Write(stored)
		}
	}))
	defer server.Close()

	original := models.Workout{
		ID:                  "w1",
		CreatedAt:           time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC),
		UpdatedAt:           time.Date(2025, 6, 2, 7, 15, 0, 0, time.UTC),
		Name:                "Morning Run",
		Title:               "Morning Run",
		Description:         "5k tempo run",
		Type:                "Cardio",
		DayOfWeek:           1,
		Time:                "08:00",
		Duration:            45,
		Instructor:          "Sam",
		Location:            "Outdoor Track",
		Completed:           1,
		Difficulty:          "Intermediate",
		Notes:               "bring water",
		Latitude:            52.52,
		Longitude:           13.405,
		NotificationEnabled: true,
		NotificationTime:    30,
	}

	client := NewHTTPClient(server.URL, fastRetry())
	require.NoError(t, client.Set(context.Background(), "u1", &original))

	fetched, err := client.Fetch(context.Background(), "u1", "w1")
	require.NoError(t, err)
	assert.Equal(t, original, *fetched)
}

func TestRetryPolicyHonoursContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := RetryPolicy{MaxAttempts: 5, InitialBackoff: time.Minute, Multiplier: 1.0}
	attempts := 0
	err := policy.Do(ctx, func() error {
		attempts++
		return assertErr("nope")
	})

	require.Error(t, err)
	assert.Equal(t, context.Canceled, err)
	assert.Equal(t, 1, attempts)
}

type assertErr string

func (e assertErr) Error() string { return string(e) }
