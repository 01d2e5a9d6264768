package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"gymplan/internal/cache"
	"gymplan/internal/identity"
	"gymplan/internal/models"
	"gymplan/internal/remote"
	"gymplan/internal/repository"

	"github.com/google/uuid"
)

const remoteCallTimeout = 15 * time.Second

// ErrStoreStopped reports a mutation submitted after Stop.
var ErrStoreStopped = errors.New("schedule store is stopped")

// ScheduleStore presents one consistent view of the user's weekly schedule
// backed by two physical stores: the embedded SQLite cache, always
// available, and the authoritative remote collection, reachable only when a
// user is signed in. Writes go remote-first when online and fall back to
// local-only when there is no session; reloads reconcile the cache against
// the remote set.
//
// Every mutation runs serialized, FIFO, on one worker goroutine per store,
// so the cache never observes interleaved partial writes. Reads are served
// instantly from the last published snapshot.
type ScheduleStore struct {
	repo      repository.WorkoutRepository
	remote    remote.Client
	identity  identity.Provider
	viewCache *cache.ScheduleCache

	jobs     chan func()
	stopChan chan struct{}
	wg       sync.WaitGroup

	mu       sync.RWMutex
	snapshot []models.Workout
	watchers []func([]models.Workout)
	running  bool
}

func NewScheduleStore(
	repo repository.WorkoutRepository,
	remoteClient remote.Client,
	provider identity.Provider,
	viewCache *cache.ScheduleCache,
) *ScheduleStore {
	return &ScheduleStore{
		repo:      repo,
		remote:    remoteClient,
		identity:  provider,
		viewCache: viewCache,
		jobs:      make(chan func(), 64),
		stopChan:  make(chan struct{}),
	}
}

// Start loads the initial snapshot from the local cache, launches the
// mutation worker, and begins listening for sign-in events to trigger
// remote refreshes.
func (s *ScheduleStore) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	s.mu.Unlock()

	workouts, err := s.repo.FindAllOrdered()
	if err != nil {
		return fmt.Errorf("failed to load initial schedule: %w", err)
	}
	s.setSnapshot(workouts)

	s.wg.Add(1)
	go s.workerLoop()

	events := s.identity.Subscribe()
	s.wg.Add(1)
	go s.identityLoop(events)

	log.Printf("Schedule store started with %d cached workout(s)", len(workouts))
	return nil
}

func (s *ScheduleStore) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
}

func (s *ScheduleStore) workerLoop() {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			// Mutations accepted before the stop still complete, so every
			// done callback runs exactly once.
			for {
				select {
				case job := <-s.jobs:
					job()
				default:
					return
				}
			}
		case job := <-s.jobs:
			job()
		}
	}
}

func (s *ScheduleStore) identityLoop(events <-chan identity.Event) {
	defer s.wg.Done()
	for {
		select {
		case <-s.stopChan:
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			if ev.Kind == identity.SignedIn {
				log.Printf("Sign-in detected, refreshing schedule from remote")
				s.RefreshFromRemote(nil)
			}
		}
	}
}

// enqueue hands the job to the mutation worker. It reports false when the
// store is stopped; the caller still owes its done callback a result.
func (s *ScheduleStore) enqueue(job func()) bool {
	s.mu.RLock()
	running := s.running
	s.mu.RUnlock()
	if !running {
		return false
	}
	select {
	case s.jobs <- job:
		return true
	case <-s.stopChan:
		return false
	}
}

// submit enqueues a mutation, reporting a persistence failure through done
// when the store no longer accepts work.
func (s *ScheduleStore) submit(done models.ResultFunc, job func()) {
	if !s.enqueue(job) {
		emit(done, models.PersistenceResult(ErrStoreStopped))
	}
}

// LoadAll returns the last published snapshot, ordered by (day, time). It
// never blocks on the remote store.
func (s *ScheduleStore) LoadAll() []models.Workout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Workout, len(s.snapshot))
	copy(out, s.snapshot)
	return out
}

// WorkoutsByDay returns the cached workouts for one weekday, ordered by
// start time.
func (s *ScheduleStore) WorkoutsByDay(dayOfWeek int) ([]models.Workout, error) {
	return s.repo.FindByDay(dayOfWeek)
}

// Watch registers a callback invoked with a fresh copy of the schedule
// after every publish. Callbacks run on the mutation worker; keep them
// short.
func (s *ScheduleStore) Watch(fn func([]models.Workout)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watchers = append(s.watchers, fn)
}

// Insert persists a new workout: remote first when a user is signed in,
// then the local cache. With force false the slot is validated against the
// current schedule and a conflict aborts the insert.
func (s *ScheduleStore) Insert(workout *models.Workout, force bool, done models.ResultFunc) {
	s.submit(done, func() {
		if workout.ID == "" {
			workout.ID = uuid.NewString()
		}
		workout.Normalize()

		if !force {
			conflicts, err := s.slotConflicts(*workout)
			if err != nil {
				emit(done, models.PersistenceResult(err))
				return
			}
			if len(conflicts) > 0 {
				emit(done, models.ConflictResult(conflicts))
				return
			}
		}

		if err := s.remoteSet(workout); err != nil {
			emit(done, models.PersistenceResult(err))
			return
		}
		if err := s.repo.Upsert(workout); err != nil {
			emit(done, models.PersistenceResult(fmt.Errorf("local insert failed: %w", err)))
			return
		}
		s.publish()
		emit(done, models.SuccessResult(workout))
	})
}

// Update rewrites an existing workout, remote first. A genuine conflict
// with a different record rejects the update; the record never conflicts
// with itself.
func (s *ScheduleStore) Update(workout *models.Workout, done models.ResultFunc) {
	s.submit(done, func() {
		if workout.ID == "" {
			emit(done, models.ValidationResult("id", "cannot update a workout without an id"))
			return
		}
		workout.Normalize()

		conflicts, err := s.slotConflicts(*workout)
		if err != nil {
			emit(done, models.PersistenceResult(err))
			return
		}
		if len(conflicts) > 0 {
			emit(done, models.ConflictResult(conflicts))
			return
		}

		if err := s.remoteSet(workout); err != nil {
			emit(done, models.PersistenceResult(err))
			return
		}
		if err := s.repo.Update(workout); err != nil {
			emit(done, models.PersistenceResult(fmt.Errorf("local update failed: %w", err)))
			return
		}
		s.publish()
		emit(done, models.SuccessResult(workout))
	})
}

// Delete removes the workout's remote copy first, then the local one. With
// no session only the local copy is removed.
func (s *ScheduleStore) Delete(workout *models.Workout, done models.ResultFunc) {
	s.submit(done, func() {
		if userID, ok := s.identity.CurrentUserID(); ok {
			ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
			err := s.remote.Delete(ctx, userID, workout.ID)
			cancel()
			if err != nil {
				emit(done, models.PersistenceResult(fmt.Errorf("remote delete failed: %w", err)))
				return
			}
		}
		if err := s.repo.Delete(workout.ID); err != nil {
			emit(done, models.PersistenceResult(fmt.Errorf("local delete failed: %w", err)))
			return
		}
		s.publish()
		emit(done, models.SuccessResult(workout))
	})
}

// DeleteAll clears the local cache immediately, then best-effort deletes
// each remote document. Remote failures are logged, never retried, and do
// not restore the local rows: the local state is what the user sees next.
func (s *ScheduleStore) DeleteAll(done models.ResultFunc) {
	s.submit(done, func() {
		existing := s.LoadAll()

		if err := s.repo.DeleteAll(); err != nil {
			emit(done, models.PersistenceResult(fmt.Errorf("local clear failed: %w", err)))
			return
		}
		s.publish()
		emit(done, models.SuccessResult(nil))

		userID, ok := s.identity.CurrentUserID()
		if !ok {
			return
		}
		for _, w := range existing {
			ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
			err := s.remote.Delete(ctx, userID, w.ID)
			cancel()
			if err != nil {
				log.Printf("Best-effort remote delete of workout %s failed: %v", w.ID, err)
			}
		}
	})
}

// RefreshFromRemote fetches the signed-in user's full remote collection and
// reconciles the local cache against it by id: every remote record is
// upserted and local records absent from the remote are removed, so the
// cache converges on exactly the remote set without a destructive
// clear-then-fill window. Fetch failures leave the cache untouched, since
// stale local data beats an empty schedule, and surface only as a soft
// warning.
func (s *ScheduleStore) RefreshFromRemote(done func(error)) {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		log.Println("Skipping remote refresh: no authenticated user")
		if done != nil {
			done(nil)
		}
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
		remoteWorkouts, err := s.remote.FetchAll(ctx, userID)
		cancel()
		if err != nil {
			log.Printf("Warning: remote refresh failed, keeping local data: %v", err)
			if done != nil {
				done(err)
			}
			return
		}

		accepted := s.enqueue(func() {
			if err := s.reconcile(remoteWorkouts); err != nil {
				log.Printf("Warning: reconcile after remote refresh failed: %v", err)
				if done != nil {
					done(err)
				}
				return
			}
			s.publish()
			if done != nil {
				done(nil)
			}
		})
		if !accepted && done != nil {
			done(ErrStoreStopped)
		}
	}()
}

func (s *ScheduleStore) reconcile(remoteWorkouts []models.Workout) error {
	remoteByID := make(map[string]struct{}, len(remoteWorkouts))
	for _, w := range remoteWorkouts {
		remoteByID[w.ID] = struct{}{}
	}

	local, err := s.repo.FindAllOrdered()
	if err != nil {
		return fmt.Errorf("failed to read local cache: %w", err)
	}
	for _, w := range local {
		if _, ok := remoteByID[w.ID]; !ok {
			if err := s.repo.Delete(w.ID); err != nil {
				return fmt.Errorf("failed to drop stale workout %s: %w", w.ID, err)
			}
		}
	}
	for i := range remoteWorkouts {
		w := remoteWorkouts[i]
		w.Normalize()
		if err := s.repo.Upsert(&w); err != nil {
			return fmt.Errorf("failed to upsert workout %s: %w", w.ID, err)
		}
	}
	return nil
}

// slotConflicts loads the candidate's slot from the local cache and filters
// out the candidate itself.
func (s *ScheduleStore) slotConflicts(candidate models.Workout) ([]models.Workout, error) {
	occupants, err := s.repo.FindBySlot(candidate.DayOfWeek, candidate.Time)
	if err != nil {
		return nil, fmt.Errorf("failed to check slot: %w", err)
	}
	return FindConflicts(candidate, occupants), nil
}

// remoteSet writes the workout document to the remote store when a user is
// signed in. With no session it is a no-op: local-only writes are the
// offline-first fallback.
func (s *ScheduleStore) remoteSet(workout *models.Workout) error {
	userID, ok := s.identity.CurrentUserID()
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), remoteCallTimeout)
	defer cancel()
	if err := s.remote.Set(ctx, userID, workout); err != nil {
		return fmt.Errorf("remote write failed: %w", err)
	}
	return nil
}

// publish re-reads the ordered schedule from the local cache, swaps the
// snapshot, invalidates the read-side view cache, and notifies watchers.
// Runs on the mutation worker.
func (s *ScheduleStore) publish() {
	workouts, err := s.repo.FindAllOrdered()
	if err != nil {
		log.Printf("Failed to rebuild schedule snapshot: %v", err)
		return
	}
	s.setSnapshot(workouts)

	if s.viewCache != nil {
		if userID, ok := s.identity.CurrentUserID(); ok {
			if err := s.viewCache.Invalidate(userID); err != nil {
				log.Printf("Failed to invalidate view cache: %v", err)
			}
		}
	}

	s.mu.RLock()
	watchers := append(([]func([]models.Workout))(nil), s.watchers...)
	s.mu.RUnlock()
	for _, fn := range watchers {
		view := make([]models.Workout, len(workouts))
		copy(view, workouts)
		fn(view)
	}
}

func (s *ScheduleStore) setSnapshot(workouts []models.Workout) {
	s.mu.Lock()
	s.snapshot = workouts
	s.mu.Unlock()
}

func emit(done models.ResultFunc, r models.Result) {
	if done != nil {
		done(r)
	}
}
