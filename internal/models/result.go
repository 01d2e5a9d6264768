package models

import "fmt"

// ResultKind tags the outcome of an asynchronous schedule operation. The
// many overlapping success/error listener shapes callers used to need are
// collapsed into this one type: every operation completes through exactly
// one Result, exactly once.
type ResultKind int

const (
	ResultSuccess ResultKind = iota
	// ResultValidation: the input was malformed. Recoverable, never retried
	// automatically; Field names the offending field.
	ResultValidation
	// ResultConflict: the slot is already taken. Not a failure but a decision
	// point; Conflicts carries the occupying workouts and the caller either
	// force-adds or abandons.
	ResultConflict
	// ResultPersistence: a remote or local write failed. The local cache is
	// left in its last-known-good state and the whole operation may be
	// retried.
	ResultPersistence
)

func (k ResultKind) String() string {
	switch k {
	case ResultSuccess:
		return "success"
	case ResultValidation:
		return "validation"
	case ResultConflict:
		return "conflict"
	case ResultPersistence:
		return "persistence"
	default:
		return "unknown"
	}
}

// Result is the single tagged outcome of an add/update/delete operation.
type Result struct {
	Kind      ResultKind
	Workout   *Workout
	Conflicts []Workout
	Field     string
	Err       error
}

// ResultFunc receives the outcome of an asynchronous operation. It is called
// exactly once per operation, on a background goroutine.
type ResultFunc func(Result)

func SuccessResult(w *Workout) Result {
	return Result{Kind: ResultSuccess, Workout: w}
}

func ValidationResult(field, message string) Result {
	return Result{
		Kind:  ResultValidation,
		Field: field,
		Err:   fmt.Errorf("invalid %s: %s", field, message),
	}
}

func ConflictResult(conflicts []Workout) Result {
	return Result{
		Kind:      ResultConflict,
		Conflicts: conflicts,
		Err:       fmt.Errorf("time conflict with %d existing workout(s)", len(conflicts)),
	}
}

func PersistenceResult(err error) Result {
	return Result{Kind: ResultPersistence, Err: err}
}
