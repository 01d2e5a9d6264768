package services

import "gymplan/internal/models"

// FindConflicts returns every existing workout occupying the candidate's
// weekly slot (same day of week and start time) under a different id. The
// candidate itself is never reported, so an in-place update cannot conflict
// with its own record. Conflicts are never resolved here: the caller either
// force-adds past them or abandons the operation.
func FindConflicts(candidate models.Workout, existing []models.Workout) []models.Workout {
	var conflicts []models.Workout
	for i := range existing {
		if candidate.HasTimeConflict(&existing[i]) {
			conflicts = append(conflicts, existing[i])
		}
	}
	return conflicts
}
