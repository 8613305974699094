package domain

import "example.com/runtracker/internal/civil"

// Workout groups the activities performed in one session.
type Workout struct {
	ID        int64
	UserID    int64
	StartTime civil.Timestamp
	EndTime   civil.Timestamp
	Notes     string
	// Activities attached to the workout. Read projections populate only
	// the ID of each entry.
	Activities []Activity
}

// ActivityIDs lists the identifiers of the attached activities in order.
func (w Workout) ActivityIDs() []int64 {
	ids := make([]int64, 0, len(w.Activities))
	for _, a := range w.Activities {
		ids = append(ids, a.ID)
	}
	return ids
}
