package persistence

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"example.com/runtracker/internal/domain"
	"example.com/runtracker/internal/observability"
	"example.com/runtracker/internal/outbox"
)

// Writer is the change-tracked write path. Every save also appends an outbox
// row inside the same transaction.
type Writer struct {
	db  *gorm.DB
	now func() time.Time
}

// NewWriter constructs a Writer.
func NewWriter(db *gorm.DB) *Writer {
	return &Writer{db: db, now: time.Now}
}

// SaveActivity inserts a and assigns its identifier.
func (w *Writer) SaveActivity(ctx context.Context, a *domain.Activity) error {
	rec := activityRecordOf(*a)
	rec.ID = 0

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert activity: %w", err)
		}
		return appendOutbox(tx, outbox.ActivityCreated{
			ActivityID:       rec.ID,
			UserID:           rec.UserID,
			ActivityType:     rec.Kind,
			DistanceInMeters: rec.DistanceInMeters,
			Duration:         rec.Duration.String(),
			Date:             rec.Date.String(),
			Location:         rec.Location,
		}, w.now())
	})
	if err != nil {
		return fmt.Errorf("save activity: %w", err)
	}

	a.ID = rec.ID
	observability.RecordActivityPersisted(w.now())
	return nil
}

// LoadActivities returns the stored activities whose ids appear in ids,
// ordered by id. Unknown ids are skipped.
func (w *Writer) LoadActivities(ctx context.Context, ids []int64) ([]domain.Activity, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var recs []ActivityRecord
	if err := w.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("load activities: %w", err)
	}

	out := make([]domain.Activity, 0, len(recs))
	for _, rec := range recs {
		a, err := rec.toDomain()
		if err != nil {
			return nil, fmt.Errorf("load activities: %w", err)
		}
		out = append(out, a)
	}
	return out, nil
}

// SaveWorkout inserts wk and moves each attached activity onto it.
func (w *Writer) SaveWorkout(ctx context.Context, wk *domain.Workout) error {
	rec := WorkoutRecord{
		UserID:     wk.UserID,
		StartTime:  wk.StartTime,
		EndTime:    wk.EndTime,
		Notes:      wk.Notes,
		Activities: make([]ActivityRecord, 0, len(wk.Activities)),
	}
	for _, a := range wk.Activities {
		rec.Activities = append(rec.Activities, activityRecordOf(a))
	}

	err := w.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Activities already carry primary keys, so gorm upserts them and
		// only rewrites workout_id on conflict.
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert workout: %w", err)
		}
		ids := make([]int64, 0, len(rec.Activities))
		for _, a := range rec.Activities {
			ids = append(ids, a.ID)
		}
		return appendOutbox(tx, outbox.WorkoutCreated{
			WorkoutID:   rec.ID,
			UserID:      rec.UserID,
			ActivityIDs: ids,
			StartTime:   rec.StartTime.String(),
			EndTime:     rec.EndTime.String(),
		}, w.now())
	})
	if err != nil {
		return fmt.Errorf("save workout: %w", err)
	}

	wk.ID = rec.ID
	observability.RecordWorkoutPersisted(w.now())
	return nil
}

func appendOutbox(tx *gorm.DB, event outbox.Event, now time.Time) error {
	rec, err := outbox.NewRecord(event, now)
	if err != nil {
		return err
	}
	if err := tx.Create(&rec).Error; err != nil {
		return fmt.Errorf("insert outbox %s: %w", event.EventType(), err)
	}
	return nil
}
