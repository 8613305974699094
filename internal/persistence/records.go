package persistence

import (
	"fmt"

	"example.com/runtracker/internal/civil"
	"example.com/runtracker/internal/domain"
)

// ActivityRecord is the activities table row.
type ActivityRecord struct {
	ID               int64      `gorm:"primaryKey;autoIncrement"`
	UserID           int64      `gorm:"not null;index"`
	Kind             string     `gorm:"size:16;not null"`
	DistanceInMeters float64    `gorm:"not null"`
	Date             civil.Date `gorm:"not null"`
	Duration         civil.Span `gorm:"not null"`
	Location         string     `gorm:"size:255;not null"`
	Notes            string     `gorm:"not null"`
	WorkoutID        *int64     `gorm:"index"`
}

func (ActivityRecord) TableName() string { return "activities" }

// WorkoutRecord is the workouts table row. Saving it upserts Activities so
// their workout_id points at the new workout.
type WorkoutRecord struct {
	ID         int64            `gorm:"primaryKey;autoIncrement"`
	UserID     int64            `gorm:"not null;index"`
	StartTime  civil.Timestamp  `gorm:"not null"`
	EndTime    civil.Timestamp  `gorm:"not null"`
	Notes      string           `gorm:"not null"`
	Activities []ActivityRecord `gorm:"foreignKey:WorkoutID"`
}

func (WorkoutRecord) TableName() string { return "workouts" }

func activityRecordOf(a domain.Activity) ActivityRecord {
	return ActivityRecord{
		ID:               a.ID,
		UserID:           a.UserID,
		Kind:             a.Kind.String(),
		DistanceInMeters: a.DistanceInMeters,
		Date:             a.Date,
		Duration:         a.Duration,
		Location:         a.Location,
		Notes:            a.Notes,
	}
}

func (r ActivityRecord) toDomain() (domain.Activity, error) {
	kind, ok := domain.ParseActivityKind(r.Kind)
	if !ok {
		return domain.Activity{}, fmt.Errorf("activity %d: unknown kind %q", r.ID, r.Kind)
	}
	return domain.Activity{
		ID:               r.ID,
		UserID:           r.UserID,
		Kind:             kind,
		DistanceInMeters: r.DistanceInMeters,
		Duration:         r.Duration,
		Date:             r.Date,
		Location:         r.Location,
		Notes:            r.Notes,
	}, nil
}
