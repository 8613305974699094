package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/jmoiron/sqlx"

	"example.com/runtracker/internal/civil"
	"example.com/runtracker/internal/domain"
)

// Reader serves queries straight from SQL projections.
type Reader struct {
	db      *sqlx.DB
	dialect goqu.DialectWrapper
}

// NewReader constructs a Reader.
func NewReader(db *sqlx.DB, dialect goqu.DialectWrapper) *Reader {
	return &Reader{db: db, dialect: dialect}
}

type activityRow struct {
	ID               int64      `db:"id"`
	UserID           int64      `db:"user_id"`
	Kind             string     `db:"kind"`
	DistanceInMeters float64    `db:"distance_in_meters"`
	Date             civil.Date `db:"date"`
	Duration         civil.Span `db:"duration"`
	Location         string     `db:"location"`
	Notes            string     `db:"notes"`
}

// FindActivity returns nil when no activity has the given id.
func (r *Reader) FindActivity(ctx context.Context, id int64) (*domain.Activity, error) {
	query, args, err := r.dialect.From("activities").
		Select("id", "user_id", "kind", "distance_in_meters", "date", "duration", "location", "notes").
		Where(goqu.C("id").Eq(id)).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("find activity: build query: %w", err)
	}

	var row activityRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find activity %d: %w", id, err)
	}

	activity, err := ActivityRecord{
		ID:               row.ID,
		UserID:           row.UserID,
		Kind:             row.Kind,
		DistanceInMeters: row.DistanceInMeters,
		Date:             row.Date,
		Duration:         row.Duration,
		Location:         row.Location,
		Notes:            row.Notes,
	}.toDomain()
	if err != nil {
		return nil, fmt.Errorf("find activity: %w", err)
	}
	return &activity, nil
}

type workoutRow struct {
	WorkoutID  int64           `db:"workout_id"`
	UserID     int64           `db:"user_id"`
	StartTime  civil.Timestamp `db:"start_time"`
	EndTime    civil.Timestamp `db:"end_time"`
	Notes      string          `db:"notes"`
	ActivityID sql.NullInt64   `db:"activity_id"`
}

// FindWorkout loads the workout and its linked activity ids in one LEFT
// JOIN. It returns nil when the workout does not exist.
func (r *Reader) FindWorkout(ctx context.Context, id int64) (*domain.Workout, error) {
	query, args, err := r.dialect.From(goqu.T("workouts").As("w")).
		LeftJoin(goqu.T("activities").As("a"), goqu.On(goqu.I("a.workout_id").Eq(goqu.I("w.id")))).
		Select(
			goqu.I("w.id").As("workout_id"),
			goqu.I("w.user_id").As("user_id"),
			goqu.I("w.start_time").As("start_time"),
			goqu.I("w.end_time").As("end_time"),
			goqu.I("w.notes").As("notes"),
			goqu.I("a.id").As("activity_id"),
		).
		Where(goqu.I("w.id").Eq(id)).
		Order(goqu.I("a.id").Asc()).
		Prepared(true).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("find workout: build query: %w", err)
	}

	var rows []workoutRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("find workout %d: %w", id, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	first := rows[0]
	workout := &domain.Workout{
		ID:         first.WorkoutID,
		UserID:     first.UserID,
		StartTime:  first.StartTime,
		EndTime:    first.EndTime,
		Notes:      first.Notes,
		Activities: make([]domain.Activity, 0, len(rows)),
	}
	for _, row := range rows {
		if row.ActivityID.Valid {
			workout.Activities = append(workout.Activities, domain.Activity{ID: row.ActivityID.Int64})
		}
	}
	return workout, nil
}
