package persistence

import (
	"context"

	"example.com/runtracker/internal/domain"
)

// ActivityStore writes through the Writer and reads through the Reader.
type ActivityStore struct {
	writer *Writer
	reader *Reader
}

// NewActivityStore constructs an ActivityStore over db.
func NewActivityStore(db *Database) *ActivityStore {
	return &ActivityStore{writer: NewWriter(db.Gorm), reader: NewReader(db.SQL, db.Dialect)}
}

func (s *ActivityStore) Save(ctx context.Context, activity *domain.Activity) error {
	return s.writer.SaveActivity(ctx, activity)
}

func (s *ActivityStore) Find(ctx context.Context, id int64) (*domain.Activity, error) {
	return s.reader.FindActivity(ctx, id)
}

// WorkoutStore writes through the Writer and reads through the Reader.
type WorkoutStore struct {
	writer *Writer
	reader *Reader
}

// NewWorkoutStore constructs a WorkoutStore over db.
func NewWorkoutStore(db *Database) *WorkoutStore {
	return &WorkoutStore{writer: NewWriter(db.Gorm), reader: NewReader(db.SQL, db.Dialect)}
}

func (s *WorkoutStore) Activities(ctx context.Context, ids []int64) ([]domain.Activity, error) {
	return s.writer.LoadActivities(ctx, ids)
}

func (s *WorkoutStore) Save(ctx context.Context, workout *domain.Workout) error {
	return s.writer.SaveWorkout(ctx, workout)
}

func (s *WorkoutStore) Find(ctx context.Context, id int64) (*domain.Workout, error) {
	return s.reader.FindWorkout(ctx, id)
}
