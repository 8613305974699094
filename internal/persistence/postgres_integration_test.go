//go:build integration

package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	postgrescontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"example.com/runtracker/internal/civil"
	"example.com/runtracker/internal/domain"
)

func TestPostgresStores(t *testing.T) {
	ctx := context.Background()

	pg, err := postgrescontainer.Run(ctx, "postgres:16-alpine",
		postgrescontainer.WithDatabase("runtracker"),
		postgrescontainer.WithUsername("runtracker"),
		postgrescontainer.WithPassword("runtracker"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pg.Terminate(ctx) })

	connStr, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(ctx, Config{Driver: DriverPostgres, URL: connStr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ResetSchema(ctx))

	activities := NewActivityStore(db)
	workouts := NewWorkoutStore(db)

	first := sampleActivity(1)
	second := sampleActivity(1)
	require.NoError(t, activities.Save(ctx, first))
	require.NoError(t, activities.Save(ctx, second))

	found, err := activities.Find(ctx, first.ID)
	require.NoError(t, err)
	require.Equal(t, first, found)

	linked, err := workouts.Activities(ctx, []int64{second.ID, first.ID, 999})
	require.NoError(t, err)
	require.Len(t, linked, 2)

	start, err := civil.ParseTimestamp("2024-01-01T08:00:00")
	require.NoError(t, err)
	workout := &domain.Workout{UserID: 1, StartTime: start, EndTime: start, Activities: linked}
	require.NoError(t, workouts.Save(ctx, workout))

	got, err := workouts.Find(ctx, workout.ID)
	require.NoError(t, err)
	require.Equal(t, []int64{first.ID, second.ID}, got.ActivityIDs())
	require.Equal(t, "2024-01-01T08:00:00", got.StartTime.String())

	empty := &domain.Workout{UserID: 2, StartTime: start, EndTime: start}
	require.NoError(t, workouts.Save(ctx, empty))
	got, err = workouts.Find(ctx, empty.ID)
	require.NoError(t, err)
	require.Empty(t, got.Activities)

	var pending int64
	require.NoError(t, db.Gorm.Table("outbox").Where("published_at IS NULL").Count(&pending).Error)
	require.Equal(t, int64(4), pending)
}
