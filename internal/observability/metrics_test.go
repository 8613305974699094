package observability

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestRecordPersisted(t *testing.T) {
	activities := testutil.ToFloat64(activitiesPersisted)
	workouts := testutil.ToFloat64(workoutsPersisted)

	ts := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	RecordActivityPersisted(ts)
	RecordWorkoutPersisted(ts.Add(time.Minute))

	require.Equal(t, activities+1, testutil.ToFloat64(activitiesPersisted))
	require.Equal(t, workouts+1, testutil.ToFloat64(workoutsPersisted))
	require.Equal(t, float64(ts.Add(time.Minute).Unix()), testutil.ToFloat64(lastWriteGauge))
}

func TestObserveRequest(t *testing.T) {
	ObserveRequest("test.Observe", "ok", 5*time.Millisecond)
	require.Equal(t, 1, testutil.CollectAndCount(requestDuration, "runtracker_mediator_request_duration_seconds"))
}
