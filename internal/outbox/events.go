package outbox

// Event types published by the service.
const (
	EventActivityCreated = "activity.created"
	EventWorkoutCreated  = "workout.created"
)

// ActivityCreated is emitted after an activity is stored.
type ActivityCreated struct {
	ActivityID       int64   `json:"activityId"`
	UserID           int64   `json:"userId"`
	ActivityType     string  `json:"activityType"`
	DistanceInMeters float64 `json:"distanceInMeters"`
	Duration         string  `json:"duration"`
	Date             string  `json:"date"`
	Location         string  `json:"location"`
}

func (ActivityCreated) EventType() string     { return EventActivityCreated }
func (ActivityCreated) AggregateType() string { return "activity" }
func (e ActivityCreated) AggregateID() int64  { return e.ActivityID }
func (e ActivityCreated) OwnerID() int64      { return e.UserID }

// WorkoutCreated is emitted after a workout is stored with its activities linked.
type WorkoutCreated struct {
	WorkoutID   int64   `json:"workoutId"`
	UserID      int64   `json:"userId"`
	ActivityIDs []int64 `json:"activityIds"`
	StartTime   string  `json:"startTime"`
	EndTime     string  `json:"endTime"`
}

func (WorkoutCreated) EventType() string     { return EventWorkoutCreated }
func (WorkoutCreated) AggregateType() string { return "workout" }
func (e WorkoutCreated) AggregateID() int64  { return e.WorkoutID }
func (e WorkoutCreated) OwnerID() int64      { return e.UserID }
