package audit

import "time"

// Actions
const (
	ActionCreated    = "created"
	ActionUpdated    = "updated"
	ActionDeleted    = "deleted"
	ActionMarkedDone = "marked_done"
	ActionConfigured = "configured"
	ActionLoggedIn   = "logged_in"
)

// Object kinds
const (
	KindTopic      = "topic"
	KindMeasure    = "measure"
	KindLocation   = "location"
	KindDepartment = "department"
	KindUser       = "user"
	KindGovernance = "governance"
)

// Entry is one line of the activity log.
type Entry struct {
	ID         string    `json:"id"`
	Time       time.Time `json:"time"` // UTC
	ActorID    int       `json:"actor_id"`
	Action     string    `json:"action"`
	ObjectKind string    `json:"object_kind"`
	ObjectID   string    `json:"object_id"`
	Message    string    `json:"message"`
}

type QueryFilter struct {
	ObjectKind string    `query:"kind"`
	ActorID    int       `query:"actor_id"`
	TimeFrom   time.Time `query:"time_from"`
	TimeTo     time.Time `query:"time_to"`
}
