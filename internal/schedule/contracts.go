package schedule

import (
	"context"
	"time"

	"clinic-logistics-backend/internal/model"
)

// Dimension identifies which timeline a conflict scan runs on.
type Dimension int

const (
	// DimensionResource keys the scan by the exam resource being booked.
	DimensionResource Dimension = iota
	// DimensionRequester keys the scan by the person requesting the booking.
	DimensionRequester
)

// ConflictDetector decides whether a candidate [start, end) window collides
// with an existing non-cancelled appointment sharing the dimension key.
//
// The two dimensions deliberately use different predicates. The resource scan
// widens its lower bound by one full candidate duration below start, both ends
// inclusive, so equal-duration bookings cannot even abut. The requester scan
// is a plain inclusive containment of existing start times in [start, end].
// excludeID, when non-empty, removes the appointment being edited from the
// scan so it never conflicts with itself.
type ConflictDetector interface {
	HasConflict(ctx context.Context, dim Dimension, key string, start, end time.Time, excludeID string) (bool, error)
}

// Filter narrows an appointment listing. All fields are optional and
// AND-combined; results are ordered ascending by start time.
type Filter struct {
	StartFrom   *time.Time
	StartTo     *time.Time
	RequesterID string
	ResourceID  string
	Status      model.AppointmentStatus
}

// Store owns persisted appointment records. It holds no business rules;
// conflict detection and calendar validation live in the engine's
// collaborators.
type Store interface {
	Insert(ctx context.Context, appt *model.Appointment) error
	GetByID(ctx context.Context, id string) (*model.Appointment, error)
	Query(ctx context.Context, f Filter) ([]model.Appointment, error)
	Save(ctx context.Context, appt *model.Appointment) error

	// Transaction runs fn with a store and detector bound to one serializable
	// transaction, so a conflict scan and the write it guards see the same
	// state. Returning an error rolls everything back.
	Transaction(ctx context.Context, fn func(s Store, cd ConflictDetector) error) error
}

// ResourceFinder resolves an active exam resource. Implementations return
// ErrResourceNotFound for absent or inactive ids.
type ResourceFinder interface {
	FindActiveResource(ctx context.Context, id string) (*model.ExamResource, error)
}

// Notifier is told about successful creations so the requester can be
// messaged. Implementations must not block the caller; delivery failures are
// theirs to log and swallow.
type Notifier interface {
	AppointmentBooked(appointmentID string)
}
