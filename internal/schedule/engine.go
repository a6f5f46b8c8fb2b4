package schedule

import (
	"context"
	"time"

	"github.com/google/uuid"

	"clinic-logistics-backend/internal/calendar"
	"clinic-logistics-backend/internal/model"
)

// timeLayouts are the accepted input formats, most specific first.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTime parses a booking timestamp in any accepted layout.
func ParseTime(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// Engine orchestrates the appointment lifecycle. All collaborators are
// injected; the engine holds no record state across calls.
type Engine struct {
	store     Store
	resources ResourceFinder
	clock     calendar.Clock
	notifier  Notifier
}

// NewEngine creates a booking engine. notifier may be nil.
func NewEngine(store Store, resources ResourceFinder, clock calendar.Clock, notifier Notifier) *Engine {
	return &Engine{
		store:     store,
		resources: resources,
		clock:     clock,
		notifier:  notifier,
	}
}

// CreateParams carries the plain inputs of a booking request. StartTime and
// PickupTime arrive as strings because unparseable input is a caller error
// the engine must report, not a transport concern.
type CreateParams struct {
	RequesterID string
	ResourceID  string
	StartTime   string
	Notes       string
	PickupTime  string
}

// Create books a new appointment. It validates input, checks operating hours,
// resolves the resource, runs both conflict scans and the insert inside one
// transaction, then dispatches the confirmation without waiting on it.
func (e *Engine) Create(ctx context.Context, p CreateParams) (*model.Appointment, error) {
	if p.RequesterID == "" {
		return nil, ValidationError{Field: "requester_id", Reason: "required"}
	}
	if p.ResourceID == "" {
		return nil, ValidationError{Field: "resource_id", Reason: "required"}
	}
	if p.StartTime == "" {
		return nil, ValidationError{Field: "start_time", Reason: "required"}
	}

	start, err := ParseTime(p.StartTime)
	if err != nil {
		return nil, ValidationError{Field: "start_time", Reason: "unparseable timestamp"}
	}

	var pickup *time.Time
	if p.PickupTime != "" {
		t, err := ParseTime(p.PickupTime)
		if err != nil {
			return nil, ValidationError{Field: "pickup_time", Reason: "unparseable timestamp"}
		}
		pickup = &t
	}

	if !e.clock.OperatingInstant(start) {
		return nil, ErrOutOfHours
	}

	res, err := e.resources.FindActiveResource(ctx, p.ResourceID)
	if err != nil {
		return nil, err
	}
	end := calendar.ShiftMinutes(start, res.EstimatedDurationMinutes)

	appt := &model.Appointment{
		ID:          uuid.NewString(),
		RequesterID: p.RequesterID,
		ResourceID:  res.ID,
		StartTime:   start,
		PickupTime:  pickup,
		Status:      model.StatusScheduled,
		Notes:       p.Notes,
	}

	err = e.store.Transaction(ctx, func(s Store, cd ConflictDetector) error {
		if err := e.assertFree(ctx, cd, appt.ResourceID, appt.RequesterID, start, end, ""); err != nil {
			return err
		}
		return s.Insert(ctx, appt)
	})
	if err != nil {
		return nil, err
	}

	if e.notifier != nil {
		e.notifier.AppointmentBooked(appt.ID)
	}
	return appt, nil
}

// TimePatch is a three-state input: absent (Set false), explicit clear
// (Set true, Value nil), or a value to parse and apply.
type TimePatch struct {
	Set   bool
	Value *string
}

// UpdateParams carries a partial appointment mutation. nil pointer fields are
// left unchanged; see TimePatch for the pickup time's third state.
type UpdateParams struct {
	StartTime  *string
	ResourceID *string
	Status     *string
	Notes      *string
	PickupTime TimePatch
}

// Update mutates an appointment in place. The effective window (new values
// where supplied, stored values otherwise) is re-validated from scratch, with
// the appointment's own id excluded from both conflict scans. The load, the
// terminal-state guard and the write all run in one transaction so a
// concurrent cancellation cannot be overwritten by a stale record.
func (e *Engine) Update(ctx context.Context, id string, p UpdateParams) (*model.Appointment, error) {
	var appt *model.Appointment
	err := e.store.Transaction(ctx, func(s Store, cd ConflictDetector) error {
		var err error
		appt, err = s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if appt.Status == model.StatusCancelled {
			return ValidationError{Field: "status", Reason: "appointment is cancelled"}
		}

		effStart := appt.StartTime
		if p.StartTime != nil {
			start, err := ParseTime(*p.StartTime)
			if err != nil {
				return ValidationError{Field: "start_time", Reason: "unparseable timestamp"}
			}
			if !e.clock.OperatingInstant(start) {
				return ErrOutOfHours
			}
			effStart = start
		}

		effResourceID := appt.ResourceID
		if p.ResourceID != nil {
			if *p.ResourceID == "" {
				return ValidationError{Field: "resource_id", Reason: "must not be empty"}
			}
			effResourceID = *p.ResourceID
		}

		res, err := e.resources.FindActiveResource(ctx, effResourceID)
		if err != nil {
			return err
		}
		end := calendar.ShiftMinutes(effStart, res.EstimatedDurationMinutes)

		if p.PickupTime.Set {
			if p.PickupTime.Value == nil {
				appt.PickupTime = nil
			} else {
				t, err := ParseTime(*p.PickupTime.Value)
				if err != nil {
					return ValidationError{Field: "pickup_time", Reason: "unparseable timestamp"}
				}
				appt.PickupTime = &t
			}
		}

		if p.Status != nil {
			status := model.AppointmentStatus(*p.Status)
			if !model.ValidStatus(status) {
				return ValidationError{Field: "status", Reason: "unknown status"}
			}
			appt.Status = status
		}
		if p.Notes != nil {
			appt.Notes = *p.Notes
		}

		appt.StartTime = effStart
		appt.ResourceID = res.ID

		if err := e.assertFree(ctx, cd, appt.ResourceID, appt.RequesterID, effStart, end, appt.ID); err != nil {
			return err
		}
		return s.Save(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// Cancel marks an appointment CANCELLED. Cancelling an already-cancelled
// appointment is a no-op that neither resurrects nor alters other fields.
// Load and write share a transaction so the stale record of a concurrent
// mutation is never written back.
func (e *Engine) Cancel(ctx context.Context, id string) (*model.Appointment, error) {
	var appt *model.Appointment
	err := e.store.Transaction(ctx, func(s Store, _ ConflictDetector) error {
		var err error
		appt, err = s.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if appt.Status == model.StatusCancelled {
			return nil
		}
		appt.Status = model.StatusCancelled
		return s.Save(ctx, appt)
	})
	if err != nil {
		return nil, err
	}
	return appt, nil
}

// ListParams are the optional listing filters, AND-combined.
type ListParams struct {
	StartFrom   string
	StartTo     string
	RequesterID string
	ResourceID  string
	Status      string
}

// List returns appointments matching the filters, ascending by start time.
func (e *Engine) List(ctx context.Context, p ListParams) ([]model.Appointment, error) {
	var f Filter
	if p.StartFrom != "" {
		t, err := ParseTime(p.StartFrom)
		if err != nil {
			return nil, ValidationError{Field: "start_from", Reason: "unparseable timestamp"}
		}
		f.StartFrom = &t
	}
	if p.StartTo != "" {
		t, err := ParseTime(p.StartTo)
		if err != nil {
			return nil, ValidationError{Field: "start_to", Reason: "unparseable timestamp"}
		}
		f.StartTo = &t
	}
	f.RequesterID = p.RequesterID
	f.ResourceID = p.ResourceID
	if p.Status != "" {
		status := model.AppointmentStatus(p.Status)
		if !model.ValidStatus(status) {
			return nil, ValidationError{Field: "status", Reason: "unknown status"}
		}
		f.Status = status
	}
	return e.store.Query(ctx, f)
}

// assertFree runs the resource scan then the requester scan against the
// candidate window, mapping hits to their conflict errors.
func (e *Engine) assertFree(ctx context.Context, cd ConflictDetector, resourceID, requesterID string, start, end time.Time, excludeID string) error {
	hit, err := cd.HasConflict(ctx, DimensionResource, resourceID, start, end, excludeID)
	if err != nil {
		return err
	}
	if hit {
		return ErrResourceConflict
	}
	hit, err = cd.HasConflict(ctx, DimensionRequester, requesterID, start, end, excludeID)
	if err != nil {
		return err
	}
	if hit {
		return ErrRequesterConflict
	}
	return nil
}
