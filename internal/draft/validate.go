package draft

import (
	"strings"
	"time"

	"github.com/uniexp/uniexp-admin-backend/internal/validation"
)

// ValidateAll checks required fields and the cross-field date rules of the
// working state. The result is empty when the draft may be submitted.
//
// The "registration closes in the future" rule applies to new events and to
// edits that move the closing date; an edit of an event whose registration
// already closed may still change other fields.
func (d *Draft) ValidateAll() validation.Errors {
	d.mu.Lock()
	defer d.mu.Unlock()

	checkFuture := d.mode == ModeCreate ||
		!sameInstant(d.original.RegistrationClosingDate, d.current.RegistrationClosingDate)
	return validateEvent(d.current, d.now(), checkFuture)
}

func validateEvent(e EventDraft, now time.Time, checkFuture bool) validation.Errors {
	errs := validation.Errors{}

	if strings.TrimSpace(e.EventName) == "" {
		errs.Add(FieldEventName, "Event name is required")
	}
	if strings.TrimSpace(e.EventDescription) == "" {
		errs.Add(FieldEventDescription, "Event description is required")
	}
	if e.Category == "" {
		errs.Add(FieldCategory, "Category is required")
	} else if _, err := e.Category.Code(); err != nil {
		errs.Add(FieldCategory, "Category is invalid")
	}

	start, end, closing := e.EventStartDateTime, e.EventEndDateTime, e.RegistrationClosingDate
	if start.IsZero() {
		errs.Add(FieldEventStartDateTime, "Start date and time is required")
	}
	switch {
	case end.IsZero():
		errs.Add(FieldEventEndDateTime, "End date and time is required")
	case !start.IsZero() && end.Before(start.Add(LeadTime)):
		errs.Add(FieldEventEndDateTime, "End date must be at least 1 hour after the start date")
	}
	switch {
	case closing.IsZero():
		errs.Add(FieldRegistrationClosingDate, "Registration closing date is required")
	case !start.IsZero() && closing.After(start.Add(-LeadTime)):
		errs.Add(FieldRegistrationClosingDate, "Registration must close at least 1 hour before the event starts")
	case checkFuture && closing.Before(now):
		errs.Add(FieldRegistrationClosingDate, "Registration closing date cannot be in the past")
	}

	if strings.TrimSpace(e.LocationName) == "" {
		errs.Add(FieldLocationName, "Location is required")
	}
	if e.Pinpoint == nil {
		errs.Add(FieldPinpoint, "Pinpoint the location on the map")
	}

	if e.RequiresCapacity {
		if _, msg := validation.PositiveInt(e.Capacity, "Capacity"); msg != "" {
			errs.Add(FieldCapacity, msg)
		}
	}
	if e.IsYearRestrict && len(e.YearsRestricted) == 0 {
		errs.Add(FieldYearsRestricted, "Select at least one year")
	}

	switch n := len(e.Images); {
	case n == 0:
		errs.Add(FieldImages, "At least one image is required")
	case n > MaxImages:
		errs.Add(FieldImages, "A maximum of 4 images is allowed")
	}
	return errs
}
