package draft

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cast"
	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
)

// Mode tells whether a draft creates a new event or edits a persisted one
type Mode string

const (
	ModeCreate Mode = "create"
	ModeEdit   Mode = "edit"
)

var (
	ErrUnknownField  = errors.New("unknown field")
	ErrReadOnlyField = errors.New("field cannot be set directly")
	ErrTooManyImages = fmt.Errorf("an event can have at most %d images", MaxImages)
	ErrImageTooLarge = errors.New("image exceeds the size limit")
	ErrImageNotFound = errors.New("image not found")
	ErrEmptyImage    = errors.New("image payload is empty")
	ErrDraftClosed   = errors.New("draft is closed")
)

// FieldValueError reports a value that cannot be converted to its field's type
type FieldValueError struct {
	Field string
	Err   error
}

func (e *FieldValueError) Error() string {
	return fmt.Sprintf("invalid value for %s: %v", e.Field, e.Err)
}

func (e *FieldValueError) Unwrap() error { return e.Err }

// Draft is the aggregate for one authoring flow. All methods are safe for
// concurrent use; live-update callbacks may replace the original snapshot
// from another goroutine.
type Draft struct {
	mu       sync.Mutex
	mode     Mode
	original EventDraft
	current  EventDraft
	subs     *SubscriptionSet
	closed   bool
	now      func() time.Time
}

// NewCreate starts the creation flow from an empty draft
func NewCreate(now func() time.Time) *Draft {
	e := NewEventDraft()
	return newDraft(ModeCreate, e, now)
}

// NewEdit starts the edit flow from a persisted event
func NewEdit(original EventDraft, now func() time.Time) *Draft {
	return newDraft(ModeEdit, original, now)
}

func newDraft(mode Mode, original EventDraft, now func() time.Time) *Draft {
	if now == nil {
		now = time.Now
	}
	return &Draft{
		mode:     mode,
		original: original.Clone(),
		current:  original.Clone(),
		subs:     NewSubscriptionSet(),
		now:      now,
	}
}

// Mode returns the flow this draft belongs to
func (d *Draft) Mode() Mode { return d.mode }

// Subscriptions returns the set of live listeners owned by this draft
func (d *Draft) Subscriptions() *SubscriptionSet { return d.subs }

// Current returns a copy of the working state
func (d *Draft) Current() EventDraft {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current.Clone()
}

// Original returns a copy of the last persisted snapshot
func (d *Draft) Original() EventDraft {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.original.Clone()
}

// Snapshot deep-clones the working state
func (d *Draft) Snapshot() EventDraft { return d.Current() }

// HasChanges reports whether any field differs from the original
func (d *Draft) HasChanges() bool { return !d.ChangedFields().Empty() }

// ChangedFields lists the fields that differ from the original
func (d *Draft) ChangedFields() FieldSet {
	d.mu.Lock()
	defer d.mu.Unlock()
	return Diff(d.original, d.current)
}

// Commit makes the working state the new original
func (d *Draft) Commit() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.original = d.current.Clone()
}

// ReplaceOriginal installs a snapshot pushed by the store. It reports false
// once the draft is closed.
func (d *Draft) ReplaceOriginal(e EventDraft) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	d.original = e.Clone()
	return true
}

// UpdateOriginal applies fn to the original snapshot, for partial pushes such
// as an images-only change.
func (d *Draft) UpdateOriginal(fn func(*EventDraft)) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return false
	}
	fn(&d.original)
	return true
}

// ApplyStatus records a status derived by the persistence layer. Admins never
// set status directly.
func (d *Draft) ApplyStatus(s models.EventStatus) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current.Status = s
}

// Close disposes every subscription. Later snapshot pushes are ignored.
func (d *Draft) Close() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()
	d.subs.DisposeAll()
}

// Closed reports whether Close has run
func (d *Draft) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

// SetField assigns value to the named field after converting it to the
// field's type.
//
// Cascades: clearing isYearRestrict empties yearsRestricted, clearing
// requiresCapacity empties capacity, and in the creation flow a new start
// date re-anchors end and registration closing (see ApplyStartDateChange).
func (d *Draft) SetField(name string, value any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}
	return d.setField(name, value)
}

// SetFields applies values in the given order. It is all or nothing: on the
// first failing field the working state is restored.
func (d *Draft) SetFields(order []string, values map[string]any) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}
	prev := d.current.Clone()
	for _, name := range order {
		if err := d.setField(name, values[name]); err != nil {
			d.current = prev
			return err
		}
	}
	return nil
}

func (d *Draft) setField(name string, value any) error {
	e := &d.current

	switch name {
	case FieldEventName, FieldEventDescription, FieldLocationName:
		s, err := cast.ToStringE(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		switch name {
		case FieldEventName:
			e.EventName = s
		case FieldEventDescription:
			e.EventDescription = s
		default:
			e.LocationName = s
		}
	case FieldCategory:
		s, err := cast.ToStringE(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		e.Category = models.Category(strings.TrimSpace(s))
	case FieldEventStartDateTime:
		t, err := toTime(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		if d.mode == ModeCreate && !t.IsZero() {
			*e = ApplyStartDateChange(*e, t)
		} else {
			e.EventStartDateTime = t
		}
	case FieldEventEndDateTime, FieldRegistrationClosingDate:
		t, err := toTime(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		if name == FieldEventEndDateTime {
			e.EventEndDateTime = t
		} else {
			e.RegistrationClosingDate = t
		}
	case FieldPinpoint:
		p, err := toGeoPoint(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		e.Pinpoint = p
	case FieldRequiresCapacity:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		e.RequiresCapacity = b
		if !b {
			e.Capacity = nil
		}
	case FieldCapacity:
		switch value.(type) {
		case bool, []any, map[string]any:
			return &FieldValueError{Field: name, Err: fmt.Errorf("unexpected %T", value)}
		}
		e.Capacity = value
	case FieldIsFacultyRestrict, FieldIsYearRestrict, FieldPaymentProofRequired:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		switch name {
		case FieldIsFacultyRestrict:
			e.IsFacultyRestrict = b
		case FieldPaymentProofRequired:
			e.PaymentProofRequired = b
		default:
			e.IsYearRestrict = b
			if !b {
				e.YearsRestricted = []int{}
			}
		}
	case FieldYearsRestricted:
		if value == nil {
			e.YearsRestricted = []int{}
			return nil
		}
		years, err := cast.ToIntSliceE(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		e.YearsRestricted = dedupe(years)
	case FieldImages:
		if value == nil {
			e.Images = []string{}
			return nil
		}
		imgs, err := cast.ToStringSliceE(value)
		if err != nil {
			return &FieldValueError{Field: name, Err: err}
		}
		e.Images = imgs
	case FieldStatus, FieldQuests:
		return fmt.Errorf("%w: %s", ErrReadOnlyField, name)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, name)
	}
	return nil
}

// AddQuest validates fields as a quest of kind and attaches it. Validation
// failures come back as validation.Errors and leave the set untouched.
func (d *Draft) AddQuest(kind quest.Kind, fields quest.Fields) (quest.Definition, error) {
	def, errs, err := quest.Build(kind, fields)
	if err != nil {
		return quest.Definition{}, err
	}
	if !errs.Empty() {
		return quest.Definition{}, errs
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return quest.Definition{}, ErrDraftClosed
	}
	if err := d.current.Quests.Add(def); err != nil {
		return quest.Definition{}, err
	}
	return def, nil
}

// UpdateQuest validates fields and replaces the quest at (kind, index)
func (d *Draft) UpdateQuest(kind quest.Kind, index int, fields quest.Fields) (quest.Definition, error) {
	desc, err := quest.Describe(kind)
	if err != nil {
		return quest.Definition{}, err
	}
	if !desc.Editable {
		return quest.Definition{}, fmt.Errorf("%w: %s", quest.ErrNotEditable, kind)
	}
	def, errs, err := quest.Build(kind, fields)
	if err != nil {
		return quest.Definition{}, err
	}
	if !errs.Empty() {
		return quest.Definition{}, errs
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return quest.Definition{}, ErrDraftClosed
	}
	if err := d.current.Quests.Replace(kind, index, def); err != nil {
		return quest.Definition{}, err
	}
	return def, nil
}

// RemoveQuest drops the quest at (kind, index)
func (d *Draft) RemoveQuest(kind quest.Kind, index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}
	return d.current.Quests.Remove(kind, index)
}

// AddImage appends an encoded image payload of at most maxBytes
func (d *Draft) AddImage(payload string, maxBytes int) error {
	if payload == "" {
		return ErrEmptyImage
	}
	if maxBytes > 0 && len(payload) > maxBytes {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrImageTooLarge, len(payload), maxBytes)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}
	if len(d.current.Images) >= MaxImages {
		return ErrTooManyImages
	}
	d.current.Images = append(d.current.Images, payload)
	return nil
}

// RemoveImage drops the image at index
func (d *Draft) RemoveImage(index int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDraftClosed
	}
	if index < 0 || index >= len(d.current.Images) {
		return fmt.Errorf("%w: %d", ErrImageNotFound, index)
	}
	imgs := append([]string{}, d.current.Images[:index]...)
	d.current.Images = append(imgs, d.current.Images[index+1:]...)
	return nil
}

func toTime(v any) (time.Time, error) {
	if validation.Blank(v) {
		return time.Time{}, nil
	}
	t, err := cast.ToTimeE(v)
	if err != nil {
		return time.Time{}, err
	}
	// the store keeps millisecond precision
	return t.Truncate(time.Millisecond), nil
}

func toGeoPoint(v any) (*models.GeoPoint, error) {
	switch p := v.(type) {
	case nil:
		return nil, nil
	case models.GeoPoint:
		return &p, nil
	case *models.GeoPoint:
		if p == nil {
			return nil, nil
		}
		c := *p
		return &c, nil
	case map[string]any:
		lat, err := cast.ToFloat64E(p["lat"])
		if err != nil {
			return nil, fmt.Errorf("lat: %w", err)
		}
		lng, err := cast.ToFloat64E(p["lng"])
		if err != nil {
			return nil, fmt.Errorf("lng: %w", err)
		}
		if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
			return nil, fmt.Errorf("coordinates out of range: %v,%v", lat, lng)
		}
		return &models.GeoPoint{Lat: lat, Lng: lng}, nil
	}
	return nil, fmt.Errorf("unexpected %T", v)
}

func dedupe(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
