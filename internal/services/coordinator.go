package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uniexp/uniexp-admin-backend/internal/draft"
	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// Store groups the repositories an event and its dependents live in
type Store struct {
	Events repositories.EventRepository
	Images repositories.EventImagesRepository
	Quests repositories.QuestRepository
}

// Coordinator turns validated drafts into writes against the Store. It never
// rolls back earlier writes when a later one fails.
type Coordinator struct {
	store Store
	sess  session.Session
}

// NewCoordinator binds a coordinator to the acting admin
func NewCoordinator(store Store, sess session.Session) (*Coordinator, error) {
	if !sess.Valid() {
		return nil, session.ErrNoSession
	}
	return &Coordinator{store: store, sess: sess}, nil
}

// Create persists a new event: record, read-back check, images, quest list.
// The draft's original is rolled forward only when every write succeeds.
func (c *Coordinator) Create(ctx context.Context, d *draft.Draft) (primitive.ObjectID, error) {
	if errs := d.ValidateAll(); !errs.Empty() {
		return primitive.NilObjectID, errs
	}
	current := d.Current()

	record, err := c.toRecord(current)
	if err != nil {
		return primitive.NilObjectID, err
	}
	id, err := c.store.Events.Create(ctx, record)
	if err != nil {
		slog.Error("Failed to create event", "organiserID", c.sess.FacultyID, "error", err)
		return primitive.NilObjectID, storeErr("create event", err)
	}
	return id, c.completeCreate(ctx, id, d, current)
}

// ResumeCreate finishes a Create that failed after the event record was
// written. The record is brought up to date with the draft before the read
// back check and the dependent writes run again; no second event is created.
func (c *Coordinator) ResumeCreate(ctx context.Context, id primitive.ObjectID, d *draft.Draft) error {
	if errs := d.ValidateAll(); !errs.Empty() {
		return errs
	}
	current := d.Current()

	// every detail field, measured against an empty draft so no status is derived
	payload, err := UpdatePayload(draft.EventDraft{}, current, draft.FieldSet(draft.Fields))
	if err != nil {
		return err
	}
	if err := c.store.Events.UpdateFields(ctx, id, payload); err != nil {
		slog.Error("Failed to rewrite event on resumed create", "eventID", id.Hex(), "error", err)
		return storeErr("update event", err)
	}
	return c.completeCreate(ctx, id, d, current)
}

// completeCreate reads the record back, then writes images and the quest list
func (c *Coordinator) completeCreate(ctx context.Context, id primitive.ObjectID, d *draft.Draft, current draft.EventDraft) error {
	saved, err := c.store.Events.FindByID(ctx, id)
	if err != nil {
		slog.Error("Failed to read back event", "eventID", id.Hex(), "error", err)
		return storeErr("read back event", err)
	}
	if missing := missingFields(saved); len(missing) > 0 {
		slog.Warn("Event failed integrity check", "eventID", id.Hex(), "missing", missing)
		return fmt.Errorf("%w: missing %s", ErrIntegrityCheckFailed, strings.Join(missing, ", "))
	}

	images := &models.EventImages{EventID: id, Images: current.Images}
	if err := c.store.Images.Put(ctx, images); err != nil {
		slog.Error("Failed to write event images", "eventID", id.Hex(), "error", err)
		return storeErr("write event images", err)
	}

	list := &models.QuestList{ID: id, OrganiserID: c.sess.FacultyID}
	if err := c.store.Quests.CreateList(ctx, list, questRecords(current.Quests)); err != nil {
		slog.Error("Failed to write quest list", "eventID", id.Hex(), "error", err)
		return storeErr("write quest list", err)
	}

	d.Commit()
	slog.Info("Event created", "eventID", id.Hex(), "organiserID", c.sess.FacultyID, "quests", list.QuestCount)
	return nil
}

// Update writes only the fields that changed since the draft's original.
// Images and quests go to their own records. Moving the start later marks
// the event Postponed.
func (c *Coordinator) Update(ctx context.Context, id primitive.ObjectID, d *draft.Draft) (draft.FieldSet, error) {
	if errs := d.ValidateAll(); !errs.Empty() {
		return nil, errs
	}
	original := d.Original()
	current := d.Current()
	changed := draft.Diff(original, current)
	if changed.Empty() {
		return changed, nil
	}

	payload, err := UpdatePayload(original, current, changed)
	if err != nil {
		return nil, err
	}
	if len(payload) > 0 {
		if err := c.store.Events.UpdateFields(ctx, id, payload); err != nil {
			slog.Error("Failed to update event", "eventID", id.Hex(), "error", err)
			return nil, storeErr("update event", err)
		}
	}

	if changed.Has(draft.FieldImages) {
		images := &models.EventImages{EventID: id, Images: current.Images}
		if err := c.store.Images.Put(ctx, images); err != nil {
			slog.Error("Failed to update event images", "eventID", id.Hex(), "error", err)
			return nil, storeErr("update event images", err)
		}
	}

	if changed.Has(draft.FieldQuests) {
		if err := c.store.Quests.ReplaceQuests(ctx, id, questRecords(current.Quests)); err != nil {
			slog.Error("Failed to replace quests", "eventID", id.Hex(), "error", err)
			return nil, storeErr("replace quests", err)
		}
	}

	// the derived status lands only once the record carries it
	if status, ok := payload[draft.FieldStatus].(models.EventStatus); ok {
		d.ApplyStatus(status)
	}
	d.Commit()
	slog.Info("Event updated", "eventID", id.Hex(), "fields", []string(changed))
	return changed, nil
}

// Load hydrates an edit draft from the event record, its images and its quests
func (c *Coordinator) Load(ctx context.Context, id primitive.ObjectID) (draft.EventDraft, error) {
	record, err := c.store.Events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return draft.EventDraft{}, err
		}
		return draft.EventDraft{}, storeErr("load event", err)
	}
	if record.OrganiserID != c.sess.FacultyID {
		return draft.EventDraft{}, ErrForbidden
	}

	var images []string
	imgs, err := c.store.Images.FindByEventID(ctx, id)
	switch {
	case err == nil:
		images = imgs.Images
	case !errors.Is(err, repositories.ErrNotFound):
		return draft.EventDraft{}, storeErr("load event images", err)
	}

	quests, err := c.store.Quests.FindByListID(ctx, id)
	if err != nil {
		return draft.EventDraft{}, storeErr("load quests", err)
	}

	return Hydrate(record, images, quests)
}

// Hydrate builds the draft view of persisted records
func Hydrate(record *models.Event, images []string, quests []*models.Quest) (draft.EventDraft, error) {
	e := draft.NewEventDraft()
	applyRecord(&e, record)
	if images != nil {
		e.Images = append([]string{}, images...)
	}

	defs := make([]quest.Definition, 0, len(quests))
	for _, q := range quests {
		defs = append(defs, quest.Definition{
			Kind:            quest.Kind(q.Kind),
			QuestName:       q.QuestName,
			Description:     q.Description,
			DiamondsRewards: q.DiamondsRewards,
			PointsRewards:   q.PointsRewards,
			CompletionNum:   q.CompletionNum,
			MaxEarlyBird:    q.MaxEarlyBird,
			Question:        q.Question,
			CorrectAnswer:   q.CorrectAnswer,
		})
	}
	set, err := quest.FromOrdered(defs)
	if err != nil {
		return draft.EventDraft{}, err
	}
	e.Quests = set
	return e, nil
}

// applyRecord copies the event record's detail fields onto e. Images and
// quests live in their own records and are left alone.
func applyRecord(e *draft.EventDraft, record *models.Event) {
	e.EventName = record.EventName
	e.EventDescription = record.EventDescription
	if cat, err := models.CategoryFromCode(record.Category); err == nil {
		e.Category = cat
	} else {
		slog.Warn("Event has unknown category code", "eventID", record.ID.Hex(), "code", record.Category)
		e.Category = ""
	}
	e.EventStartDateTime = record.EventStartDateTime
	e.EventEndDateTime = record.EventEndDateTime
	e.RegistrationClosingDate = record.RegistrationClosingDate
	e.LocationName = record.LocationName
	e.Pinpoint = nil
	if record.Pinpoint != nil {
		p := *record.Pinpoint
		e.Pinpoint = &p
	}
	e.RequiresCapacity = record.RequiresCapacity
	e.Capacity = nil
	if record.Capacity != nil {
		e.Capacity = *record.Capacity
	}
	e.IsFacultyRestrict = record.IsFacultyRestrict
	e.IsYearRestrict = record.IsYearRestrict
	e.YearsRestricted = []int{}
	if record.YearsRestricted != nil {
		e.YearsRestricted = append(e.YearsRestricted, record.YearsRestricted...)
	}
	e.PaymentProofRequired = record.PaymentProofRequired
	if record.Status != "" {
		e.Status = record.Status
	}
}

// UpdatePayload builds the partial update for the changed fields. Images,
// quests and status are never copied from the draft; status is only derived.
func UpdatePayload(original, current draft.EventDraft, changed draft.FieldSet) (bson.M, error) {
	payload := bson.M{}
	for _, field := range changed {
		switch field {
		case draft.FieldEventName:
			payload[field] = current.EventName
		case draft.FieldEventDescription:
			payload[field] = current.EventDescription
		case draft.FieldCategory:
			code, err := current.Category.Code()
			if err != nil {
				return nil, validation.Errors{field: "Category is invalid"}
			}
			payload[field] = code
		case draft.FieldEventStartDateTime:
			payload[field] = current.EventStartDateTime
		case draft.FieldEventEndDateTime:
			payload[field] = current.EventEndDateTime
		case draft.FieldRegistrationClosingDate:
			payload[field] = current.RegistrationClosingDate
		case draft.FieldLocationName:
			payload[field] = current.LocationName
		case draft.FieldPinpoint:
			if current.Pinpoint == nil {
				payload[field] = nil
			} else {
				payload[field] = *current.Pinpoint
			}
		case draft.FieldRequiresCapacity:
			payload[field] = current.RequiresCapacity
			if !current.RequiresCapacity {
				payload[draft.FieldCapacity] = nil
			}
		case draft.FieldCapacity:
			if !current.RequiresCapacity {
				payload[field] = nil
				continue
			}
			n, err := validation.Int(current.Capacity)
			if err != nil {
				return nil, validation.Errors{field: "Capacity must be a number"}
			}
			payload[field] = n
		case draft.FieldIsFacultyRestrict:
			payload[field] = current.IsFacultyRestrict
		case draft.FieldIsYearRestrict:
			payload[field] = current.IsYearRestrict
		case draft.FieldYearsRestricted:
			payload[field] = append([]int{}, current.YearsRestricted...)
		case draft.FieldPaymentProofRequired:
			payload[field] = current.PaymentProofRequired
		}
	}
	// a dropped capacity requirement overrides any capacity value above
	if changed.Has(draft.FieldRequiresCapacity) && !current.RequiresCapacity {
		payload[draft.FieldCapacity] = nil
	}
	if changed.Has(draft.FieldEventStartDateTime) && !original.EventStartDateTime.IsZero() &&
		current.EventStartDateTime.After(original.EventStartDateTime) {
		payload[draft.FieldStatus] = models.EventStatusPostponed
	}
	return payload, nil
}

func (c *Coordinator) toRecord(e draft.EventDraft) (*models.Event, error) {
	code, err := e.Category.Code()
	if err != nil {
		return nil, validation.Errors{draft.FieldCategory: "Category is invalid"}
	}
	record := &models.Event{
		EventName:               strings.TrimSpace(e.EventName),
		EventDescription:        strings.TrimSpace(e.EventDescription),
		Category:                code,
		EventStartDateTime:      e.EventStartDateTime,
		EventEndDateTime:        e.EventEndDateTime,
		RegistrationClosingDate: e.RegistrationClosingDate,
		LocationName:            strings.TrimSpace(e.LocationName),
		RequiresCapacity:        e.RequiresCapacity,
		IsFacultyRestrict:       e.IsFacultyRestrict,
		IsYearRestrict:          e.IsYearRestrict,
		PaymentProofRequired:    e.PaymentProofRequired,
		Status:                  models.EventStatusScheduled,
		OrganiserID:             c.sess.FacultyID,
		AdminID:                 c.sess.AdminID,
	}
	if e.Pinpoint != nil {
		p := *e.Pinpoint
		record.Pinpoint = &p
	}
	if e.RequiresCapacity {
		n, err := validation.Int(e.Capacity)
		if err != nil {
			return nil, validation.Errors{draft.FieldCapacity: "Capacity must be a number"}
		}
		record.Capacity = &n
	}
	if e.IsYearRestrict {
		record.YearsRestricted = append([]int{}, e.YearsRestricted...)
	}
	return record, nil
}

// missingFields lists the required fields absent from a read-back record
func missingFields(e *models.Event) []string {
	var missing []string
	check := func(ok bool, field string) {
		if !ok {
			missing = append(missing, field)
		}
	}
	check(e.EventName != "", draft.FieldEventName)
	check(e.EventDescription != "", draft.FieldEventDescription)
	check(!e.EventStartDateTime.IsZero(), draft.FieldEventStartDateTime)
	check(!e.EventEndDateTime.IsZero(), draft.FieldEventEndDateTime)
	check(!e.RegistrationClosingDate.IsZero(), draft.FieldRegistrationClosingDate)
	check(e.LocationName != "", draft.FieldLocationName)
	check(e.Pinpoint != nil, draft.FieldPinpoint)
	check(e.Status != "", draft.FieldStatus)
	check(!e.RequiresCapacity || e.Capacity != nil, draft.FieldCapacity)
	check(e.OrganiserID != "", "organiserID")
	return missing
}

// questRecords flattens a set into store order with fixed completion counts applied
func questRecords(s quest.Set) []*models.Quest {
	ordered := s.Ordered()
	out := make([]*models.Quest, 0, len(ordered))
	for i, def := range ordered {
		out = append(out, &models.Quest{
			Order:           i,
			Kind:            string(def.Kind),
			QuestName:       def.QuestName,
			Description:     def.Description,
			DiamondsRewards: def.DiamondsRewards,
			PointsRewards:   def.PointsRewards,
			CompletionNum:   def.CompletionNum,
			MaxEarlyBird:    def.MaxEarlyBird,
			Question:        def.Question,
			CorrectAnswer:   def.CorrectAnswer,
		})
	}
	return out
}
