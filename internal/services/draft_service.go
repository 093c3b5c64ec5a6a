package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/uniexp/uniexp-admin-backend/internal/draft"
	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
	"github.com/uniexp/uniexp-admin-backend/pkg/imagecodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/exp/slog"
)

// DraftView is what callers see of a draft
type DraftView struct {
	ID            string           `json:"id"`
	Mode          draft.Mode       `json:"mode"`
	EventID       string           `json:"eventID,omitempty"`
	Draft         draft.EventDraft `json:"draft"`
	HasChanges    bool             `json:"hasChanges"`
	ChangedFields []string         `json:"changedFields"`
}

// SubmitResult reports a successful submit
type SubmitResult struct {
	EventID       string   `json:"eventID"`
	ChangedFields []string `json:"changedFields"`
	// Closed is true when the draft was discarded after submit
	Closed bool `json:"closed"`
}

// DraftService holds the drafts of every open authoring flow
type DraftService interface {
	OpenCreate(sess session.Session) (*DraftView, error)
	OpenEdit(ctx context.Context, sess session.Session, eventID primitive.ObjectID) (*DraftView, error)
	Get(sess session.Session, id string) (*DraftView, error)
	SetFields(sess session.Session, id string, fields map[string]any) (*DraftView, error)
	AddQuest(sess session.Session, id string, kind string, fields quest.Fields) (quest.Definition, error)
	UpdateQuest(sess session.Session, id string, kind string, index int, fields quest.Fields) (quest.Definition, error)
	RemoveQuest(sess session.Session, id string, kind string, index int) error
	AddImage(ctx context.Context, sess session.Session, id string, raw []byte) (*DraftView, error)
	RemoveImage(sess session.Session, id string, index int) (*DraftView, error)
	Validate(sess session.Session, id string) (validation.Errors, error)
	Changes(sess session.Session, id string) (draft.FieldSet, error)
	Submit(ctx context.Context, sess session.Session, id string) (*SubmitResult, error)
	Close(sess session.Session, id string) error
	CloseAll()
}

type draftEntry struct {
	owner session.Session
	d     *draft.Draft
	// serialises submits of one draft
	submitMu sync.Mutex

	mu sync.Mutex
	// eventID is the edited event, or in the creation flow the event whose
	// record was written by a submit that failed part way
	eventID primitive.ObjectID
}

func (e *draftEntry) event() primitive.ObjectID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.eventID
}

func (e *draftEntry) setEvent(id primitive.ObjectID) {
	e.mu.Lock()
	e.eventID = id
	e.mu.Unlock()
}

type draftService struct {
	mu             sync.Mutex
	drafts         map[string]*draftEntry
	store          Store
	codec          imagecodec.Codec
	posterMaxBytes int
	now            func() time.Time
}

// NewDraftService creates the draft registry. posterMaxBytes bounds each
// encoded event image.
func NewDraftService(store Store, codec imagecodec.Codec, posterMaxBytes int) DraftService {
	return &draftService{
		drafts:         make(map[string]*draftEntry),
		store:          store,
		codec:          codec,
		posterMaxBytes: posterMaxBytes,
		now:            time.Now,
	}
}

func (s *draftService) OpenCreate(sess session.Session) (*DraftView, error) {
	if !sess.Valid() {
		return nil, session.ErrNoSession
	}
	entry := &draftEntry{owner: sess, d: draft.NewCreate(s.now)}
	id := s.register(entry)
	slog.Info("Draft opened", "draftID", id, "mode", draft.ModeCreate, "adminID", sess.AdminID)
	return view(id, entry), nil
}

func (s *draftService) OpenEdit(ctx context.Context, sess session.Session, eventID primitive.ObjectID) (*DraftView, error) {
	coord, err := NewCoordinator(s.store, sess)
	if err != nil {
		return nil, err
	}
	original, err := coord.Load(ctx, eventID)
	if err != nil {
		return nil, err
	}

	d := draft.NewEdit(original, s.now)
	if err := s.subscribe(ctx, d, eventID); err != nil {
		d.Close()
		return nil, err
	}

	entry := &draftEntry{owner: sess, eventID: eventID, d: d}
	id := s.register(entry)
	slog.Info("Draft opened", "draftID", id, "mode", draft.ModeEdit, "eventID", eventID.Hex(), "adminID", sess.AdminID)
	return view(id, entry), nil
}

// subscribe keeps d's original in step with the stored event and images
func (s *draftService) subscribe(ctx context.Context, d *draft.Draft, eventID primitive.ObjectID) error {
	unsubEvent, err := s.store.Events.Watch(ctx, eventID, func(record *models.Event) {
		if !d.UpdateOriginal(func(o *draft.EventDraft) { applyRecord(o, record) }) {
			return
		}
		// status is store-owned, so the working copy follows it too
		if record.Status != "" {
			d.ApplyStatus(record.Status)
		}
		slog.Debug("Draft original refreshed from event", "eventID", eventID.Hex())
	})
	if err != nil {
		return storeErr("watch event", err)
	}
	d.Subscriptions().Add(unsubEvent)

	unsubImages, err := s.store.Images.Watch(ctx, eventID, func(images *models.EventImages) {
		d.UpdateOriginal(func(o *draft.EventDraft) {
			o.Images = append([]string{}, images.Images...)
		})
	})
	if err != nil {
		return storeErr("watch event images", err)
	}
	d.Subscriptions().Add(unsubImages)
	return nil
}

func (s *draftService) Get(sess session.Session, id string) (*DraftView, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return nil, err
	}
	return view(id, entry), nil
}

// SetFields applies every key of fields in canonical field order, so a start
// date cascade never overwrites an end date set in the same call. A bad value
// leaves the draft as it was.
func (s *draftService) SetFields(sess session.Session, id string, fields map[string]any) (*DraftView, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return nil, err
	}
	if err := entry.d.SetFields(orderedKeys(fields), fields); err != nil {
		return nil, err
	}
	return view(id, entry), nil
}

func (s *draftService) AddQuest(sess session.Session, id string, kind string, fields quest.Fields) (quest.Definition, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return quest.Definition{}, err
	}
	k, err := quest.ParseKind(kind)
	if err != nil {
		return quest.Definition{}, err
	}
	return entry.d.AddQuest(k, fields)
}

func (s *draftService) UpdateQuest(sess session.Session, id string, kind string, index int, fields quest.Fields) (quest.Definition, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return quest.Definition{}, err
	}
	k, err := quest.ParseKind(kind)
	if err != nil {
		return quest.Definition{}, err
	}
	return entry.d.UpdateQuest(k, index, fields)
}

func (s *draftService) RemoveQuest(sess session.Session, id string, kind string, index int) error {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return err
	}
	k, err := quest.ParseKind(kind)
	if err != nil {
		return err
	}
	return entry.d.RemoveQuest(k, index)
}

func (s *draftService) AddImage(ctx context.Context, sess session.Session, id string, raw []byte) (*DraftView, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return nil, err
	}
	if len(entry.d.Current().Images) >= draft.MaxImages {
		return nil, draft.ErrTooManyImages
	}
	payload, err := s.codec.Encode(ctx, raw, imagecodec.Options{Folder: "events", MaxBytes: s.posterMaxBytes})
	if err != nil {
		return nil, err
	}
	if err := entry.d.AddImage(payload, s.posterMaxBytes); err != nil {
		return nil, err
	}
	return view(id, entry), nil
}

func (s *draftService) RemoveImage(sess session.Session, id string, index int) (*DraftView, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return nil, err
	}
	if err := entry.d.RemoveImage(index); err != nil {
		return nil, err
	}
	return view(id, entry), nil
}

func (s *draftService) Validate(sess session.Session, id string) (validation.Errors, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return nil, err
	}
	return entry.d.ValidateAll(), nil
}

func (s *draftService) Changes(sess session.Session, id string) (draft.FieldSet, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return nil, err
	}
	return entry.d.ChangedFields(), nil
}

// Submit persists the draft. A created event's draft is closed afterwards,
// since resubmitting it would create a second event; edit drafts stay open.
func (s *draftService) Submit(ctx context.Context, sess session.Session, id string) (*SubmitResult, error) {
	entry, err := s.lookup(sess, id)
	if err != nil {
		return nil, err
	}
	entry.submitMu.Lock()
	defer entry.submitMu.Unlock()

	coord, err := NewCoordinator(s.store, entry.owner)
	if err != nil {
		return nil, err
	}

	if entry.d.Mode() == draft.ModeCreate {
		return s.submitCreate(ctx, coord, id, entry)
	}

	eventID := entry.event()
	changed, err := coord.Update(ctx, eventID, entry.d)
	if err != nil {
		return nil, err
	}
	if changed == nil {
		changed = draft.FieldSet{}
	}
	return &SubmitResult{EventID: eventID.Hex(), ChangedFields: changed}, nil
}

// submitCreate writes a new event. When a store write fails after the event
// record exists, the draft stays open and the next submit resumes on that
// record instead of creating another.
func (s *draftService) submitCreate(ctx context.Context, coord *Coordinator, id string, entry *draftEntry) (*SubmitResult, error) {
	eventID := entry.event()
	var err error
	if eventID.IsZero() {
		eventID, err = coord.Create(ctx, entry.d)
	} else {
		err = coord.ResumeCreate(ctx, eventID, entry.d)
	}
	if eventID.IsZero() {
		return nil, err
	}
	if err != nil && !errors.Is(err, ErrIntegrityCheckFailed) {
		entry.setEvent(eventID)
		slog.Warn("Event create incomplete, draft kept for resubmit", "draftID", id, "eventID", eventID.Hex(), "error", err)
		return nil, err
	}

	s.remove(id)
	// an integrity failure still returns the new id alongside the error
	return &SubmitResult{EventID: eventID.Hex(), ChangedFields: []string{}, Closed: true}, err
}

func (s *draftService) Close(sess session.Session, id string) error {
	if _, err := s.lookup(sess, id); err != nil {
		return err
	}
	s.remove(id)
	slog.Info("Draft closed", "draftID", id)
	return nil
}

// CloseAll disposes every open draft; called on shutdown
func (s *draftService) CloseAll() {
	s.mu.Lock()
	entries := s.drafts
	s.drafts = make(map[string]*draftEntry)
	s.mu.Unlock()

	for _, entry := range entries {
		entry.d.Close()
	}
	slog.Info("Closed open drafts", "count", len(entries))
}

func (s *draftService) register(entry *draftEntry) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.drafts[id] = entry
	s.mu.Unlock()
	return id
}

// lookup returns the draft only to the admin who opened it
func (s *draftService) lookup(sess session.Session, id string) (*draftEntry, error) {
	if !sess.Valid() {
		return nil, session.ErrNoSession
	}
	s.mu.Lock()
	entry, ok := s.drafts[id]
	s.mu.Unlock()
	if !ok || entry.owner.AdminID != sess.AdminID {
		return nil, ErrDraftNotFound
	}
	return entry, nil
}

func (s *draftService) remove(id string) {
	s.mu.Lock()
	entry, ok := s.drafts[id]
	delete(s.drafts, id)
	s.mu.Unlock()
	if ok {
		entry.d.Close()
	}
}

func view(id string, entry *draftEntry) *DraftView {
	v := &DraftView{
		ID:            id,
		Mode:          entry.d.Mode(),
		Draft:         entry.d.Current(),
		ChangedFields: entry.d.ChangedFields(),
	}
	if v.ChangedFields == nil {
		v.ChangedFields = []string{}
	}
	v.HasChanges = len(v.ChangedFields) > 0
	if eventID := entry.event(); !eventID.IsZero() {
		v.EventID = eventID.Hex()
	}
	return v
}

func orderedKeys(fields map[string]any) []string {
	rank := make(map[string]int, len(draft.Fields))
	for i, f := range draft.Fields {
		rank[f] = i
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}
