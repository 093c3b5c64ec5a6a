package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uniexp/uniexp-admin-backend/internal/draft"
	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories/mocks"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	testNow  = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	testSess = session.Session{AdminID: "admin-1", FacultyID: "fac-1", Email: "a@uni.edu", Role: "admin"}
	start    = time.Date(2025, 1, 10, 10, 0, 0, 0, time.UTC)
)

func testClock() time.Time { return testNow }

type testStore struct {
	events *mocks.EventRepository
	images *mocks.EventImagesRepository
	quests *mocks.QuestRepository
}

func newTestStore() (testStore, Store) {
	ts := testStore{
		events: new(mocks.EventRepository),
		images: new(mocks.EventImagesRepository),
		quests: new(mocks.QuestRepository),
	}
	return ts, Store{Events: ts.events, Images: ts.images, Quests: ts.quests}
}

func (ts testStore) assertExpectations(t *testing.T) {
	ts.events.AssertExpectations(t)
	ts.images.AssertExpectations(t)
	ts.quests.AssertExpectations(t)
}

// storedEvent is the persisted form of storedDraft
func storedEvent(id primitive.ObjectID) *models.Event {
	capacity := 5
	return &models.Event{
		ID:                      id,
		EventName:               "Tech Talk",
		EventDescription:        "An evening of lightning talks",
		Category:                0,
		EventStartDateTime:      start,
		EventEndDateTime:        start.Add(time.Hour),
		RegistrationClosingDate: start.Add(-time.Hour),
		LocationName:            "Main Hall",
		Pinpoint:                &models.GeoPoint{Lat: 3.12, Lng: 101.65},
		RequiresCapacity:        true,
		Capacity:                &capacity,
		IsYearRestrict:          true,
		YearsRestricted:         []int{1, 2},
		Status:                  models.EventStatusScheduled,
		OrganiserID:             testSess.FacultyID,
		AdminID:                 testSess.AdminID,
	}
}

func storedDraft(t *testing.T) draft.EventDraft {
	e, err := Hydrate(storedEvent(primitive.NewObjectID()), []string{"img-1"}, nil)
	require.NoError(t, err)
	return e
}

func filledCreateDraft(t *testing.T) *draft.Draft {
	d := draft.NewCreate(testClock)
	for _, kv := range []struct {
		k string
		v any
	}{
		{draft.FieldEventName, "Tech Talk"},
		{draft.FieldEventDescription, "An evening of lightning talks"},
		{draft.FieldCategory, "Sports"},
		{draft.FieldEventStartDateTime, start},
		{draft.FieldLocationName, "Main Hall"},
		{draft.FieldPinpoint, map[string]any{"lat": 3.12, "lng": 101.65}},
		{draft.FieldRequiresCapacity, true},
		{draft.FieldCapacity, "5"},
		{draft.FieldImages, []string{"img-1"}},
	} {
		require.NoError(t, d.SetField(kv.k, kv.v), kv.k)
	}
	_, err := d.AddQuest(quest.KindQnA, quest.Fields{
		"question": "What is Go?", "correctAnswer": "A language",
		"diamondsRewards": 3, "pointsRewards": 10,
	})
	require.NoError(t, err)
	return d
}

func TestNewCoordinatorRequiresSession(t *testing.T) {
	_, store := newTestStore()
	_, err := NewCoordinator(store, session.Session{})
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestCoordinatorCreate(t *testing.T) {
	ts, store := newTestStore()
	coord, err := NewCoordinator(store, testSess)
	require.NoError(t, err)
	d := filledCreateDraft(t)
	id := primitive.NewObjectID()

	var written *models.Event
	ts.events.On("Create", mock.Anything, mock.MatchedBy(func(e *models.Event) bool {
		return e.Category == 1 && e.Capacity != nil && *e.Capacity == 5 &&
			e.Status == models.EventStatusScheduled &&
			e.OrganiserID == "fac-1" && e.AdminID == "admin-1" &&
			e.EventEndDateTime.Equal(start.Add(time.Hour))
	})).Run(func(args mock.Arguments) {
		written = args.Get(1).(*models.Event)
	}).Return(id, nil)
	ts.events.On("FindByID", mock.Anything, id).Return(storedEvent(id), nil)
	ts.images.On("Put", mock.Anything, mock.MatchedBy(func(img *models.EventImages) bool {
		return img.EventID == id && len(img.Images) == 1 && img.Images[0] == "img-1"
	})).Return(nil)
	ts.quests.On("CreateList", mock.Anything,
		mock.MatchedBy(func(l *models.QuestList) bool { return l.ID == id && l.OrganiserID == "fac-1" }),
		mock.MatchedBy(func(qs []*models.Quest) bool {
			return len(qs) == 3 &&
				qs[0].Kind == string(quest.KindAttendance) && qs[0].CompletionNum == 1 &&
				qs[1].Kind == string(quest.KindQnA) && qs[1].CorrectAnswer == "A language" &&
				qs[2].Kind == string(quest.KindFeedback) && qs[2].CompletionNum == 1
		}),
	).Return(nil)

	got, err := coord.Create(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, id, got)
	require.NotNil(t, written)
	assert.Nil(t, written.YearsRestricted)
	assert.False(t, d.HasChanges(), "original rolls forward after a successful create")
	ts.assertExpectations(t)
}

func TestCoordinatorCreateIntegrityFailureStopsDependentWrites(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	d := filledCreateDraft(t)
	id := primitive.NewObjectID()

	incomplete := storedEvent(id)
	incomplete.LocationName = ""
	incomplete.Pinpoint = nil
	ts.events.On("Create", mock.Anything, mock.Anything).Return(id, nil)
	ts.events.On("FindByID", mock.Anything, id).Return(incomplete, nil)

	got, err := coord.Create(context.Background(), d)
	assert.ErrorIs(t, err, ErrIntegrityCheckFailed)
	assert.Contains(t, err.Error(), "locationName")
	assert.Contains(t, err.Error(), "pinpoint")
	assert.Equal(t, id, got)
	ts.images.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	ts.quests.AssertNotCalled(t, "CreateList", mock.Anything, mock.Anything, mock.Anything)
	assert.True(t, d.HasChanges())
	assert.Equal(t, SeverityWarning, NotificationFor(err).Severity)
}

func TestCoordinatorCreateStoreError(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	d := filledCreateDraft(t)

	ts.events.On("Create", mock.Anything, mock.Anything).Return(primitive.NilObjectID, errors.New("connection refused"))

	_, err := coord.Create(context.Background(), d)
	var storeError *StoreError
	require.ErrorAs(t, err, &storeError)
	assert.Equal(t, "create event", storeError.Op)
	assert.True(t, d.HasChanges(), "draft is kept for resubmission")
	ts.events.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
}

func TestCoordinatorCreateRejectsInvalidDraft(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	d := draft.NewCreate(testClock)
	require.NoError(t, d.SetField(draft.FieldRequiresCapacity, true))
	require.NoError(t, d.SetField(draft.FieldCapacity, ""))

	_, err := coord.Create(context.Background(), d)
	errs, ok := validation.AsErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Capacity is required", errs[draft.FieldCapacity])
	ts.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCoordinatorUpdateOnlyName(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	d := draft.NewEdit(storedDraft(t), testClock)
	id := primitive.NewObjectID()
	require.NoError(t, d.SetField(draft.FieldEventName, "Tech Talk 2024"))

	ts.events.On("UpdateFields", mock.Anything, id, bson.M{"eventName": "Tech Talk 2024"}).Return(nil)

	changed, err := coord.Update(context.Background(), id, d)
	require.NoError(t, err)
	assert.Equal(t, draft.FieldSet{draft.FieldEventName}, changed)
	assert.False(t, d.HasChanges())
	ts.assertExpectations(t)
	ts.images.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
}

func TestCoordinatorUpdatePostponesLaterStart(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	d := draft.NewEdit(storedDraft(t), testClock)
	id := primitive.NewObjectID()
	later := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	require.NoError(t, d.SetField(draft.FieldEventStartDateTime, later))
	require.NoError(t, d.SetField(draft.FieldEventEndDateTime, later.Add(2*time.Hour)))

	ts.events.On("UpdateFields", mock.Anything, id, mock.MatchedBy(func(m bson.M) bool {
		return m["status"] == models.EventStatusPostponed &&
			m["eventStartDateTime"] == later && len(m) == 3
	})).Return(nil)

	_, err := coord.Update(context.Background(), id, d)
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusPostponed, d.Current().Status)
	assert.Equal(t, models.EventStatusPostponed, d.Original().Status)
	ts.assertExpectations(t)
}

func TestCoordinatorUpdateEarlierStartKeepsStatus(t *testing.T) {
	original := storedDraft(t)
	earlier := start.Add(-24 * time.Hour)
	current := original.Clone()
	current.EventStartDateTime = earlier
	current.EventEndDateTime = earlier.Add(time.Hour)
	current.RegistrationClosingDate = earlier.Add(-time.Hour)

	payload, err := UpdatePayload(original, current, draft.Diff(original, current))
	require.NoError(t, err)
	assert.NotContains(t, payload, "status")
	assert.Len(t, payload, 3)
}

func TestCoordinatorUpdateImagesAndQuests(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	d := draft.NewEdit(storedDraft(t), testClock)
	id := primitive.NewObjectID()
	require.NoError(t, d.AddImage("img-2", 0))
	_, err := d.AddQuest(quest.KindEarlyBird, quest.Fields{"maxEarlyBird": 10, "diamondsRewards": 2, "pointsRewards": 4})
	require.NoError(t, err)

	ts.images.On("Put", mock.Anything, mock.MatchedBy(func(img *models.EventImages) bool {
		return len(img.Images) == 2 && img.Images[1] == "img-2"
	})).Return(nil)
	ts.quests.On("ReplaceQuests", mock.Anything, id, mock.MatchedBy(func(qs []*models.Quest) bool {
		return len(qs) == 3 && qs[1].Kind == string(quest.KindEarlyBird) && qs[1].MaxEarlyBird == 10
	})).Return(nil)

	changed, err := coord.Update(context.Background(), id, d)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{draft.FieldImages, draft.FieldQuests}, changed)
	ts.events.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
	ts.assertExpectations(t)
}

func TestCoordinatorUpdateWithoutChanges(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	d := draft.NewEdit(storedDraft(t), testClock)

	changed, err := coord.Update(context.Background(), primitive.NewObjectID(), d)
	require.NoError(t, err)
	assert.Empty(t, changed)
	ts.events.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}

func TestCoordinatorUpdateStoreErrorKeepsDraft(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	d := draft.NewEdit(storedDraft(t), testClock)
	id := primitive.NewObjectID()
	require.NoError(t, d.SetField(draft.FieldLocationName, "Hall B"))

	ts.events.On("UpdateFields", mock.Anything, id, mock.Anything).Return(errors.New("permission denied"))

	_, err := coord.Update(context.Background(), id, d)
	var storeError *StoreError
	assert.ErrorAs(t, err, &storeError)
	assert.Equal(t, draft.FieldSet{draft.FieldLocationName}, d.ChangedFields())

	// a failed postponement leaves status alone, so undoing the move undoes everything
	d = draft.NewEdit(storedDraft(t), testClock)
	later := start.Add(5 * 24 * time.Hour)
	require.NoError(t, d.SetField(draft.FieldEventStartDateTime, later))
	require.NoError(t, d.SetField(draft.FieldEventEndDateTime, later.Add(time.Hour)))

	_, err = coord.Update(context.Background(), id, d)
	assert.ErrorAs(t, err, &storeError)
	assert.Equal(t, models.EventStatusScheduled, d.Current().Status)

	require.NoError(t, d.SetField(draft.FieldEventStartDateTime, start))
	require.NoError(t, d.SetField(draft.FieldEventEndDateTime, start.Add(time.Hour)))
	assert.Empty(t, d.ChangedFields())
}

func TestUpdatePayloadCapacityDropped(t *testing.T) {
	original := storedDraft(t)
	current := original.Clone()
	current.RequiresCapacity = false
	current.Capacity = nil

	payload, err := UpdatePayload(original, current, draft.Diff(original, current))
	require.NoError(t, err)
	assert.Equal(t, bson.M{"requiresCapacity": false, "capacity": nil}, payload)
}

func TestUpdatePayloadCategoryCode(t *testing.T) {
	original := storedDraft(t)
	current := original.Clone()
	current.Category = models.CategoryWellness

	payload, err := UpdatePayload(original, current, draft.Diff(original, current))
	require.NoError(t, err)
	assert.Equal(t, bson.M{"category": 5}, payload)
}

func TestLoadHydratesDraft(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	id := primitive.NewObjectID()

	ts.events.On("FindByID", mock.Anything, id).Return(storedEvent(id), nil)
	ts.images.On("FindByEventID", mock.Anything, id).Return(&models.EventImages{EventID: id, Images: []string{"a", "b"}}, nil)
	ts.quests.On("FindByListID", mock.Anything, id).Return([]*models.Quest{
		{Kind: "attendance", QuestName: "Attend", DiamondsRewards: 10, PointsRewards: 50, CompletionNum: 1},
		{Kind: "networking", QuestName: "Network", DiamondsRewards: 1, PointsRewards: 2, CompletionNum: 3},
		{Kind: "feedback", QuestName: "Feedback", DiamondsRewards: 5, PointsRewards: 20, CompletionNum: 1},
	}, nil)

	e, err := coord.Load(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.CategoryAcademic, e.Category)
	assert.Equal(t, 5, e.Capacity)
	assert.Equal(t, []string{"a", "b"}, e.Images)
	require.NotNil(t, e.Quests.Networking)
	assert.Equal(t, 3, e.Quests.Networking.CompletionNum)
	assert.Equal(t, "Attend", e.Quests.Attendance.QuestName)
}

func TestLoadRejectsOtherFaculty(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	id := primitive.NewObjectID()
	other := storedEvent(id)
	other.OrganiserID = "fac-2"
	ts.events.On("FindByID", mock.Anything, id).Return(other, nil)

	_, err := coord.Load(context.Background(), id)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestLoadMissingEvent(t *testing.T) {
	ts, store := newTestStore()
	coord, _ := NewCoordinator(store, testSess)
	id := primitive.NewObjectID()
	ts.events.On("FindByID", mock.Anything, id).Return(nil, repositories.ErrNotFound)

	_, err := coord.Load(context.Background(), id)
	assert.ErrorIs(t, err, repositories.ErrNotFound)
}
