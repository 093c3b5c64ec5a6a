package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uniexp/uniexp-admin-backend/internal/draft"
	"github.com/uniexp/uniexp-admin-backend/internal/middleware"
	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
	"github.com/uniexp/uniexp-admin-backend/internal/session"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
	"github.com/uniexp/uniexp-admin-backend/pkg/imagecodec"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var testSess = session.Session{AdminID: "admin-1", FacultyID: "fac-1"}

type mockDraftService struct {
	mock.Mock
}

func (m *mockDraftService) view(args mock.Arguments) (*services.DraftView, error) {
	v, _ := args.Get(0).(*services.DraftView)
	return v, args.Error(1)
}

func (m *mockDraftService) OpenCreate(sess session.Session) (*services.DraftView, error) {
	return m.view(m.Called(sess))
}

func (m *mockDraftService) OpenEdit(ctx context.Context, sess session.Session, eventID primitive.ObjectID) (*services.DraftView, error) {
	return m.view(m.Called(ctx, sess, eventID))
}

func (m *mockDraftService) Get(sess session.Session, id string) (*services.DraftView, error) {
	return m.view(m.Called(sess, id))
}

func (m *mockDraftService) SetFields(sess session.Session, id string, fields map[string]any) (*services.DraftView, error) {
	return m.view(m.Called(sess, id, fields))
}

func (m *mockDraftService) AddQuest(sess session.Session, id string, kind string, fields quest.Fields) (quest.Definition, error) {
	args := m.Called(sess, id, kind, fields)
	return args.Get(0).(quest.Definition), args.Error(1)
}

func (m *mockDraftService) UpdateQuest(sess session.Session, id string, kind string, index int, fields quest.Fields) (quest.Definition, error) {
	args := m.Called(sess, id, kind, index, fields)
	return args.Get(0).(quest.Definition), args.Error(1)
}

func (m *mockDraftService) RemoveQuest(sess session.Session, id string, kind string, index int) error {
	return m.Called(sess, id, kind, index).Error(0)
}

func (m *mockDraftService) AddImage(ctx context.Context, sess session.Session, id string, raw []byte) (*services.DraftView, error) {
	return m.view(m.Called(ctx, sess, id, raw))
}

func (m *mockDraftService) RemoveImage(sess session.Session, id string, index int) (*services.DraftView, error) {
	return m.view(m.Called(sess, id, index))
}

func (m *mockDraftService) Validate(sess session.Session, id string) (validation.Errors, error) {
	args := m.Called(sess, id)
	errs, _ := args.Get(0).(validation.Errors)
	return errs, args.Error(1)
}

func (m *mockDraftService) Changes(sess session.Session, id string) (draft.FieldSet, error) {
	args := m.Called(sess, id)
	set, _ := args.Get(0).(draft.FieldSet)
	return set, args.Error(1)
}

func (m *mockDraftService) Submit(ctx context.Context, sess session.Session, id string) (*services.SubmitResult, error) {
	args := m.Called(ctx, sess, id)
	res, _ := args.Get(0).(*services.SubmitResult)
	return res, args.Error(1)
}

func (m *mockDraftService) Close(sess session.Session, id string) error {
	return m.Called(sess, id).Error(0)
}

func (m *mockDraftService) CloseAll() { m.Called() }

type mockMerchandiseService struct {
	mock.Mock
}

func (m *mockMerchandiseService) Create(ctx context.Context, sess session.Session, in services.MerchandiseInput) (*models.Merchandise, error) {
	args := m.Called(ctx, sess, in)
	item, _ := args.Get(0).(*models.Merchandise)
	return item, args.Error(1)
}

func (m *mockMerchandiseService) Get(ctx context.Context, sess session.Session, id primitive.ObjectID) (*models.Merchandise, error) {
	args := m.Called(ctx, sess, id)
	item, _ := args.Get(0).(*models.Merchandise)
	return item, args.Error(1)
}

func (m *mockMerchandiseService) List(ctx context.Context, sess session.Session, page, limit int) (*services.MerchandisePage, error) {
	args := m.Called(ctx, sess, page, limit)
	p, _ := args.Get(0).(*services.MerchandisePage)
	return p, args.Error(1)
}

func (m *mockMerchandiseService) Update(ctx context.Context, sess session.Session, id primitive.ObjectID, in services.MerchandiseInput) (*models.Merchandise, error) {
	args := m.Called(ctx, sess, id, in)
	item, _ := args.Get(0).(*models.Merchandise)
	return item, args.Error(1)
}

func (m *mockMerchandiseService) Delete(ctx context.Context, sess session.Session, id primitive.ObjectID) error {
	return m.Called(ctx, sess, id).Error(0)
}

type mockEventService struct {
	mock.Mock
}

func (m *mockEventService) ListEvents(ctx context.Context, sess session.Session, status models.EventStatus, limit int, cursor string) (*services.EventPage, error) {
	args := m.Called(ctx, sess, status, limit, cursor)
	p, _ := args.Get(0).(*services.EventPage)
	return p, args.Error(1)
}

func (m *mockEventService) GetEvent(ctx context.Context, sess session.Session, id primitive.ObjectID) (*services.EventDetail, error) {
	args := m.Called(ctx, sess, id)
	d, _ := args.Get(0).(*services.EventDetail)
	return d, args.Error(1)
}

// newTestRouter mounts routes behind a middleware that signs in testSess
func newTestRouter(mount func(r gin.IRoutes)) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	g := r.Group("/", func(c *gin.Context) { middleware.SetSession(c, testSess) })
	mount(g)
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{validation.Errors{"eventName": "Event name is required"}, http.StatusUnprocessableEntity},
		{services.ErrDraftNotFound, http.StatusNotFound},
		{repositories.ErrNotFound, http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{session.ErrNoSession, http.StatusUnauthorized},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{quest.ErrQuestExists, http.StatusConflict},
		{quest.ErrNotRemovable, http.StatusConflict},
		{fmt.Errorf("wrap: %w", quest.ErrUnknownQuestKind), http.StatusBadRequest},
		{&draft.FieldValueError{Field: "capacity", Err: errors.New("bad")}, http.StatusBadRequest},
		{imagecodec.ErrImageTooLarge, http.StatusRequestEntityTooLarge},
		{imagecodec.ErrNotAnImage, http.StatusUnsupportedMediaType},
		{draft.ErrDraftClosed, http.StatusGone},
		{&services.StoreError{Op: "create event", Err: errors.New("timeout")}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusFor(tc.err), tc.err.Error())
	}
}

func TestDraftPatch(t *testing.T) {
	svc := new(mockDraftService)
	h := NewDraftHandler(svc)
	r := newTestRouter(func(g gin.IRoutes) { g.PATCH("/drafts/:draftID", h.Patch) })

	fields := map[string]any{"eventName": "Tech Talk"}
	svc.On("SetFields", testSess, "d-1", fields).Return(&services.DraftView{ID: "d-1", HasChanges: true, ChangedFields: []string{"eventName"}}, nil)
	svc.On("SetFields", testSess, "d-2", mock.Anything).Return(nil, services.ErrDraftNotFound)

	w := do(r, http.MethodPatch, "/drafts/d-1", fields)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["hasChanges"])

	w = do(r, http.MethodPatch, "/drafts/d-2", fields)
	assert.Equal(t, http.StatusNotFound, w.Code)
	notification := decode(t, w)["notification"].(map[string]any)
	assert.Equal(t, services.SeverityError, notification["severity"])
}

func TestDraftSubmit(t *testing.T) {
	svc := new(mockDraftService)
	h := NewDraftHandler(svc)
	r := newTestRouter(func(g gin.IRoutes) { g.POST("/drafts/:draftID/submit", h.Submit) })

	created := &services.SubmitResult{EventID: "e-1", ChangedFields: []string{}, Closed: true}
	svc.On("Submit", mock.Anything, testSess, "ok").Return(created, nil)
	svc.On("Submit", mock.Anything, testSess, "incomplete").
		Return(created, fmt.Errorf("%w: missing category", services.ErrIntegrityCheckFailed))
	svc.On("Submit", mock.Anything, testSess, "invalid").
		Return(nil, validation.Errors{"eventName": "Event name is required"})
	svc.On("Submit", mock.Anything, testSess, "same").
		Return(&services.SubmitResult{EventID: "e-2", ChangedFields: []string{}}, nil)

	t.Run("created", func(t *testing.T) {
		w := do(r, http.MethodPost, "/drafts/ok/submit", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		n := decode(t, w)["notification"].(map[string]any)
		assert.Equal(t, services.SeveritySuccess, n["severity"])
	})

	t.Run("integrity failure is a warning", func(t *testing.T) {
		w := do(r, http.MethodPost, "/drafts/incomplete/submit", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		body := decode(t, w)
		assert.Equal(t, services.SeverityWarning, body["notification"].(map[string]any)["severity"])
		assert.Equal(t, "e-1", body["result"].(map[string]any)["eventID"])
	})

	t.Run("validation errors", func(t *testing.T) {
		w := do(r, http.MethodPost, "/drafts/invalid/submit", nil)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		errs := decode(t, w)["errors"].(map[string]any)
		assert.Equal(t, "Event name is required", errs["eventName"])
	})

	t.Run("nothing changed", func(t *testing.T) {
		w := do(r, http.MethodPost, "/drafts/same/submit", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "No changes to save", decode(t, w)["notification"].(map[string]any)["message"])
	})
}

func TestDraftQuestRoutes(t *testing.T) {
	svc := new(mockDraftService)
	h := NewDraftHandler(svc)
	r := newTestRouter(func(g gin.IRoutes) {
		g.POST("/drafts/:draftID/quests", h.AddQuest)
		g.DELETE("/drafts/:draftID/quests/:kind", h.RemoveQuest)
		g.DELETE("/drafts/:draftID/quests/:kind/:index", h.RemoveQuest)
	})

	svc.On("AddQuest", testSess, "d-1", "q&a", quest.Fields{"question": "Why?"}).Return(quest.Definition{}, quest.ErrQuestExists)
	svc.On("RemoveQuest", testSess, "d-1", "attendance", 0).Return(quest.ErrNotRemovable)
	svc.On("RemoveQuest", testSess, "d-1", "networking", 1).Return(nil)

	w := do(r, http.MethodPost, "/drafts/d-1/quests", QuestRequest{Kind: "q&a", Fields: quest.Fields{"question": "Why?"}})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, services.SeverityWarning, decode(t, w)["notification"].(map[string]any)["severity"])

	w = do(r, http.MethodPost, "/drafts/d-1/quests", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodDelete, "/drafts/d-1/quests/attendance", nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(r, http.MethodDelete, "/drafts/d-1/quests/networking/1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = do(r, http.MethodDelete, "/drafts/d-1/quests/networking/-1", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertExpectations(t)
}

func TestDraftAddImageRequiresFile(t *testing.T) {
	svc := new(mockDraftService)
	h := NewDraftHandler(svc)
	r := newTestRouter(func(g gin.IRoutes) { g.POST("/drafts/:draftID/images", h.AddImage) })

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("note", "no file"))
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/drafts/d-1/images", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "AddImage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestQuestDescribe(t *testing.T) {
	h := NewQuestHandler()
	r := newTestRouter(func(g gin.IRoutes) { g.GET("/quests/kinds/:kind", h.Describe) })

	w := do(r, http.MethodGet, "/quests/kinds/attendance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, "attendance", body["kind"])
	assert.Equal(t, false, body["removable"])

	w = do(r, http.MethodGet, "/quests/kinds/Trivia", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestEventList(t *testing.T) {
	svc := new(mockEventService)
	h := NewEventHandler(svc)
	r := newTestRouter(func(g gin.IRoutes) { g.GET("/events", h.List) })

	svc.On("ListEvents", mock.Anything, testSess, models.EventStatusScheduled, 5, "abc").
		Return(nil, services.ErrInvalidCursor)
	svc.On("ListEvents", mock.Anything, testSess, models.EventStatus(""), 20, "").
		Return(&services.EventPage{Events: []*models.Event{}}, nil)

	w := do(r, http.MethodGet, "/events?status=Scheduled&limit=5&cursor=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/events", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(r, http.MethodGet, "/events?status=Archived", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestMerchandiseCreateMultipart(t *testing.T) {
	svc := new(mockMerchandiseService)
	h := NewMerchandiseHandler(svc)
	r := newTestRouter(func(g gin.IRoutes) { g.POST("/merchandise", h.Create) })

	image := []byte("\x89PNG\r\n\x1a\nfake")
	svc.On("Create", mock.Anything, testSess, services.MerchandiseInput{
		Name: "Hoodie", Description: "Warm", PriceDiamonds: "120", Image: image,
	}).Return(nil, validation.Errors{"stock": "Stock is required"})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Hoodie"))
	require.NoError(t, mw.WriteField("description", "Warm"))
	require.NoError(t, mw.WriteField("priceDiamonds", "120"))
	require.NoError(t, mw.WriteField("stock", ""))
	part, err := mw.CreateFormFile("image", "hoodie.png")
	require.NoError(t, err)
	_, err = part.Write(image)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/merchandise", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Stock is required", decode(t, w)["errors"].(map[string]any)["stock"])
	svc.AssertExpectations(t)
}

func TestMerchandiseGetInvalidID(t *testing.T) {
	svc := new(mockMerchandiseService)
	h := NewMerchandiseHandler(svc)
	r := newTestRouter(func(g gin.IRoutes) { g.GET("/merchandise/:id", h.Get) })

	w := do(r, http.MethodGet, "/merchandise/not-an-id", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything, mock.Anything)
}

func TestEventCategories(t *testing.T) {
	h := NewEventHandler(new(mockEventService))
	r := newTestRouter(func(g gin.IRoutes) { g.GET("/events/categories", h.Categories) })

	w := do(r, http.MethodGet, "/events/categories", nil)
	require.Equal(t, http.StatusOK, w.Code)
	categories := decode(t, w)["categories"].([]any)
	require.Len(t, categories, 7)
	assert.Equal(t, "Academic", categories[0])
	assert.Equal(t, "Others", categories[6])
}
