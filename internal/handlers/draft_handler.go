package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
	"github.com/uniexp/uniexp-admin-backend/internal/validation"
)

// DraftHandler handles the event authoring flow
type DraftHandler struct {
	drafts services.DraftService
}

// NewDraftHandler creates a new DraftHandler
func NewDraftHandler(drafts services.DraftService) *DraftHandler {
	return &DraftHandler{drafts: drafts}
}

// QuestRequest is the body of quest add and update calls
type QuestRequest struct {
	Kind   string       `json:"kind"`
	Fields quest.Fields `json:"fields"`
}

// Open handles POST /drafts
func (h *DraftHandler) Open(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	v, err := h.drafts.OpenCreate(sess)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// OpenEdit handles POST /events/:id/drafts
func (h *DraftHandler) OpenEdit(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	eventID, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	v, err := h.drafts.OpenEdit(c.Request.Context(), sess, eventID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, v)
}

// Get handles GET /drafts/:draftID
func (h *DraftHandler) Get(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	v, err := h.drafts.Get(sess, c.Param("draftID"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Patch handles PATCH /drafts/:draftID with a field name to value object
func (h *DraftHandler) Patch(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var fields map[string]any
	if err := c.ShouldBindJSON(&fields); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	v, err := h.drafts.SetFields(sess, c.Param("draftID"), fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// AddQuest handles POST /drafts/:draftID/quests
func (h *DraftHandler) AddQuest(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	var req QuestRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Kind == "" {
		badRequest(c, "Quest kind is required")
		return
	}
	def, err := h.drafts.AddQuest(sess, c.Param("draftID"), req.Kind, req.Fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, def)
}

// UpdateQuest handles PUT /drafts/:draftID/quests/:kind/:index
func (h *DraftHandler) UpdateQuest(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	var req QuestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}
	def, err := h.drafts.UpdateQuest(sess, c.Param("draftID"), c.Param("kind"), index, req.Fields)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, def)
}

// RemoveQuest handles DELETE /drafts/:draftID/quests/:kind/:index
func (h *DraftHandler) RemoveQuest(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	if err := h.drafts.RemoveQuest(sess, c.Param("draftID"), c.Param("kind"), index); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddImage handles POST /drafts/:draftID/images with a multipart "image" file
func (h *DraftHandler) AddImage(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	raw, err := readUpload(c, "image")
	if err != nil {
		badRequest(c, "Invalid image upload")
		return
	}
	if raw == nil {
		badRequest(c, "Image file is required")
		return
	}
	v, err := h.drafts.AddImage(c.Request.Context(), sess, c.Param("draftID"), raw)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// RemoveImage handles DELETE /drafts/:draftID/images/:index
func (h *DraftHandler) RemoveImage(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	index, ok := indexParam(c)
	if !ok {
		return
	}
	v, err := h.drafts.RemoveImage(sess, c.Param("draftID"), index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// Validate handles POST /drafts/:draftID/validate
func (h *DraftHandler) Validate(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	errs, err := h.drafts.Validate(sess, c.Param("draftID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if errs == nil {
		errs = validation.Errors{}
	}
	c.JSON(http.StatusOK, gin.H{"valid": errs.Empty(), "errors": errs})
}

// Changes handles GET /drafts/:draftID/changes
func (h *DraftHandler) Changes(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	changed, err := h.drafts.Changes(sess, c.Param("draftID"))
	if err != nil {
		respondError(c, err)
		return
	}
	if changed == nil {
		changed = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"hasChanges": len(changed) > 0, "changedFields": changed})
}

// Submit handles POST /drafts/:draftID/submit. An event that saved but read
// back incomplete is still reported as created, with a warning.
func (h *DraftHandler) Submit(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	res, err := h.drafts.Submit(c.Request.Context(), sess, c.Param("draftID"))
	switch {
	case err != nil && res != nil && errors.Is(err, services.ErrIntegrityCheckFailed):
		c.JSON(http.StatusCreated, gin.H{"result": res, "notification": services.NotificationFor(err)})
		return
	case err != nil:
		respondError(c, err)
		return
	}

	status := http.StatusOK
	message := "Event updated successfully"
	if res.Closed {
		status = http.StatusCreated
		message = "Event created successfully"
	} else if len(res.ChangedFields) == 0 {
		message = "No changes to save"
	}
	c.JSON(status, gin.H{
		"result":       res,
		"notification": services.Notification{Message: message, Severity: services.SeveritySuccess},
	})
}

// Close handles DELETE /drafts/:draftID
func (h *DraftHandler) Close(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	if err := h.drafts.Close(sess, c.Param("draftID")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// indexParam reads the optional :index path parameter; absent means 0
func indexParam(c *gin.Context) (int, bool) {
	raw := c.Param("index")
	if raw == "" {
		return 0, true
	}
	index, err := cast.ToIntE(raw)
	if err != nil || index < 0 {
		badRequest(c, "Invalid index")
		return 0, false
	}
	return index, true
}
