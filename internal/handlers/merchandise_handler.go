package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
)

// MerchandiseHandler handles reward shop items
type MerchandiseHandler struct {
	merchandiseService services.MerchandiseService
}

// NewMerchandiseHandler creates a new MerchandiseHandler
func NewMerchandiseHandler(merchandiseService services.MerchandiseService) *MerchandiseHandler {
	return &MerchandiseHandler{merchandiseService: merchandiseService}
}

// bindInput reads the multipart form. Empty numeric fields stay nil so the
// validator reports them as missing.
func bindInput(c *gin.Context) (services.MerchandiseInput, bool) {
	in := services.MerchandiseInput{
		Name:        c.PostForm("name"),
		Description: c.PostForm("description"),
	}
	if v, ok := c.GetPostForm("priceDiamonds"); ok && v != "" {
		in.PriceDiamonds = v
	}
	if v, ok := c.GetPostForm("stock"); ok && v != "" {
		in.Stock = v
	}
	raw, err := readUpload(c, "image")
	if err != nil {
		badRequest(c, "Invalid image upload")
		return in, false
	}
	in.Image = raw
	return in, true
}

// Create handles POST /merchandise
func (h *MerchandiseHandler) Create(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}
	item, err := h.merchandiseService.Create(c.Request.Context(), sess, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Get handles GET /merchandise/:id
func (h *MerchandiseHandler) Get(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	item, err := h.merchandiseService.Get(c.Request.Context(), sess, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// List handles GET /merchandise?page=&limit=
func (h *MerchandiseHandler) List(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	page := cast.ToInt(c.DefaultQuery("page", "1"))
	limit := cast.ToInt(c.DefaultQuery("limit", "10"))

	result, err := h.merchandiseService.List(c.Request.Context(), sess, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Update handles PUT /merchandise/:id
func (h *MerchandiseHandler) Update(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	in, ok := bindInput(c)
	if !ok {
		return
	}
	item, err := h.merchandiseService.Update(c.Request.Context(), sess, id, in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Delete handles DELETE /merchandise/:id
func (h *MerchandiseHandler) Delete(c *gin.Context) {
	sess, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := objectIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.merchandiseService.Delete(c.Request.Context(), sess, id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Merchandise deleted successfully"})
}
