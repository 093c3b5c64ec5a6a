package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniexp/uniexp-admin-backend/internal/quest"
)

// QuestHandler serves the quest catalog
type QuestHandler struct{}

// NewQuestHandler creates a new QuestHandler
func NewQuestHandler() *QuestHandler { return &QuestHandler{} }

// ListKinds handles GET /quests/kinds
func (h *QuestHandler) ListKinds(c *gin.Context) {
	kinds := quest.Kinds()
	out := make([]quest.Descriptor, 0, len(kinds))
	for _, k := range kinds {
		d, err := quest.Describe(k)
		if err != nil {
			respondError(c, err)
			return
		}
		out = append(out, d)
	}
	c.JSON(http.StatusOK, gin.H{"kinds": out})
}

// Describe handles GET /quests/kinds/:kind
func (h *QuestHandler) Describe(c *gin.Context) {
	d, err := quest.Describe(quest.Kind(c.Param("kind")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}
