package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/uniexp/uniexp-admin-backend/internal/config"
	"github.com/uniexp/uniexp-admin-backend/internal/handlers"
	"github.com/uniexp/uniexp-admin-backend/internal/middleware"
	"github.com/uniexp/uniexp-admin-backend/internal/services"
)

// HandlerDependencies holds all handler instances needed for routing
type HandlerDependencies struct {
	AuthHandler        *handlers.AuthHandler
	QuestHandler       *handlers.QuestHandler
	DraftHandler       *handlers.DraftHandler
	EventHandler       *handlers.EventHandler
	MerchandiseHandler *handlers.MerchandiseHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies, authService services.AuthService) *gin.Engine {
	router := gin.New()

	router.Use(middleware.CORSMiddleware(cfg))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(gin.Recovery())

	// Public routes
	public := router.Group("/api/v1")
	{
		public.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"status": "ok",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
		}
	}

	// Protected routes
	protected := router.Group("/api/v1")
	protected.Use(middleware.JWTAuthMiddleware(authService))
	{
		quests := protected.Group("/quests")
		{
			quests.GET("/kinds", deps.QuestHandler.ListKinds)
			quests.GET("/kinds/:kind", deps.QuestHandler.Describe)
		}

		drafts := protected.Group("/drafts")
		{
			drafts.POST("", deps.DraftHandler.Open)
			drafts.GET("/:draftID", deps.DraftHandler.Get)
			drafts.PATCH("/:draftID", deps.DraftHandler.Patch)
			drafts.DELETE("/:draftID", deps.DraftHandler.Close)
			drafts.GET("/:draftID/changes", deps.DraftHandler.Changes)
			drafts.POST("/:draftID/validate", deps.DraftHandler.Validate)
			drafts.POST("/:draftID/submit", deps.DraftHandler.Submit)

			drafts.POST("/:draftID/quests", deps.DraftHandler.AddQuest)
			drafts.PUT("/:draftID/quests/:kind", deps.DraftHandler.UpdateQuest)
			drafts.PUT("/:draftID/quests/:kind/:index", deps.DraftHandler.UpdateQuest)
			drafts.DELETE("/:draftID/quests/:kind", deps.DraftHandler.RemoveQuest)
			drafts.DELETE("/:draftID/quests/:kind/:index", deps.DraftHandler.RemoveQuest)

			drafts.POST("/:draftID/images", deps.DraftHandler.AddImage)
			drafts.DELETE("/:draftID/images/:index", deps.DraftHandler.RemoveImage)
		}

		events := protected.Group("/events")
		{
			events.GET("", deps.EventHandler.List)
			events.GET("/categories", deps.EventHandler.Categories)
			events.GET("/:id", deps.EventHandler.Get)
			events.POST("/:id/drafts", deps.DraftHandler.OpenEdit)
		}

		merchandise := protected.Group("/merchandise")
		{
			merchandise.GET("", deps.MerchandiseHandler.List)
			merchandise.GET("/:id", deps.MerchandiseHandler.Get)
			merchandise.POST("", deps.MerchandiseHandler.Create)
			merchandise.PUT("/:id", deps.MerchandiseHandler.Update)
			merchandise.DELETE("/:id", deps.MerchandiseHandler.Delete)
		}
	}

	return router
}
