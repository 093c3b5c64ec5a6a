package repositories

import (
	"context"
	"errors"

	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrNotFound is returned when a looked-up document does not exist
var ErrNotFound = errors.New("document not found")

// Unsubscribe stops a live subscription. Calling it more than once is safe.
type Unsubscribe func()

// EventQuery selects a page of events
type EventQuery struct {
	OrganiserID string
	Status      models.EventStatus
	Limit       int
	// Cursor is the id of the last event of the previous page
	Cursor primitive.ObjectID
}

// EventRepository defines the interface for event record operations
type EventRepository interface {
	Create(ctx context.Context, event *models.Event) (primitive.ObjectID, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	List(ctx context.Context, q EventQuery) ([]*models.Event, error)
	Watch(ctx context.Context, id primitive.ObjectID, onChange func(*models.Event)) (Unsubscribe, error)
}

// EventImagesRepository defines the interface for the images sub-record
type EventImagesRepository interface {
	Put(ctx context.Context, images *models.EventImages) error
	FindByEventID(ctx context.Context, eventID primitive.ObjectID) (*models.EventImages, error)
	Watch(ctx context.Context, eventID primitive.ObjectID, onChange func(*models.EventImages)) (Unsubscribe, error)
}

// QuestRepository defines the interface for quest lists and their quests
type QuestRepository interface {
	CreateList(ctx context.Context, list *models.QuestList, quests []*models.Quest) error
	ReplaceQuests(ctx context.Context, listID primitive.ObjectID, quests []*models.Quest) error
	FindByListID(ctx context.Context, listID primitive.ObjectID) ([]*models.Quest, error)
}

// MerchandiseRepository defines the interface for merchandise operations
type MerchandiseRepository interface {
	Create(ctx context.Context, item *models.Merchandise) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Merchandise, error)
	FindByOrganiser(ctx context.Context, organiserID string, page, limit int) ([]*models.Merchandise, error)
	Update(ctx context.Context, item *models.Merchandise) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	CountByOrganiser(ctx context.Context, organiserID string) (int64, error)
}

// AdminUserRepository defines the interface for admin account operations
type AdminUserRepository interface {
	Create(ctx context.Context, adminUser *models.AdminUser) error
	FindByEmail(ctx context.Context, email string) (*models.AdminUser, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.AdminUser, error)
}
