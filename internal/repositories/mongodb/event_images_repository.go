package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.EventImagesRepository = (*EventImagesRepository)(nil)

// EventImagesRepository stores one images record per event in "eventImages"
type EventImagesRepository struct {
	collection *mongo.Collection
}

// NewEventImagesRepository creates a new EventImagesRepository
func NewEventImagesRepository(db *mongo.Database) *EventImagesRepository {
	return &EventImagesRepository{
		collection: db.Collection("eventImages"),
	}
}

// Put creates or replaces the images record of images.EventID
func (r *EventImagesRepository) Put(ctx context.Context, images *models.EventImages) error {
	images.UpdatedAt = time.Now()
	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": images.EventID},
		images,
		options.Replace().SetUpsert(true),
	)
	return err
}

// FindByEventID returns the images record of an event
func (r *EventImagesRepository) FindByEventID(ctx context.Context, eventID primitive.ObjectID) (*models.EventImages, error) {
	var images models.EventImages
	err := r.collection.FindOne(ctx, bson.M{"_id": eventID}).Decode(&images)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &images, nil
}

// Watch pushes every change of the images record to onChange
func (r *EventImagesRepository) Watch(ctx context.Context, eventID primitive.ObjectID, onChange func(*models.EventImages)) (repositories.Unsubscribe, error) {
	return watchDocument(ctx, r.collection, eventID, onChange)
}
