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

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Ensure EventRepository implements repositories.EventRepository
var _ repositories.EventRepository = (*EventRepository)(nil)

// EventRepository stores event records in the "events" collection
type EventRepository struct {
	collection *mongo.Collection
}

// NewEventRepository creates a new EventRepository
func NewEventRepository(db *mongo.Database) *EventRepository {
	return &EventRepository{
		collection: db.Collection("events"),
	}
}

// Create inserts the event and returns its new id
func (r *EventRepository) Create(ctx context.Context, event *models.Event) (primitive.ObjectID, error) {
	if event.ID.IsZero() {
		event.ID = primitive.NewObjectID()
	}
	event.CreatedAt = time.Now()
	event.UpdatedAt = event.CreatedAt
	if _, err := r.collection.InsertOne(ctx, event); err != nil {
		return primitive.NilObjectID, err
	}
	return event.ID, nil
}

// FindByID finds an event by id
func (r *EventRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Event, error) {
	var event models.Event
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&event)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// UpdateFields applies a partial update. Nil values unset their field.
func (r *EventRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	set := bson.M{"updatedAt": time.Now()}
	unset := bson.M{}
	for k, v := range fields {
		if v == nil {
			unset[k] = ""
			continue
		}
		set[k] = v
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// List returns a page of events, newest first. Paging is keyset-based on _id.
func (r *EventRepository) List(ctx context.Context, q repositories.EventQuery) ([]*models.Event, error) {
	filter := bson.M{}
	if q.OrganiserID != "" {
		filter["organiserID"] = q.OrganiserID
	}
	if q.Status != "" {
		filter["status"] = q.Status
	}
	if !q.Cursor.IsZero() {
		filter["_id"] = bson.M{"$lt": q.Cursor}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: -1}}).
		SetLimit(int64(clampLimit(q.Limit)))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var events []*models.Event
	if err := cursor.All(ctx, &events); err != nil {
		return nil, err
	}
	// Ensure an empty slice is returned instead of nil if no events found
	if events == nil {
		events = []*models.Event{}
	}
	return events, nil
}

// Watch pushes every change of the event document to onChange until the
// returned function is called
func (r *EventRepository) Watch(ctx context.Context, id primitive.ObjectID, onChange func(*models.Event)) (repositories.Unsubscribe, error) {
	return watchDocument(ctx, r.collection, id, onChange)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultPageLimit
	case limit > maxPageLimit:
		return maxPageLimit
	}
	return limit
}
