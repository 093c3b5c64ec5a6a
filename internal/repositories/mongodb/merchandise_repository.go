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

var _ repositories.MerchandiseRepository = (*MerchandiseRepository)(nil)

// MerchandiseRepository implements the repositories.MerchandiseRepository interface
type MerchandiseRepository struct {
	collection *mongo.Collection
}

// NewMerchandiseRepository creates a new MerchandiseRepository
func NewMerchandiseRepository(db *mongo.Database) *MerchandiseRepository {
	return &MerchandiseRepository{
		collection: db.Collection("merchandise"),
	}
}

// Create inserts a new item
func (r *MerchandiseRepository) Create(ctx context.Context, item *models.Merchandise) error {
	if item.ID.IsZero() {
		item.ID = primitive.NewObjectID()
	}
	item.CreatedAt = time.Now()
	item.UpdatedAt = item.CreatedAt
	_, err := r.collection.InsertOne(ctx, item)
	return err
}

// FindByID finds an item by id
func (r *MerchandiseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Merchandise, error) {
	var item models.Merchandise
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&item)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, repositories.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// FindByOrganiser finds a faculty's items with pagination
func (r *MerchandiseRepository) FindByOrganiser(ctx context.Context, organiserID string, page, limit int) ([]*models.Merchandise, error) {
	if page < 1 {
		page = 1
	}
	limit = clampLimit(limit)
	opts := options.Find().
		SetSkip(int64((page - 1) * limit)).
		SetLimit(int64(limit)).
		SetSort(bson.M{"createdAt": -1})

	cursor, err := r.collection.Find(ctx, bson.M{"organiserID": organiserID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var items []*models.Merchandise
	if err := cursor.All(ctx, &items); err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Merchandise{}
	}
	return items, nil
}

// Update replaces an item
func (r *MerchandiseRepository) Update(ctx context.Context, item *models.Merchandise) error {
	item.UpdatedAt = time.Now()
	res, err := r.collection.ReplaceOne(ctx, bson.M{"_id": item.ID}, item)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// Delete deletes an item
func (r *MerchandiseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

// CountByOrganiser counts a faculty's items
func (r *MerchandiseRepository) CountByOrganiser(ctx context.Context, organiserID string) (int64, error) {
	return r.collection.CountDocuments(ctx, bson.M{"organiserID": organiserID})
}
