package mongodb

import (
	"context"
	"time"

	"github.com/uniexp/uniexp-admin-backend/internal/models"
	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var _ repositories.QuestRepository = (*QuestRepository)(nil)

// QuestRepository keeps quest lists in "questLists" and their quests in "quests"
type QuestRepository struct {
	lists  *mongo.Collection
	quests *mongo.Collection
}

// NewQuestRepository creates a new QuestRepository
func NewQuestRepository(db *mongo.Database) *QuestRepository {
	return &QuestRepository{
		lists:  db.Collection("questLists"),
		quests: db.Collection("quests"),
	}
}

// CreateList writes the parent record, then its quests in order. A repeated
// call replaces whatever an earlier, interrupted call left behind.
func (r *QuestRepository) CreateList(ctx context.Context, list *models.QuestList, quests []*models.Quest) error {
	now := time.Now()
	list.QuestCount = len(quests)
	list.CreatedAt = now
	list.UpdatedAt = now
	opts := options.Replace().SetUpsert(true)
	if _, err := r.lists.ReplaceOne(ctx, bson.M{"_id": list.ID}, list, opts); err != nil {
		return err
	}
	if _, err := r.quests.DeleteMany(ctx, bson.M{"questListID": list.ID}); err != nil {
		return err
	}
	return r.insertQuests(ctx, list.ID, quests, now)
}

// ReplaceQuests drops the list's quests and writes the given ones
func (r *QuestRepository) ReplaceQuests(ctx context.Context, listID primitive.ObjectID, quests []*models.Quest) error {
	now := time.Now()
	if _, err := r.quests.DeleteMany(ctx, bson.M{"questListID": listID}); err != nil {
		return err
	}
	if err := r.insertQuests(ctx, listID, quests, now); err != nil {
		return err
	}
	_, err := r.lists.UpdateOne(ctx,
		bson.M{"_id": listID},
		bson.M{"$set": bson.M{"questCount": len(quests), "updatedAt": now}},
		options.Update().SetUpsert(true),
	)
	return err
}

// FindByListID returns the list's quests in order
func (r *QuestRepository) FindByListID(ctx context.Context, listID primitive.ObjectID) ([]*models.Quest, error) {
	opts := options.Find().SetSort(bson.D{{Key: "order", Value: 1}})
	cursor, err := r.quests.Find(ctx, bson.M{"questListID": listID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var quests []*models.Quest
	if err := cursor.All(ctx, &quests); err != nil {
		return nil, err
	}
	if quests == nil {
		quests = []*models.Quest{}
	}
	return quests, nil
}

func (r *QuestRepository) insertQuests(ctx context.Context, listID primitive.ObjectID, quests []*models.Quest, now time.Time) error {
	if len(quests) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(quests))
	for i, q := range quests {
		if q.ID.IsZero() {
			q.ID = primitive.NewObjectID()
		}
		q.QuestListID = listID
		q.Order = i
		q.CreatedAt = now
		docs = append(docs, q)
	}
	_, err := r.quests.InsertMany(ctx, docs, options.InsertMany().SetOrdered(true))
	return err
}
