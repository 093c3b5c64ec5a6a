package mongodb

import (
	"context"
	"sync"

	"github.com/uniexp/uniexp-admin-backend/internal/repositories"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/exp/slog"
)

// watchDocument opens a change stream on one document and decodes each
// post-change image into T. The stream outlives ctx; it stops when the
// returned function runs. Change streams need a replica set or sharded cluster.
func watchDocument[T any](ctx context.Context, coll *mongo.Collection, id any, onChange func(*T)) (repositories.Unsubscribe, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "documentKey._id", Value: id}}}},
	}
	opts := options.ChangeStream().SetFullDocument(options.UpdateLookup)

	streamCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stream, err := coll.Watch(streamCtx, pipeline, opts)
	if err != nil {
		cancel()
		return nil, err
	}

	go func() {
		defer stream.Close(context.Background())
		for stream.Next(streamCtx) {
			var change struct {
				OperationType string `bson:"operationType"`
				FullDocument  *T     `bson:"fullDocument"`
			}
			if err := stream.Decode(&change); err != nil {
				slog.Warn("Failed to decode change event", "collection", coll.Name(), "error", err)
				continue
			}
			if change.FullDocument == nil {
				continue
			}
			onChange(change.FullDocument)
		}
		if err := stream.Err(); err != nil && streamCtx.Err() == nil {
			slog.Error("Change stream stopped", "collection", coll.Name(), "error", err)
		}
	}()

	var once sync.Once
	return func() { once.Do(cancel) }, nil
}
