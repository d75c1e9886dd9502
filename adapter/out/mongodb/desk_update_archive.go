package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// =============================================================================
// MongoDB Update Archive Adapter
// =============================================================================

const (
	collectionUpdates = "raw_updates"

	// Archived updates expire after 30 days.
	updateRetention = 30 * 24 * time.Hour
)

// UpdateArchive stores raw webhook payloads for audit and replay. The
// relational store only keeps the normalized projection; the full payload
// lives here.
type UpdateArchive struct {
	db         *mongo.Database
	collection *mongo.Collection
}

// NewUpdateArchive creates a new MongoDB update archive adapter.
func NewUpdateArchive(db *mongo.Database) *UpdateArchive {
	return &UpdateArchive{
		db:         db,
		collection: db.Collection(collectionUpdates),
	}
}

// EnsureIndexes creates necessary indexes for the collection.
func (a *UpdateArchive) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "update_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "chat_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL index
		},
	}

	_, err := a.collection.Indexes().CreateMany(ctx, indexes)
	return err
}

// updateDocument represents the MongoDB document structure.
type updateDocument struct {
	UpdateID   int64     `bson:"update_id"`
	ChatID     string    `bson:"chat_id"`
	Payload    []byte    `bson:"payload"`
	ReceivedAt time.Time `bson:"received_at"`
	ExpiresAt  time.Time `bson:"expires_at"`
}

// Archive stores one raw update. Re-delivery of the same update id is a
// no-op thanks to the unique index.
func (a *UpdateArchive) Archive(ctx context.Context, updateID int64, chatID string, payload []byte) error {
	now := time.Now()
	doc := updateDocument{
		UpdateID:   updateID,
		ChatID:     chatID,
		Payload:    payload,
		ReceivedAt: now,
		ExpiresAt:  now.Add(updateRetention),
	}

	_, err := a.collection.UpdateOne(ctx,
		bson.M{"update_id": updateID},
		bson.M{"$setOnInsert": doc},
		options.Update().SetUpsert(true),
	)
	return err
}

// GetByUpdateID fetches one archived payload, nil when absent.
func (a *UpdateArchive) GetByUpdateID(ctx context.Context, updateID int64) ([]byte, error) {
	var doc updateDocument
	err := a.collection.FindOne(ctx, bson.M{"update_id": updateID}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return doc.Payload, nil
}
