package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/procscope/procscope/pkg/export"
)

const processCollection = "processes"

// MongoStore persists documents in a MongoDB collection. One document per
// process, keyed by process.id, replaced wholesale on save.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to the MongoDB instance at uri and uses the named
// database. The connection is verified with a ping before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(processCollection),
	}, nil
}

// Fetch returns the document for processID, or [ErrNotFound].
func (s *MongoStore) Fetch(ctx context.Context, processID string) (export.Document, error) {
	var doc export.Document
	err := s.coll.FindOne(ctx, bson.M{"process.id": processID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return export.Document{}, ErrNotFound
	}
	if err != nil {
		return export.Document{}, fmt.Errorf("fetching process %s: %w", processID, err)
	}
	return doc, nil
}

// Save upserts doc by process ID, generating one when it has none.
func (s *MongoStore) Save(ctx context.Context, doc export.Document) (string, error) {
	if doc.Process.ID == "" {
		doc.Process.ID = uuid.NewString()
	}

	filter := bson.M{"process.id": doc.Process.ID}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.coll.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return "", fmt.Errorf("saving process %s: %w", doc.Process.ID, err)
	}
	return doc.Process.ID, nil
}

// List returns process info for all stored documents, sorted by ID.
func (s *MongoStore) List(ctx context.Context) ([]export.ProcessInfo, error) {
	opts := options.Find().
		SetProjection(bson.M{"process": 1}).
		SetSort(bson.M{"process.id": 1})

	cursor, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	defer cursor.Close(ctx)

	var infos []export.ProcessInfo
	for cursor.Next(ctx) {
		var doc struct {
			Process export.ProcessInfo `bson:"process"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding process info: %w", err)
		}
		infos = append(infos, doc.Process)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("listing processes: %w", err)
	}
	return infos, nil
}

// Delete removes the document for processID, or returns [ErrNotFound].
func (s *MongoStore) Delete(ctx context.Context, processID string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"process.id": processID})
	if err != nil {
		return fmt.Errorf("deleting process %s: %w", processID, err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
