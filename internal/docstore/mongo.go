package docstore

import (
	"context"
	"errors"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoDoc struct {
	Name    string `bson:"_id"`
	Value   []byte `bson:"value"`
	Version int64  `bson:"version"`
}

// MongoStore keeps records in a single collection keyed by name, with the
// version field guarding conditional updates.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func NewMongoStore(client *mongo.Client, database string) *MongoStore {
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection("documents"),
	}
}

func (s *MongoStore) Read(ctx context.Context, name string) (*Document, error) {
	var doc mongoDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &Document{Value: doc.Value, Version: uint64(doc.Version)}, nil
}

func (s *MongoStore) Write(ctx context.Context, name string, value []byte) (uint64, error) {
	after := options.After
	res := s.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": name},
		bson.M{"$set": bson.M{"value": value}, "$inc": bson.M{"version": 1}},
		&options.FindOneAndUpdateOptions{
			Upsert:         boolPtr(true),
			ReturnDocument: &after,
		},
	)
	var doc mongoDoc
	if err := res.Decode(&doc); err != nil {
		return 0, err
	}
	return uint64(doc.Version), nil
}

func (s *MongoStore) CompareAndSwap(ctx context.Context, name string, value []byte, expect uint64) (uint64, error) {
	if expect == 0 {
		_, err := s.coll.InsertOne(ctx, mongoDoc{Name: name, Value: value, Version: 1})
		if mongo.IsDuplicateKeyError(err) {
			return 0, ErrVersionMismatch
		}
		if err != nil {
			return 0, err
		}
		return 1, nil
	}

	res, err := s.coll.UpdateOne(ctx,
		bson.M{"_id": name, "version": int64(expect)},
		bson.M{"$set": bson.M{"value": value}, "$inc": bson.M{"version": 1}},
	)
	if err != nil {
		return 0, err
	}
	if res.ModifiedCount == 0 {
		return 0, ErrVersionMismatch
	}
	return expect + 1, nil
}

func (s *MongoStore) Remove(ctx context.Context, name string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": name})
	return err
}

func (s *MongoStore) List(ctx context.Context, prefix string) ([]string, error) {
	filter := bson.M{"_id": bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)}}
	cur, err := s.coll.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}).SetSort(bson.M{"_id": 1}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var names []string
	for cur.Next(ctx) {
		var doc struct {
			Name string `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		names = append(names, doc.Name)
	}
	return names, cur.Err()
}

func (s *MongoStore) Close() error {
	return s.client.Disconnect(context.Background())
}

func boolPtr(b bool) *bool { return &b }
