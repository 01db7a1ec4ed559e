package db

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoCollection[T Document] struct {
	collection *mongo.Collection
}

func NewMongoCollection[T Document](database *mongo.Database, name string) *MongoCollection[T] {
	return &MongoCollection[T]{collection: database.Collection(name)}
}

func (c *MongoCollection[T]) Save(ctx context.Context, doc T) chan error {
	errChan := make(chan error, 1)

	go func() {
		_, err := c.collection.InsertOne(ctx, doc)
		if mongo.IsDuplicateKeyError(err) {
			err = fmt.Errorf("insert %q: %w", doc.Id(), ErrDuplicate)
		}
		errChan <- err
	}()
	return errChan
}

func (c *MongoCollection[T]) Find(ctx context.Context) (chan []T, chan error) {
	resultChan, errChan := newResultChans[[]T]()

	go func() {
		// ids are time-ordered, so _id ascending keeps insertion order among equal timestamps
		sort := bson.D{
			{Key: "createdAt", Value: -1},
			{Key: "_id", Value: 1},
		}
		cursor, err := c.collection.Find(ctx, bson.M{}, options.Find().SetSort(sort))
		if err != nil {
			errChan <- err
			return
		}

		docs := make([]T, 0)
		if err := cursor.All(ctx, &docs); err != nil {
			errChan <- err
			return
		}
		resultChan <- docs
	}()
	return resultChan, errChan
}

func (c *MongoCollection[T]) FindOneById(ctx context.Context, id string) (chan T, chan error) {
	resultChan, errChan := newResultChans[T]()

	go func() {
		var doc T
		err := c.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
		if errors.Is(err, mongo.ErrNoDocuments) {
			errChan <- fmt.Errorf("find %q in %s: %w", id, c.collection.Name(), ErrNotFound)
			return
		}
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- doc
	}()
	return resultChan, errChan
}

func (c *MongoCollection[T]) DeleteById(ctx context.Context, id string) chan error {
	errChan := make(chan error, 1)

	go func() {
		_, err := c.collection.DeleteOne(ctx, bson.M{"_id": id})
		errChan <- err
	}()
	return errChan
}

func (c *MongoCollection[T]) Push(ctx context.Context, id, field string, value interface{}) chan error {
	errChan := make(chan error, 1)

	go func() {
		res, err := c.collection.UpdateOne(ctx,
			bson.M{"_id": id},
			bson.M{"$push": bson.M{field: value}},
		)
		if err != nil {
			errChan <- err
			return
		}
		if res.MatchedCount == 0 {
			errChan <- fmt.Errorf("push to %q in %s: %w", id, c.collection.Name(), ErrNotFound)
			return
		}
		errChan <- nil
	}()
	return errChan
}
