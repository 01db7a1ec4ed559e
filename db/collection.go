package db

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound  = errors.New("document not found")
	ErrDuplicate = errors.New("document with same id exists")
)

// Document is anything stored in a summit collection.
type Document interface {
	Id() string
	CreatedOn() time.Time
}

// Collection is the record store boundary. Every call runs asynchronously and
// reports through buffered channels: exactly one of the returned channels
// receives a value, and nothing blocks if the caller stops listening.
type Collection[T Document] interface {
	// Save inserts doc. The error channel always receives, nil on success.
	Save(ctx context.Context, doc T) chan error
	// Find returns every document ordered by createdAt, newest first.
	Find(ctx context.Context) (chan []T, chan error)
	FindOneById(ctx context.Context, id string) (chan T, chan error)
	// DeleteById succeeds for ids that do not exist.
	DeleteById(ctx context.Context, id string) chan error
	// Push atomically appends value to the array stored under field.
	Push(ctx context.Context, id, field string, value interface{}) chan error
}

// Await blocks until one of the channels of an async call delivers.
func Await[T any](resultChan chan T, errChan chan error) (T, error) {
	select {
	case res := <-resultChan:
		return res, nil
	case err := <-errChan:
		var zero T
		return zero, err
	}
}

func newResultChans[T any]() (chan T, chan error) {
	return make(chan T, 1), make(chan error, 1)
}
