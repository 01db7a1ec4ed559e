package mocks

import (
	"context"
	"errors"

	"github.com/Kotlang/summitGo/db"
)

var ErrStoreUnavailable = errors.New("store unavailable")

// FailingCollection wraps a collection and fails the operations switched on.
type FailingCollection[T db.Document] struct {
	db.Collection[T]
	FailSave   bool
	FailFind   bool
	FailDelete bool
	FailPush   bool
}

func NewFailingCollection[T db.Document](inner db.Collection[T]) *FailingCollection[T] {
	return &FailingCollection[T]{Collection: inner}
}

func failed() chan error {
	errChan := make(chan error, 1)
	errChan <- ErrStoreUnavailable
	return errChan
}

func (c *FailingCollection[T]) Save(ctx context.Context, doc T) chan error {
	if c.FailSave {
		return failed()
	}
	return c.Collection.Save(ctx, doc)
}

func (c *FailingCollection[T]) Find(ctx context.Context) (chan []T, chan error) {
	if c.FailFind {
		return make(chan []T, 1), failed()
	}
	return c.Collection.Find(ctx)
}

func (c *FailingCollection[T]) FindOneById(ctx context.Context, id string) (chan T, chan error) {
	if c.FailFind {
		return make(chan T, 1), failed()
	}
	return c.Collection.FindOneById(ctx, id)
}

func (c *FailingCollection[T]) DeleteById(ctx context.Context, id string) chan error {
	if c.FailDelete {
		return failed()
	}
	return c.Collection.DeleteById(ctx, id)
}

func (c *FailingCollection[T]) Push(ctx context.Context, id, field string, value interface{}) chan error {
	if c.FailPush {
		return failed()
	}
	return c.Collection.Push(ctx, id, field, value)
}
