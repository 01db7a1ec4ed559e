package db

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson"
)

// MemoryCollection keeps documents as BSON in process memory so that reads and
// array pushes see exactly the shape the Mongo driver would store.
type MemoryCollection[T Document] struct {
	mu   sync.RWMutex
	docs map[string]memoryRecord
	seq  int
}

type memoryRecord struct {
	seq int
	raw []byte
}

func NewMemoryCollection[T Document]() *MemoryCollection[T] {
	return &MemoryCollection[T]{docs: make(map[string]memoryRecord)}
}

func (c *MemoryCollection[T]) Save(ctx context.Context, doc T) chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- c.save(ctx, doc)
	}()
	return errChan
}

func (c *MemoryCollection[T]) save(ctx context.Context, doc T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", doc.Id(), err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.docs[doc.Id()]; ok {
		return fmt.Errorf("insert %q: %w", doc.Id(), ErrDuplicate)
	}
	c.seq++
	c.docs[doc.Id()] = memoryRecord{seq: c.seq, raw: raw}
	return nil
}

func (c *MemoryCollection[T]) Find(ctx context.Context) (chan []T, chan error) {
	resultChan, errChan := newResultChans[[]T]()

	go func() {
		docs, err := c.find(ctx)
		if err != nil {
			errChan <- err
			return
		}
		resultChan <- docs
	}()
	return resultChan, errChan
}

func (c *MemoryCollection[T]) find(ctx context.Context) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	type entry struct {
		seq int
		doc T
	}

	c.mu.RLock()
	entries := make([]entry, 0, len(c.docs))
	for id, rec := range c.docs {
		var doc T
		if err := bson.Unmarshal(rec.raw, &doc); err != nil {
			c.mu.RUnlock()
			return nil, fmt.Errorf("failed to decode %q: %w", id, err)
		}
		entries = append(entries, entry{seq: rec.seq, doc: doc})
	}
	c.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i].doc.CreatedOn(), entries[j].doc.CreatedOn()
		if !a.Equal(b) {
			return a.After(b)
		}
		return entries[i].seq < entries[j].seq
	})

	docs := make([]T, len(entries))
	for i, e := range entries {
		docs[i] = e.doc
	}
	return docs, nil
}

func (c *MemoryCollection[T]) FindOneById(ctx context.Context, id string) (chan T, chan error) {
	resultChan, errChan := newResultChans[T]()

	go func() {
		if err := ctx.Err(); err != nil {
			errChan <- err
			return
		}

		c.mu.RLock()
		rec, ok := c.docs[id]
		c.mu.RUnlock()
		if !ok {
			errChan <- fmt.Errorf("find %q: %w", id, ErrNotFound)
			return
		}

		var doc T
		if err := bson.Unmarshal(rec.raw, &doc); err != nil {
			errChan <- fmt.Errorf("failed to decode %q: %w", id, err)
			return
		}
		resultChan <- doc
	}()
	return resultChan, errChan
}

func (c *MemoryCollection[T]) DeleteById(ctx context.Context, id string) chan error {
	errChan := make(chan error, 1)

	go func() {
		if err := ctx.Err(); err != nil {
			errChan <- err
			return
		}
		c.mu.Lock()
		delete(c.docs, id)
		c.mu.Unlock()
		errChan <- nil
	}()
	return errChan
}

func (c *MemoryCollection[T]) Push(ctx context.Context, id, field string, value interface{}) chan error {
	errChan := make(chan error, 1)

	go func() {
		errChan <- c.push(ctx, id, field, value)
	}()
	return errChan
}

func (c *MemoryCollection[T]) push(ctx context.Context, id, field string, value interface{}) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	rec, ok := c.docs[id]
	if !ok {
		return fmt.Errorf("push to %q: %w", id, ErrNotFound)
	}

	doc := bson.M{}
	if err := bson.Unmarshal(rec.raw, &doc); err != nil {
		return fmt.Errorf("failed to decode %q: %w", id, err)
	}

	var arr bson.A
	switch existing := doc[field].(type) {
	case nil:
		arr = bson.A{}
	case bson.A:
		arr = existing
	case []interface{}:
		arr = bson.A(existing)
	default:
		return fmt.Errorf("field %q of %q is not an array", field, id)
	}
	doc[field] = append(arr, value)

	raw, err := bson.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode %q: %w", id, err)
	}
	rec.raw = raw
	c.docs[id] = rec
	return nil
}
