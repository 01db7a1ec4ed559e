package dashboard

import (
	"sync"

	"github.com/Kotlang/summitGo/db"
)

type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateError   State = "error"
)

// cachedList is one board list: the last fetched documents, the load state
// and the id of the row being deleted, if any.
type cachedList[T db.Document] struct {
	mu         sync.Mutex
	state      State
	items      []T
	err        error
	deletingId string
	generation uint64

	// ids deleted while a load was in flight; that load may still carry them.
	deletedDuringLoad map[string]struct{}
}

func newCachedList[T db.Document]() *cachedList[T] {
	return &cachedList[T]{
		state:             StateIdle,
		items:             []T{},
		deletedDuringLoad: map[string]struct{}{},
	}
}

// startLoad returns the generation the caller must present to commit.
func (l *cachedList[T]) startLoad() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.generation++
	l.state = StateLoading
	return l.generation
}

// commit stores a load result unless a newer load started since. Rows deleted
// after the load read the store are dropped from the result.
func (l *cachedList[T]) commit(generation uint64, items []T, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if generation != l.generation {
		return
	}
	deleted := l.deletedDuringLoad
	l.deletedDuringLoad = map[string]struct{}{}
	if err != nil {
		l.state = StateError
		l.items = []T{}
		l.err = err
		return
	}
	kept := make([]T, 0, len(items))
	for _, item := range items {
		if _, ok := deleted[item.Id()]; !ok {
			kept = append(kept, item)
		}
	}
	l.state = StateReady
	l.items = kept
	l.err = nil
}

func (l *cachedList[T]) isIdle() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state == StateIdle
}

func (l *cachedList[T]) beginDelete(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.deletingId = id
}

// endDelete clears the deleting marker if it still names id, and drops id
// from the cached items when the delete succeeded.
func (l *cachedList[T]) endDelete(id string, succeeded bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.deletingId == id {
		l.deletingId = ""
	}
	if !succeeded {
		return
	}
	if l.state == StateLoading {
		l.deletedDuringLoad[id] = struct{}{}
	}

	kept := make([]T, 0, len(l.items))
	for _, item := range l.items {
		if item.Id() != id {
			kept = append(kept, item)
		}
	}
	l.items = kept
}

func (l *cachedList[T]) snapshot() (State, []T, string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	items := make([]T, len(l.items))
	copy(items, l.items)
	return l.state, items, l.deletingId, l.err
}
