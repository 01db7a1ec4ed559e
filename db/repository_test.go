package db

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Kotlang/summitGo/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func newTestDb() *SummitDb {
	clock := &tickingClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	return NewMemorySummitDb(clock.Now)
}

func TestLeadRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("leads come back newest first", func(t *testing.T) {
		repo := newTestDb().Lead()
		for i := 0; i < 5; i++ {
			lead := &models.LeadModel{Name: fmt.Sprintf("lead-%d", i)}
			require.NoError(t, <-repo.Add(ctx, lead))
			require.NotEmpty(t, lead.LeadId)
			require.False(t, lead.CreatedAt.IsZero())
		}

		leads, err := repo.GetLeads(ctx)
		require.NoError(t, err)
		require.Len(t, leads, 5)
		for i := 1; i < len(leads); i++ {
			assert.True(t, leads[i-1].CreatedAt.After(leads[i].CreatedAt))
		}
		assert.Equal(t, "lead-4", leads[0].Name)
	})

	t.Run("deleted lead is gone", func(t *testing.T) {
		repo := newTestDb().Lead()
		keep := &models.LeadModel{Name: "keep"}
		drop := &models.LeadModel{Name: "drop"}
		require.NoError(t, <-repo.Add(ctx, keep))
		require.NoError(t, <-repo.Add(ctx, drop))

		require.NoError(t, <-repo.DeleteById(ctx, drop.LeadId))

		leads, err := repo.GetLeads(ctx)
		require.NoError(t, err)
		require.Len(t, leads, 1)
		assert.Equal(t, keep.LeadId, leads[0].LeadId)
	})
}

func TestEventRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("new events start with no attendees", func(t *testing.T) {
		repo := newTestDb().Event()
		event := &models.EventModel{Title: "Retreat", Capacity: 2}
		require.NoError(t, <-repo.Add(ctx, event))

		stored, err := repo.GetEventById(ctx, event.EventId)
		require.NoError(t, err)
		assert.NotNil(t, stored.Attendees)
		assert.Len(t, stored.Attendees, 0)
		assert.Equal(t, 2, stored.Capacity)
	})

	t.Run("unknown id is not found", func(t *testing.T) {
		repo := newTestDb().Event()
		event, err := repo.GetEventById(ctx, "missing")
		assert.Nil(t, event)
		assert.True(t, errors.Is(err, ErrNotFound))
	})

	t.Run("concurrent appends are not lost", func(t *testing.T) {
		repo := newTestDb().Event()
		event := &models.EventModel{Title: "Dinner", Capacity: 5}
		require.NoError(t, <-repo.Add(ctx, event))

		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				err := <-repo.AppendAttendee(ctx, event.EventId, models.AttendeeModel{Name: fmt.Sprintf("a-%d", i)})
				assert.NoError(t, err)
			}(i)
		}
		wg.Wait()

		stored, err := repo.GetEventById(ctx, event.EventId)
		require.NoError(t, err)
		assert.Len(t, stored.Attendees, 20)
		assert.Equal(t, 5, stored.Capacity)
	})

	t.Run("events come back newest first", func(t *testing.T) {
		repo := newTestDb().Event()
		first := &models.EventModel{Title: "first"}
		second := &models.EventModel{Title: "second"}
		require.NoError(t, <-repo.Add(ctx, first))
		require.NoError(t, <-repo.Add(ctx, second))

		events, err := repo.GetEvents(ctx)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "second", events[0].Title)
		assert.Equal(t, "first", events[1].Title)
	})
}

func TestClock(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 10, 0, 0, 123456789, time.FixedZone("X", 3600))
	now := Clock(func() time.Time { return fixed }).Now()
	assert.Equal(t, time.UTC, now.Location())
	assert.Equal(t, 123000000, now.Nanosecond())

	var nilClock Clock
	assert.WithinDuration(t, time.Now(), nilClock.Now(), time.Minute)
}

func TestNewDocumentId_IsOrdered(t *testing.T) {
	prev := newDocumentId()
	for i := 0; i < 100; i++ {
		next := newDocumentId()
		assert.Less(t, prev, next)
		prev = next
	}
}
