package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/Kotlang/summitGo/logger"
	"github.com/Kotlang/summitGo/models"
	"github.com/Kotlang/summitGo/service"
	"go.uber.org/zap"
)

type LeadSource interface {
	GetLeads(ctx context.Context) ([]models.LeadModel, error)
	DeleteLead(ctx context.Context, leadId string) error
}

type EventSource interface {
	GetEvents(ctx context.Context) ([]models.EventModel, error)
	AddEvent(ctx context.Context, req *service.EventRequest) (string, error)
	DeleteEvent(ctx context.Context, eventId string) error
}

// View is a filtered snapshot of one board list.
type View[T any] struct {
	State      State  `json:"state"`
	Items      []T    `json:"items"`
	Err        error  `json:"-"`
	DeletingId string `json:"deletingId,omitempty"`
	Shown      int    `json:"shown"`
	Total      int    `json:"total"`
}

// Board is the admin dashboard state: a cache of leads and of events, each
// with its own load state. Deletes update the cache in place on success;
// creating an event re-fetches the event list.
type Board struct {
	leadSource  LeadSource
	eventSource EventSource
	leads       *cachedList[models.LeadModel]
	events      *cachedList[models.EventModel]
	now         func() time.Time
}

func NewBoard(leadSource LeadSource, eventSource EventSource) *Board {
	return &Board{
		leadSource:  leadSource,
		eventSource: eventSource,
		leads:       newCachedList[models.LeadModel](),
		events:      newCachedList[models.EventModel](),
		now:         time.Now,
	}
}

// Refresh loads both lists concurrently. Each list records its own outcome.
func (b *Board) Refresh(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		b.RefreshLeads(ctx)
	}()
	go func() {
		defer wg.Done()
		b.RefreshEvents(ctx)
	}()
	wg.Wait()
}

func (b *Board) RefreshLeads(ctx context.Context) error {
	generation := b.leads.startLoad()
	leads, err := b.leadSource.GetLeads(ctx)
	if err != nil {
		logger.Warn("Board failed loading leads", zap.Error(err))
	}
	b.leads.commit(generation, leads, err)
	return err
}

func (b *Board) RefreshEvents(ctx context.Context) error {
	generation := b.events.startLoad()
	events, err := b.eventSource.GetEvents(ctx)
	if err != nil {
		logger.Warn("Board failed loading events", zap.Error(err))
	}
	b.events.commit(generation, events, err)
	return err
}

// WithClock replaces the board's time source.
func (b *Board) WithClock(now func() time.Time) *Board {
	b.now = now
	return b
}

// Leads returns the lead list filtered by search and date range, where date
// ranges follow the calendar of loc (server local time when nil). The list is
// loaded first when it never was or when refresh is set.
func (b *Board) Leads(ctx context.Context, search string, dateFilter DateFilter, loc *time.Location, refresh bool) View[models.LeadModel] {
	if refresh || b.leads.isIdle() {
		b.RefreshLeads(ctx)
	}

	state, items, deletingId, err := b.leads.snapshot()
	now := b.now()
	if loc != nil {
		now = now.In(loc)
	}
	shown := FilterLeads(items, search, dateFilter, now)
	return View[models.LeadModel]{
		State:      state,
		Items:      shown,
		Err:        err,
		DeletingId: deletingId,
		Shown:      len(shown),
		Total:      len(items),
	}
}

func (b *Board) Events(ctx context.Context, search string, refresh bool) View[models.EventModel] {
	if refresh || b.events.isIdle() {
		b.RefreshEvents(ctx)
	}

	state, items, deletingId, err := b.events.snapshot()
	shown := FilterEvents(items, search)
	return View[models.EventModel]{
		State:      state,
		Items:      shown,
		Err:        err,
		DeletingId: deletingId,
		Shown:      len(shown),
		Total:      len(items),
	}
}

// DeleteLead removes the lead from the store and, on success, from the cache
// without a re-fetch.
func (b *Board) DeleteLead(ctx context.Context, leadId string) error {
	b.leads.beginDelete(leadId)
	err := b.leadSource.DeleteLead(ctx, leadId)
	b.leads.endDelete(leadId, err == nil)
	return err
}

func (b *Board) DeleteEvent(ctx context.Context, eventId string) error {
	b.events.beginDelete(eventId)
	err := b.eventSource.DeleteEvent(ctx, eventId)
	b.events.endDelete(eventId, err == nil)
	return err
}

// CreateEvent adds the event and reloads the event list so the new row shows
// with its store-assigned id and timestamp.
func (b *Board) CreateEvent(ctx context.Context, req *service.EventRequest) (string, error) {
	eventId, err := b.eventSource.AddEvent(ctx, req)
	if err != nil {
		return "", err
	}
	b.RefreshEvents(ctx)
	return eventId, nil
}
