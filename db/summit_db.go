package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Kotlang/summitGo/appconfig"
	"github.com/Kotlang/summitGo/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const connectTimeout = 15 * time.Second

type SummitDbInterface interface {
	Lead() LeadRepositoryInterface
	Event() EventRepositoryInterface
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type SummitDb struct {
	leads  *LeadRepository
	events *EventRepository
	client *mongo.Client
}

func (s *SummitDb) Lead() LeadRepositoryInterface {
	return s.leads
}

func (s *SummitDb) Event() EventRepositoryInterface {
	return s.events
}

func (s *SummitDb) Ping(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *SummitDb) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to close connection: %w", err)
	}
	return nil
}

// NewSummitDb builds the repositories over already constructed collections.
func NewSummitDb(leads Collection[models.LeadModel], events Collection[models.EventModel], clock Clock) *SummitDb {
	return &SummitDb{
		leads:  NewLeadRepository(leads, clock),
		events: NewEventRepository(events, clock),
	}
}

func NewMemorySummitDb(clock Clock) *SummitDb {
	return NewSummitDb(
		NewMemoryCollection[models.LeadModel](),
		NewMemoryCollection[models.EventModel](),
		clock,
	)
}

func NewMongoSummitDb(ctx context.Context, uri, database string) (*SummitDb, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping: %w", err)
	}

	mongoDb := client.Database(database)
	summitDb := NewSummitDb(
		NewMongoCollection[models.LeadModel](mongoDb, leadsCollection),
		NewMongoCollection[models.EventModel](mongoDb, eventsCollection),
		nil,
	)
	summitDb.client = client
	return summitDb, nil
}

// ProvideSummitDb picks the store driver named by the configuration.
func ProvideSummitDb(config *appconfig.AppConfig) (*SummitDb, error) {
	switch config.StorageType {
	case appconfig.StorageMemory:
		return NewMemorySummitDb(nil), nil
	case appconfig.StorageMongo:
		ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
		defer cancel()
		summitDb, err := NewMongoSummitDb(ctx, config.MongoURI, config.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("failed to open mongo database %s: %w", config.MongoDatabase, err)
		}
		return summitDb, nil
	default:
		return nil, fmt.Errorf("unknown storage type %s", config.StorageType)
	}
}
