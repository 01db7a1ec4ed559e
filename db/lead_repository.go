package db

import (
	"context"

	"github.com/Kotlang/summitGo/logger"
	"github.com/Kotlang/summitGo/models"
	"go.uber.org/zap"
)

const leadsCollection = "leads"

type LeadRepositoryInterface interface {
	Collection[models.LeadModel]
	Add(ctx context.Context, lead *models.LeadModel) chan error
	GetLeads(ctx context.Context) ([]models.LeadModel, error)
}

type LeadRepository struct {
	Collection[models.LeadModel]
	clock Clock
}

func NewLeadRepository(collection Collection[models.LeadModel], clock Clock) *LeadRepository {
	return &LeadRepository{Collection: collection, clock: clock}
}

// Add assigns the lead its id and server timestamp before inserting it.
func (l *LeadRepository) Add(ctx context.Context, lead *models.LeadModel) chan error {
	lead.LeadId = newDocumentId()
	lead.CreatedAt = l.clock.Now()
	return l.Save(ctx, *lead)
}

// GetLeads returns all leads, newest first. On failure the list is empty,
// never nil, and the cause is returned alongside it.
func (l *LeadRepository) GetLeads(ctx context.Context) ([]models.LeadModel, error) {
	resultChan, errChan := l.Find(ctx)

	select {
	case leads := <-resultChan:
		return leads, nil
	case err := <-errChan:
		logger.Error("Error fetching leads", zap.Error(err))
		return []models.LeadModel{}, err
	}
}
