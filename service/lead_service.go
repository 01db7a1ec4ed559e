package service

import (
	"context"
	"fmt"

	"github.com/Kotlang/summitGo/db"
	"github.com/Kotlang/summitGo/extensions"
	"github.com/Kotlang/summitGo/logger"
	"github.com/Kotlang/summitGo/models"
	"github.com/jinzhu/copier"
	"go.uber.org/zap"
)

type LeadService struct {
	db       db.SummitDbInterface
	notifier extensions.NotifierInterface
}

func ProvideLeadService(summitDb db.SummitDbInterface, notifier extensions.NotifierInterface) *LeadService {
	return &LeadService{db: summitDb, notifier: notifier}
}

// AddLead stores an application form submission and returns the new lead id.
func (s *LeadService) AddLead(ctx context.Context, req *LeadRequest) (string, error) {
	trimAll(&req.Name, &req.Business, &req.Email, &req.Phone)
	if err := ValidateLeadRequest(req); err != nil {
		return "", err
	}

	lead := getLeadModel(req)
	if err := <-s.db.Lead().Add(ctx, lead); err != nil {
		logger.Error("Error adding lead", zap.Error(err))
		storeFailures.WithLabelValues("add_lead").Inc()
		return "", fmt.Errorf("failed to add lead: %w", err)
	}

	leadsCreated.Inc()
	notify(ctx, s.notifier, extensions.LeadCreated, lead)
	return lead.LeadId, nil
}

// GetLeads returns every lead, newest first. The list is empty, not nil, when
// the error is set.
func (s *LeadService) GetLeads(ctx context.Context) ([]models.LeadModel, error) {
	leads, err := s.db.Lead().GetLeads(ctx)
	if err != nil {
		storeFailures.WithLabelValues("get_leads").Inc()
		return leads, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return leads, nil
}

// DeleteLead succeeds for ids that no longer exist.
func (s *LeadService) DeleteLead(ctx context.Context, leadId string) error {
	if err := <-s.db.Lead().DeleteById(ctx, leadId); err != nil {
		logger.Error("Error deleting lead", zap.String("leadId", leadId), zap.Error(err))
		storeFailures.WithLabelValues("delete_lead").Inc()
		return fmt.Errorf("failed to delete lead %q: %w", leadId, err)
	}
	return nil
}

func getLeadModel(req *LeadRequest) *models.LeadModel {
	lead := &models.LeadModel{}
	copier.Copy(lead, req)
	return lead
}

// notify publishes in the background; a failed notification never fails the
// request that triggered it.
func notify(ctx context.Context, notifier extensions.NotifierInterface, kind string, payload interface{}) {
	if notifier == nil {
		return
	}
	errChan := notifier.Notify(context.WithoutCancel(ctx), kind, payload)
	go func() {
		if err := <-errChan; err != nil {
			logger.Warn("Failed sending notification", zap.String("kind", kind), zap.Error(err))
		}
	}()
}
