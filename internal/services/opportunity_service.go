package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/unilink-hq/placement-service/internal/models"
	"github.com/unilink-hq/placement-service/internal/policy"
	"github.com/unilink-hq/placement-service/internal/repositories"
	"github.com/unilink-hq/placement-service/internal/validator"
)

type opportunityService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
	policy    policy.AccessPolicy
}

func NewOpportunityService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, accessPolicy policy.AccessPolicy) OpportunityService {
	return &opportunityService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
		policy:    accessPolicy,
	}
}

// Create publishes a new listing; administrators only
func (s *opportunityService) Create(ctx context.Context, req *CreateOpportunityRequest, actorID string) (*OpportunityResponse, error) {
	if errs := s.validator.GetBusinessValidator().ValidateOpportunityCreate(req); len(errs) > 0 {
		return nil, errs
	}

	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrator() {
		return nil, NewPermissionError(actorID, "", "opportunity", "create", "administrator role required")
	}

	status := models.OpportunityDraft
	if req.Status != nil {
		status = *req.Status
	}

	opportunity := &models.Opportunity{
		Title:               req.Title,
		Description:         req.Description,
		Organization:        req.Organization,
		Location:            req.Location,
		Type:                req.Type,
		Status:              status,
		Requirements:        toJSONList(req.Requirements),
		RequiredDocuments:   toJSONList(req.RequiredDocuments),
		ApplicationDeadline: req.ApplicationDeadline,
		StartDate:           req.StartDate,
		Duration:            req.Duration,
		Compensation:        req.Compensation,
		CreatedBy:           actorID,
	}

	if err := s.repo.Opportunity().Create(ctx, nil, opportunity); err != nil {
		return nil, fmt.Errorf("failed to create opportunity: %w", err)
	}

	s.logger.Info("opportunity created", "opportunity_id", opportunity.ID, "created_by", actorID)
	opportunity.Creator = *actor
	return s.buildResponse(ctx, opportunity, actor), nil
}

// GetByID returns a listing and bumps its view counter. Views by the owner
// are not counted.
func (s *opportunityService) GetByID(ctx context.Context, id string, actorID string) (*OpportunityResponse, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	if !s.policy.CanViewOpportunity(actor, opportunity) {
		// Hidden listings read as absent, not forbidden
		return nil, ErrOpportunityNotFound
	}

	if opportunity.CreatedBy != actorID {
		if err := s.repo.Opportunity().IncrementViews(ctx, nil, id); err != nil {
			s.logger.Warn("failed to increment views", "opportunity_id", id, "error", err)
		} else {
			opportunity.ViewsCount++
		}
	}

	return s.buildResponse(ctx, opportunity, actor), nil
}

// Update applies partial updates; owner only
func (s *opportunityService) Update(ctx context.Context, id string, req *UpdateOpportunityRequest, actorID string) (*OpportunityResponse, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	if !s.policy.CanManageOpportunity(actor, opportunity) {
		return nil, NewPermissionError(actorID, id, "opportunity", "update", "not the owner")
	}

	if errs := s.validator.GetBusinessValidator().ValidateOpportunityUpdate(req, opportunity); len(errs) > 0 {
		return nil, errs
	}

	if req.Title != nil {
		opportunity.Title = *req.Title
	}
	if req.Description != nil {
		opportunity.Description = *req.Description
	}
	if req.Organization != nil {
		opportunity.Organization = *req.Organization
	}
	if req.Location != nil {
		opportunity.Location = *req.Location
	}
	if req.Type != nil {
		opportunity.Type = *req.Type
	}
	if req.Status != nil {
		opportunity.Status = *req.Status
	}
	if req.Requirements != nil {
		opportunity.Requirements = toJSONList(req.Requirements)
	}
	if req.RequiredDocuments != nil {
		opportunity.RequiredDocuments = toJSONList(req.RequiredDocuments)
	}
	if req.ApplicationDeadline != nil {
		opportunity.ApplicationDeadline = *req.ApplicationDeadline
	}
	if req.StartDate != nil {
		opportunity.StartDate = req.StartDate
	}
	if req.Duration != nil {
		opportunity.Duration = *req.Duration
	}
	if req.Compensation != nil {
		opportunity.Compensation = *req.Compensation
	}

	if err := s.repo.Opportunity().Update(ctx, nil, opportunity); err != nil {
		return nil, fmt.Errorf("failed to update opportunity: %w", err)
	}

	return s.buildResponse(ctx, opportunity, actor), nil
}

// Delete removes a listing and its applications; owner only
func (s *opportunityService) Delete(ctx context.Context, id string, actorID string) error {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return err
	}

	opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrOpportunityNotFound
		}
		return fmt.Errorf("failed to get opportunity: %w", err)
	}

	if !s.policy.CanManageOpportunity(actor, opportunity) {
		return NewPermissionError(actorID, id, "opportunity", "delete", "not the owner")
	}

	if err := s.repo.Opportunity().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete opportunity: %w", err)
	}

	s.logger.Info("opportunity deleted", "opportunity_id", id, "deleted_by", actorID)
	return nil
}

// List returns listings scoped by role: students browse active listings,
// administrators see everything.
func (s *opportunityService) List(ctx context.Context, filters repositories.OpportunityFilters, actorID string) (*OpportunityListResponse, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	if !actor.IsAdministrator() {
		active := models.OpportunityActive
		filters.Status = &active
	}

	opportunities, total, err := s.repo.Opportunity().List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list opportunities: %w", err)
	}

	return s.buildListResponse(ctx, opportunities, total, filters.Limit, filters.Offset, actor), nil
}

// GetSaved returns the actor's save list
func (s *opportunityService) GetSaved(ctx context.Context, actorID string, filters repositories.OpportunityFilters) (*OpportunityListResponse, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	opportunities, total, err := s.repo.Opportunity().GetSavedByUser(ctx, actorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list saved opportunities: %w", err)
	}

	return s.buildListResponse(ctx, opportunities, total, filters.Limit, filters.Offset, actor), nil
}

// ToggleSave flips save-list membership and returns the resulting state
func (s *opportunityService) ToggleSave(ctx context.Context, id string, actorID string) (bool, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return false, err
	}

	opportunity, err := s.repo.Opportunity().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrOpportunityNotFound
		}
		return false, fmt.Errorf("failed to get opportunity: %w", err)
	}
	if !s.policy.CanViewOpportunity(actor, opportunity) {
		return false, ErrOpportunityNotFound
	}

	var saved bool
	err = s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		isSaved, err := txRepo.Opportunity().IsSavedBy(ctx, nil, id, actorID)
		if err != nil {
			return err
		}
		if isSaved {
			saved = false
			return txRepo.Opportunity().RemoveSave(ctx, nil, id, actorID)
		}
		saved = true
		return txRepo.Opportunity().AddSave(ctx, nil, id, actorID)
	})
	if err != nil {
		return false, fmt.Errorf("failed to toggle save: %w", err)
	}

	return saved, nil
}

// Duplicate clones a listing as a fresh draft titled "Copy of <title>".
// Counters, saves and applications do not carry over.
func (s *opportunityService) Duplicate(ctx context.Context, id string, actorID string) (*OpportunityResponse, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}

	source, err := s.repo.Opportunity().GetByID(ctx, nil, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOpportunityNotFound
		}
		return nil, fmt.Errorf("failed to get opportunity: %w", err)
	}

	if !s.policy.CanManageOpportunity(actor, source) {
		return nil, NewPermissionError(actorID, id, "opportunity", "duplicate", "not the owner")
	}

	clone := &models.Opportunity{
		Title:               "Copy of " + source.Title,
		Description:         source.Description,
		Organization:        source.Organization,
		Location:            source.Location,
		Type:                source.Type,
		Status:              models.OpportunityDraft,
		Requirements:        source.Requirements,
		RequiredDocuments:   source.RequiredDocuments,
		ApplicationDeadline: source.ApplicationDeadline,
		StartDate:           source.StartDate,
		Duration:            source.Duration,
		Compensation:        source.Compensation,
		CreatedBy:           actorID,
	}

	if err := s.repo.Opportunity().Create(ctx, nil, clone); err != nil {
		return nil, fmt.Errorf("failed to duplicate opportunity: %w", err)
	}

	s.logger.Info("opportunity duplicated", "source_id", id, "clone_id", clone.ID)
	clone.Creator = *actor
	return s.buildResponse(ctx, clone, actor), nil
}

// GetStats returns catalog statistics; administrators only
func (s *opportunityService) GetStats(ctx context.Context, actorID string) (*repositories.OpportunityStats, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrator() {
		return nil, NewPermissionError(actorID, "", "opportunity", "stats", "administrator role required")
	}
	return s.repo.Opportunity().GetStats(ctx)
}

// GetAnalytics returns distribution and trend analytics; administrators only
func (s *opportunityService) GetAnalytics(ctx context.Context, actorID string, trendDays int) (*repositories.OpportunityAnalytics, error) {
	actor, err := s.getActor(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdministrator() {
		return nil, NewPermissionError(actorID, "", "opportunity", "analytics", "administrator role required")
	}
	return s.repo.Opportunity().GetAnalytics(ctx, trendDays)
}

func (s *opportunityService) getActor(ctx context.Context, actorID string) (*models.User, error) {
	actor, err := s.repo.User().GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	return actor, nil
}

func (s *opportunityService) buildResponse(ctx context.Context, opportunity *models.Opportunity, actor *models.User) *OpportunityResponse {
	resp := &OpportunityResponse{
		Opportunity: opportunity,
		CanEdit:     s.policy.CanManageOpportunity(actor, opportunity),
	}

	if saved, err := s.repo.Opportunity().IsSavedBy(ctx, nil, opportunity.ID, actor.ID); err == nil {
		resp.IsSaved = saved
	}
	if applied, err := s.repo.Application().ExistsByUserAndOpportunity(ctx, nil, actor.ID, opportunity.ID); err == nil {
		resp.HasApplied = applied
	}

	return resp
}

func (s *opportunityService) buildListResponse(ctx context.Context, opportunities []*models.Opportunity, total int64, limit, offset int, actor *models.User) *OpportunityListResponse {
	responses := make([]*OpportunityResponse, 0, len(opportunities))
	for _, opportunity := range opportunities {
		responses = append(responses, s.buildResponse(ctx, opportunity, actor))
	}

	if limit <= 0 {
		limit = 20
	}
	return &OpportunityListResponse{
		Opportunities: responses,
		Total:         total,
		Page:          offset/limit + 1,
		Size:          limit,
	}
}

func toJSONList(values []string) datatypes.JSON {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(data)
}
