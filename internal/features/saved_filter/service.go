package saved_filter

import (
	"context"
	"fmt"
	"strings"

	"go-agrofleet/internal/features/filter_session"
	"go-agrofleet/internal/features/inventory"
	ft "go-agrofleet/pkg/filtertoken"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type SavedFilterService interface {
	CreateFilter(ctx context.Context, userID string, req CreateRequest) (*SavedFilter, error)
	GetFilter(ctx context.Context, userID, id string) (*SavedFilter, error)
	UpdateFilter(ctx context.Context, userID, id string, req UpdateRequest) (*SavedFilter, error)
	DeleteFilter(ctx context.Context, userID, id string) error
	GetUserFilters(ctx context.Context, userID string, resource inventory.Resource) ([]SavedFilter, error)
	GetPublicFilters(ctx context.Context, resource inventory.Resource) ([]SavedFilter, error)
	ApplyFilter(ctx context.Context, userID, id, sessionID string) (*filter_session.Snapshot, error)
}

type SavedFilterServiceImpl struct {
	FilterRepo SavedFilterRepository
	Sessions   filter_session.FilterSessionService
	Logger     *zap.Logger
}

func NewSavedFilterService(filterRepo SavedFilterRepository, sessions filter_session.FilterSessionService, logger *zap.Logger) SavedFilterService {
	return &SavedFilterServiceImpl{
		FilterRepo: filterRepo,
		Sessions:   sessions,
		Logger:     logger,
	}
}

func (s *SavedFilterServiceImpl) CreateFilter(ctx context.Context, userID string, req CreateRequest) (*SavedFilter, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	resource, criteria := req.Resource, req.Criteria
	if req.SessionID != "" {
		r, tokens, err := s.Sessions.Tokens(ctx, userID, req.SessionID)
		if err != nil {
			return nil, err
		}
		resource, criteria = r, ft.Criteria(tokens)
	}
	if len(criteria) == 0 {
		return nil, ErrEmptyFilter
	}
	if err := validate(resource, criteria); err != nil {
		return nil, err
	}

	if req.IsDefault {
		if err := s.FilterRepo.ClearDefault(ctx, userID, resource); err != nil {
			return nil, err
		}
	}

	filter := &SavedFilter{
		ID:          uuid.NewString(),
		Name:        name,
		Description: req.Description,
		Resource:    resource,
		UserID:      userID,
		IsPublic:    req.IsPublic,
		IsDefault:   req.IsDefault,
		Criteria:    criteria,
	}
	if err := s.FilterRepo.Create(ctx, filter); err != nil {
		return nil, err
	}

	s.Logger.Info("filter saved",
		zap.String("user_id", userID),
		zap.String("resource", string(resource)),
		zap.Int("criteria", len(criteria)),
	)
	filter.fillLabels()
	return filter, nil
}

// GetFilter returns a filter owned by the user or shared publicly
func (s *SavedFilterServiceImpl) GetFilter(ctx context.Context, userID, id string) (*SavedFilter, error) {
	filter, err := s.FilterRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if filter.UserID != userID && !filter.IsPublic {
		return nil, ErrForbidden
	}
	filter.fillLabels()
	return filter, nil
}

func (s *SavedFilterServiceImpl) UpdateFilter(ctx context.Context, userID, id string, req UpdateRequest) (*SavedFilter, error) {
	filter, err := s.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, ErrNameRequired
		}
		filter.Name = name
	}
	if req.Description != nil {
		filter.Description = *req.Description
	}
	if req.IsPublic != nil {
		filter.IsPublic = *req.IsPublic
	}
	if req.IsDefault != nil {
		if *req.IsDefault && !filter.IsDefault {
			if err := s.FilterRepo.ClearDefault(ctx, userID, filter.Resource); err != nil {
				return nil, err
			}
		}
		filter.IsDefault = *req.IsDefault
	}

	if err := s.FilterRepo.Update(ctx, filter); err != nil {
		return nil, err
	}
	filter.fillLabels()
	return filter, nil
}

func (s *SavedFilterServiceImpl) DeleteFilter(ctx context.Context, userID, id string) error {
	if _, err := s.owned(ctx, userID, id); err != nil {
		return err
	}
	return s.FilterRepo.Delete(ctx, id)
}

func (s *SavedFilterServiceImpl) GetUserFilters(ctx context.Context, userID string, resource inventory.Resource) ([]SavedFilter, error) {
	filters, err := s.FilterRepo.FindByUser(ctx, userID, resource)
	if err != nil {
		return nil, err
	}
	for i := range filters {
		filters[i].fillLabels()
	}
	return filters, nil
}

func (s *SavedFilterServiceImpl) GetPublicFilters(ctx context.Context, resource inventory.Resource) ([]SavedFilter, error) {
	filters, err := s.FilterRepo.FindPublic(ctx, resource)
	if err != nil {
		return nil, err
	}
	for i := range filters {
		filters[i].fillLabels()
	}
	return filters, nil
}

// ApplyFilter replaces the active tokens of a session with the saved ones
func (s *SavedFilterServiceImpl) ApplyFilter(ctx context.Context, userID, id, sessionID string) (*filter_session.Snapshot, error) {
	filter, err := s.GetFilter(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	resource, _, err := s.Sessions.Tokens(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	if resource != filter.Resource {
		return nil, fmt.Errorf("%w: %s, session is on %s", ErrResourceMismatch, filter.Resource, resource)
	}

	return s.Sessions.Restore(ctx, userID, sessionID, filter.Criteria)
}

func (s *SavedFilterServiceImpl) owned(ctx context.Context, userID, id string) (*SavedFilter, error) {
	filter, err := s.FilterRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if filter.UserID != userID {
		return nil, ErrForbidden
	}
	return filter, nil
}

func validate(resource inventory.Resource, criteria []ft.Criterion) error {
	schema, err := inventory.SchemaFor(resource)
	if err != nil {
		return err
	}
	for _, c := range criteria {
		if err := schema.CheckCriterion(c); err != nil {
			return err
		}
	}
	return nil
}
