package service

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/pkg/validation"
)

type clientRepository interface {
	List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error)
	FindByID(ctx context.Context, id string) (*models.Client, error)
	Create(ctx context.Context, client *models.Client) error
	Update(ctx context.Context, client *models.Client) error
	Delete(ctx context.Context, id string) error
}

// ClientService handles client use-cases.
type ClientService struct {
	repo      clientRepository
	profiles  profileInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewClientService constructs the client service. profiles may be nil.
func NewClientService(repo clientRepository, profiles profileInvalidator, validate *validator.Validate, logger *zap.Logger) *ClientService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// List returns a page of clients matching the filter and the total count.
func (s *ClientService) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	clients, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, internal(err, "failed to list clients")
	}
	return clients, total, nil
}

// Get returns a client by id.
func (s *ClientService) Get(ctx context.Context, id string) (*models.Client, error) {
	client, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "client not found", "failed to load client")
	}
	return client, nil
}

// Create registers a new client.
func (s *ClientService) Create(ctx context.Context, req models.ClientRequest) (*models.Client, error) {
	req = req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid client payload")
	}
	client := &models.Client{}
	apply(client, req)
	if err := s.repo.Create(ctx, client); err != nil {
		return nil, internal(err, "failed to create client")
	}
	s.logger.Info("client created", zap.String("client_id", client.ID))
	return client, nil
}

// Update replaces every field of a client.
func (s *ClientService) Update(ctx context.Context, id string, req models.ClientRequest) (*models.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, client, req)
}

// Patch updates only the fields present in patch and validates the merged
// client with the same rules as Update.
func (s *ClientService) Patch(ctx context.Context, id string, patch models.ClientPatch) (*models.Client, error) {
	client, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, client, patch.Apply(client.Request()))
}

func (s *ClientService) save(ctx context.Context, client *models.Client, req models.ClientRequest) (*models.Client, error) {
	req = req.Normalize()
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid client payload")
	}
	apply(client, req)
	if err := s.repo.Update(ctx, client); err != nil {
		return nil, notFoundOr(err, "client not found", "failed to update client")
	}
	if s.profiles != nil {
		s.profiles.Invalidate(ctx, client.ID)
	}
	return client, nil
}

// Delete removes a client and its enrollments.
func (s *ClientService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "client not found", "failed to delete client")
	}
	if s.profiles != nil {
		s.profiles.Invalidate(ctx, id)
	}
	s.logger.Info("client deleted", zap.String("client_id", id))
	return nil
}

func apply(client *models.Client, req models.ClientRequest) {
	client.FirstName = req.FirstName
	client.LastName = req.LastName
	client.DateOfBirth = req.DateOfBirth
	client.Gender = req.Gender
	client.ContactNumber = req.ContactNumber
	client.Email = req.Email
	client.Address = req.Address
}
