package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/pkg/validation"
)

type programRepository interface {
	List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error)
	FindByID(ctx context.Context, id string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	Update(ctx context.Context, program *models.Program) error
	Delete(ctx context.Context, id string) error
}

// ProgramService handles program use-cases.
type ProgramService struct {
	repo      programRepository
	profiles  profileInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs the program service. profiles may be nil.
func NewProgramService(repo programRepository, profiles profileInvalidator, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgramService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// List returns a page of programs and the total count.
func (s *ProgramService) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	programs, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, internal(err, "failed to list programs")
	}
	return programs, total, nil
}

// Get returns a program by id.
func (s *ProgramService) Get(ctx context.Context, id string) (*models.Program, error) {
	program, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, "program not found", "failed to load program")
	}
	return program, nil
}

// Create registers a new program.
func (s *ProgramService) Create(ctx context.Context, req models.ProgramRequest) (*models.Program, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid program payload")
	}
	program := &models.Program{Name: req.Name, Description: req.Description}
	if err := s.repo.Create(ctx, program); err != nil {
		return nil, internal(err, "failed to create program")
	}
	s.logger.Info("program created", zap.String("program_id", program.ID))
	return program, nil
}

// Update replaces every field of a program.
func (s *ProgramService) Update(ctx context.Context, id string, req models.ProgramRequest) (*models.Program, error) {
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, program, req)
}

// Patch updates only the fields present in patch and validates the result
// with the same rules as Update.
func (s *ProgramService) Patch(ctx context.Context, id string, patch models.ProgramPatch) (*models.Program, error) {
	program, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, program, patch.Apply(program.Request()))
}

func (s *ProgramService) save(ctx context.Context, program *models.Program, req models.ProgramRequest) (*models.Program, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validation.Error(err, "invalid program payload")
	}
	program.Name = req.Name
	program.Description = req.Description
	if err := s.repo.Update(ctx, program); err != nil {
		return nil, notFoundOr(err, "program not found", "failed to update program")
	}
	if s.profiles != nil {
		s.profiles.InvalidateAll(ctx)
	}
	return program, nil
}

// Delete removes a program and its enrollments.
func (s *ProgramService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "program not found", "failed to delete program")
	}
	if s.profiles != nil {
		s.profiles.InvalidateAll(ctx)
	}
	s.logger.Info("program deleted", zap.String("program_id", id))
	return nil
}
