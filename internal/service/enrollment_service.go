package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/internal/repository"
	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
	"github.com/noah-isme/health-program-api/pkg/validation"
)

const duplicateEnrollmentMessage = "The fields client, program must make a unique set."

type enrollmentRepository interface {
	List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string, scope models.EnrollmentFilter) (*models.EnrollmentDetail, error)
	Create(ctx context.Context, enrollment *models.Enrollment) error
	Update(ctx context.Context, enrollment *models.Enrollment) error
	Delete(ctx context.Context, id string) error
}

type enrollmentClientLookup interface {
	FindByID(ctx context.Context, id string) (*models.Client, error)
}

type enrollmentProgramLookup interface {
	FindByID(ctx context.Context, id string) (*models.Program, error)
}

// EnrollmentService handles enrollment use-cases.
type EnrollmentService struct {
	repo      enrollmentRepository
	clients   enrollmentClientLookup
	programs  enrollmentProgramLookup
	profiles  profileInvalidator
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService constructs the enrollment service. profiles may be nil.
func NewEnrollmentService(repo enrollmentRepository, clients enrollmentClientLookup, programs enrollmentProgramLookup, profiles profileInvalidator, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validation.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{
		repo:      repo,
		clients:   clients,
		programs:  programs,
		profiles:  profiles,
		validator: validate,
		logger:    logger,
	}
}

// List returns enrollments matching the client and program filters.
func (s *EnrollmentService) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, internal(err, "failed to list enrollments")
	}
	return items, total, nil
}

// Get returns an enrollment that also satisfies the scope filter.
func (s *EnrollmentService) Get(ctx context.Context, id string, scope models.EnrollmentFilter) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindByID(ctx, id, scope)
	if err != nil {
		return nil, notFoundOr(err, "enrollment not found", "failed to load enrollment")
	}
	return detail, nil
}

// Create enrolls a client in a program. Status defaults to active.
func (s *EnrollmentService) Create(ctx context.Context, req models.EnrollmentRequest) (*models.EnrollmentDetail, error) {
	if req.Status == "" {
		req.Status = models.EnrollmentStatusActive
	}
	if req.Notes == nil {
		empty := ""
		req.Notes = &empty
	}
	enrollment := &models.Enrollment{}
	if err := s.prepare(ctx, enrollment, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, s.writeError(err, "failed to create enrollment")
	}
	s.invalidate(ctx, enrollment.ClientID)
	return s.reload(ctx, enrollment)
}

// Update replaces an enrollment inside the scope. Omitted status and notes
// keep their stored values.
func (s *EnrollmentService) Update(ctx context.Context, id string, scope models.EnrollmentFilter, req models.EnrollmentRequest) (*models.EnrollmentDetail, error) {
	detail, err := s.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, detail.Enrollment, req)
}

// Patch updates only the fields present in patch.
func (s *EnrollmentService) Patch(ctx context.Context, id string, scope models.EnrollmentFilter, patch models.EnrollmentPatch) (*models.EnrollmentDetail, error) {
	detail, err := s.Get(ctx, id, scope)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, detail.Enrollment, patch.Apply(detail.Request()))
}

// Delete removes an enrollment inside the scope.
func (s *EnrollmentService) Delete(ctx context.Context, id string, scope models.EnrollmentFilter) error {
	detail, err := s.Get(ctx, id, scope)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return notFoundOr(err, "enrollment not found", "failed to delete enrollment")
	}
	s.invalidate(ctx, detail.ClientID)
	return nil
}

func (s *EnrollmentService) save(ctx context.Context, current models.Enrollment, req models.EnrollmentRequest) (*models.EnrollmentDetail, error) {
	previousClient := current.ClientID
	if req.Status == "" {
		req.Status = current.Status
	}
	if req.Notes == nil {
		notes := current.Notes
		req.Notes = &notes
	}
	enrollment := current
	if err := s.prepare(ctx, &enrollment, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, &enrollment); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return nil, s.writeError(err, "failed to update enrollment")
	}
	s.invalidate(ctx, previousClient, enrollment.ClientID)
	return s.reload(ctx, &enrollment)
}

// prepare validates req, checks both references exist and copies the values
// onto enrollment.
func (s *EnrollmentService) prepare(ctx context.Context, enrollment *models.Enrollment, req models.EnrollmentRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return validation.Error(err, "invalid enrollment payload")
	}

	fields := make(map[string][]string)
	if _, err := s.clients.FindByID(ctx, req.ClientID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return internal(err, "failed to load client")
		}
		fields["client"] = []string{missingReference(req.ClientID)}
	}
	if _, err := s.programs.FindByID(ctx, req.ProgramID); err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return internal(err, "failed to load program")
		}
		fields["program"] = []string{missingReference(req.ProgramID)}
	}
	if len(fields) > 0 {
		return appErrors.Invalid("invalid enrollment payload", fields)
	}

	enrollment.ClientID = req.ClientID
	enrollment.ProgramID = req.ProgramID
	enrollment.EnrollmentDate = req.EnrollmentDate
	enrollment.Status = req.Status
	enrollment.Notes = *req.Notes
	return nil
}

// writeError translates constraint violations raised on insert or update.
func (s *EnrollmentService) writeError(err error, message string) error {
	switch {
	case errors.Is(err, repository.ErrDuplicate):
		return appErrors.Invalid("invalid enrollment payload", map[string][]string{
			validation.NonFieldErrors: {duplicateEnrollmentMessage},
		})
	case errors.Is(err, repository.ErrForeignKey):
		return appErrors.Invalid("invalid enrollment payload", map[string][]string{
			validation.NonFieldErrors: {"Referenced client or program no longer exists."},
		})
	default:
		return internal(err, message)
	}
}

func (s *EnrollmentService) reload(ctx context.Context, enrollment *models.Enrollment) (*models.EnrollmentDetail, error) {
	detail, err := s.repo.FindByID(ctx, enrollment.ID, models.EnrollmentFilter{})
	if err != nil {
		s.logger.Warn("failed to reload enrollment", zap.String("enrollment_id", enrollment.ID), zap.Error(err))
		return &models.EnrollmentDetail{Enrollment: *enrollment}, nil
	}
	return detail, nil
}

func (s *EnrollmentService) invalidate(ctx context.Context, clientIDs ...string) {
	if s.profiles != nil {
		s.profiles.Invalidate(ctx, clientIDs...)
	}
}

func missingReference(id string) string {
	return fmt.Sprintf("Invalid pk %q - object does not exist.", id)
}
