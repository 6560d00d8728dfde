package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/health-program-api/internal/models"
)

const recentItemsLimit = 5

type dashboardRepository interface {
	Totals(ctx context.Context) (clients, programs, enrollments int, err error)
	EnrollmentStatusCounts(ctx context.Context) ([]models.StatusCount, error)
	RecentClients(ctx context.Context, limit int) ([]models.Client, error)
	RecentPrograms(ctx context.Context, limit int) ([]models.Program, error)
}

// DashboardService builds the landing page summary.
type DashboardService struct {
	repo   dashboardRepository
	logger *zap.Logger
	now    func() time.Time
}

// NewDashboardService constructs the dashboard service.
func NewDashboardService(repo dashboardRepository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{repo: repo, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// Stats returns totals, enrollment counts per status and the newest clients
// and programs.
func (s *DashboardService) Stats(ctx context.Context) (*models.DashboardStats, error) {
	clients, programs, enrollments, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, internal(err, "failed to load dashboard totals")
	}

	counts, err := s.repo.EnrollmentStatusCounts(ctx)
	if err != nil {
		return nil, internal(err, "failed to load enrollment status counts")
	}
	byStatus := map[string]int{
		string(models.EnrollmentStatusActive):     0,
		string(models.EnrollmentStatusCompleted):  0,
		string(models.EnrollmentStatusTerminated): 0,
	}
	for _, count := range counts {
		byStatus[count.Status] = count.Total
	}

	recentClients, err := s.repo.RecentClients(ctx, recentItemsLimit)
	if err != nil {
		return nil, internal(err, "failed to load recent clients")
	}
	recentPrograms, err := s.repo.RecentPrograms(ctx, recentItemsLimit)
	if err != nil {
		return nil, internal(err, "failed to load recent programs")
	}

	return &models.DashboardStats{
		TotalClients:       clients,
		TotalPrograms:      programs,
		TotalEnrollments:   enrollments,
		EnrollmentsByState: byStatus,
		RecentClients:      recentClients,
		RecentPrograms:     recentPrograms,
		GeneratedAt:        s.now(),
	}, nil
}
