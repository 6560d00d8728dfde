package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/health-program-api/internal/models"
	appErrors "github.com/noah-isme/health-program-api/pkg/errors"
)

type mockDashboardRepo struct {
	counts      []models.StatusCount
	totalsErr   error
	recentLimit int
}

func (m *mockDashboardRepo) Totals(ctx context.Context) (int, int, int, error) {
	return 4, 2, 3, m.totalsErr
}

func (m *mockDashboardRepo) EnrollmentStatusCounts(ctx context.Context) ([]models.StatusCount, error) {
	return m.counts, nil
}

func (m *mockDashboardRepo) RecentClients(ctx context.Context, limit int) ([]models.Client, error) {
	m.recentLimit = limit
	return []models.Client{{ID: "c1"}}, nil
}

func (m *mockDashboardRepo) RecentPrograms(ctx context.Context, limit int) ([]models.Program, error) {
	return []models.Program{{ID: "p1"}}, nil
}

func TestDashboardStats(t *testing.T) {
	repo := &mockDashboardRepo{counts: []models.StatusCount{{Status: "active", Total: 2}, {Status: "completed", Total: 1}}}
	svc := NewDashboardService(repo, nil)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.TotalClients)
	assert.Equal(t, 2, stats.TotalPrograms)
	assert.Equal(t, 3, stats.TotalEnrollments)
	assert.Equal(t, map[string]int{"active": 2, "completed": 1, "terminated": 0}, stats.EnrollmentsByState)
	assert.Len(t, stats.RecentClients, 1)
	assert.Len(t, stats.RecentPrograms, 1)
	assert.Equal(t, recentItemsLimit, repo.recentLimit)
	assert.Equal(t, fixed, stats.GeneratedAt)
}

func TestDashboardStatsFailure(t *testing.T) {
	svc := NewDashboardService(&mockDashboardRepo{totalsErr: errors.New("boom")}, nil)
	_, err := svc.Stats(context.Background())
	assert.Equal(t, http.StatusInternalServerError, appErrors.FromError(err).Status)
}
