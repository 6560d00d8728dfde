package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/internal/repository"
)

type mockProgramRepo struct {
	programs map[string]models.Program
	seq      int
	err      error
}

func newMockProgramRepo(programs ...models.Program) *mockProgramRepo {
	m := &mockProgramRepo{programs: make(map[string]models.Program)}
	for _, p := range programs {
		m.programs[p.ID] = p
	}
	return m
}

func (m *mockProgramRepo) List(ctx context.Context, filter models.ProgramFilter) ([]models.Program, int, error) {
	if m.err != nil {
		return nil, 0, m.err
	}
	out := make([]models.Program, 0, len(m.programs))
	for _, p := range m.programs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockProgramRepo) FindByID(ctx context.Context, id string) (*models.Program, error) {
	if m.err != nil {
		return nil, m.err
	}
	p, ok := m.programs[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *mockProgramRepo) Create(ctx context.Context, program *models.Program) error {
	if m.err != nil {
		return m.err
	}
	m.seq++
	program.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", m.seq)
	program.CreatedAt = time.Now()
	m.programs[program.ID] = *program
	return nil
}

func (m *mockProgramRepo) Update(ctx context.Context, program *models.Program) error {
	if _, ok := m.programs[program.ID]; !ok {
		return sql.ErrNoRows
	}
	m.programs[program.ID] = *program
	return nil
}

func (m *mockProgramRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.programs[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.programs, id)
	return nil
}

type mockClientRepo struct {
	clients    map[string]models.Client
	lastFilter models.ClientFilter
	seq        int
}

func newMockClientRepo(clients ...models.Client) *mockClientRepo {
	m := &mockClientRepo{clients: make(map[string]models.Client)}
	for _, c := range clients {
		m.clients[c.ID] = c
	}
	return m
}

func (m *mockClientRepo) List(ctx context.Context, filter models.ClientFilter) ([]models.Client, int, error) {
	m.lastFilter = filter
	out := make([]models.Client, 0, len(m.clients))
	for _, c := range m.clients {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if filter.PageSize > 0 {
		start := (filter.Page - 1) * filter.PageSize
		if start > len(out) {
			start = len(out)
		}
		end := start + filter.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (m *mockClientRepo) FindByID(ctx context.Context, id string) (*models.Client, error) {
	c, ok := m.clients[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &c, nil
}

func (m *mockClientRepo) Create(ctx context.Context, client *models.Client) error {
	m.seq++
	client.ID = fmt.Sprintf("10000000-0000-0000-0000-%012d", m.seq)
	m.clients[client.ID] = *client
	return nil
}

func (m *mockClientRepo) Update(ctx context.Context, client *models.Client) error {
	if _, ok := m.clients[client.ID]; !ok {
		return sql.ErrNoRows
	}
	m.clients[client.ID] = *client
	return nil
}

func (m *mockClientRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.clients[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.clients, id)
	return nil
}

type mockEnrollmentRepo struct {
	enrollments map[string]models.Enrollment
	seq         int
	lastScope   models.EnrollmentFilter
}

func newMockEnrollmentRepo() *mockEnrollmentRepo {
	return &mockEnrollmentRepo{enrollments: make(map[string]models.Enrollment)}
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.EnrollmentFilter) ([]models.EnrollmentDetail, int, error) {
	out := make([]models.EnrollmentDetail, 0)
	for _, e := range m.enrollments {
		if inScope(e, filter) {
			out = append(out, models.EnrollmentDetail{Enrollment: e})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string, scope models.EnrollmentFilter) (*models.EnrollmentDetail, error) {
	m.lastScope = scope
	e, ok := m.enrollments[id]
	if !ok || !inScope(e, scope) {
		return nil, sql.ErrNoRows
	}
	return &models.EnrollmentDetail{Enrollment: e, ProgramName: "program " + e.ProgramID}, nil
}

func (m *mockEnrollmentRepo) ListByClient(ctx context.Context, clientID string) ([]models.ProfileEnrollment, error) {
	out := make([]models.ProfileEnrollment, 0)
	for _, e := range m.enrollments {
		if e.ClientID == clientID {
			out = append(out, models.ProfileEnrollment{ID: e.ID, ProgramID: e.ProgramID, EnrollmentDate: e.EnrollmentDate, Status: e.Status, Notes: e.Notes})
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) duplicate(enrollment *models.Enrollment) bool {
	for id, e := range m.enrollments {
		if id != enrollment.ID && e.ClientID == enrollment.ClientID && e.ProgramID == enrollment.ProgramID {
			return true
		}
	}
	return false
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.Enrollment) error {
	if m.duplicate(enrollment) {
		return fmt.Errorf("create enrollment: %w", &repository.ConstraintError{Kind: repository.ErrDuplicate, Constraint: "enrollments_client_program_key"})
	}
	m.seq++
	enrollment.ID = fmt.Sprintf("20000000-0000-0000-0000-%012d", m.seq)
	m.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (m *mockEnrollmentRepo) Update(ctx context.Context, enrollment *models.Enrollment) error {
	if _, ok := m.enrollments[enrollment.ID]; !ok {
		return sql.ErrNoRows
	}
	if m.duplicate(enrollment) {
		return fmt.Errorf("update enrollment: %w", &repository.ConstraintError{Kind: repository.ErrDuplicate})
	}
	m.enrollments[enrollment.ID] = *enrollment
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id string) error {
	if _, ok := m.enrollments[id]; !ok {
		return sql.ErrNoRows
	}
	delete(m.enrollments, id)
	return nil
}

func inScope(e models.Enrollment, scope models.EnrollmentFilter) bool {
	return (scope.ClientID == "" || e.ClientID == scope.ClientID) &&
		(scope.ProgramID == "" || e.ProgramID == scope.ProgramID)
}

type recordingInvalidator struct {
	clients []string
	all     int
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, clientIDs ...string) {
	r.clients = append(r.clients, clientIDs...)
}

func (r *recordingInvalidator) InvalidateAll(ctx context.Context) {
	r.all++
}
