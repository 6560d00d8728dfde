package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/health-program-api/internal/models"
	"github.com/noah-isme/health-program-api/pkg/export"
)

func TestExportClientsPagesThroughEverything(t *testing.T) {
	clients := newMockClientRepo()
	for i := 0; i < 150; i++ {
		clients.clients[fmt.Sprintf("c%03d", i)] = models.Client{
			ID:          fmt.Sprintf("c%03d", i),
			FirstName:   "First",
			LastName:    fmt.Sprintf("Last%03d", i),
			DateOfBirth: models.NewDate(1990, 1, 1),
			Gender:      models.GenderOther,
		}
	}
	svc := NewExportService(clients, newMockEnrollmentRepo(), nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 6, 0, 0, 0, 0, time.UTC) }

	result, err := svc.Clients(context.Background(), models.ClientFilter{Search: "last"}, export.FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "clients-20240506.csv", result.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", result.ContentType)
	assert.Equal(t, 150, result.Rows)
	assert.Equal(t, "last", clients.lastFilter.Search)
	assert.Equal(t, exportBatchSize, clients.lastFilter.PageSize)

	records, err := csv.NewReader(bytes.NewReader(result.Data)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 151)
	assert.Equal(t, "ID", records[0][0])
	assert.Equal(t, "c149", records[150][0])
	assert.Equal(t, "1990-01-01", records[1][3])
}

func TestExportEnrollmentsPDF(t *testing.T) {
	enrollments := newMockEnrollmentRepo()
	enrollments.enrollments["e1"] = models.Enrollment{ID: "e1", ClientID: clientAlice, ProgramID: programTB, Status: models.EnrollmentStatusActive}
	svc := NewExportService(newMockClientRepo(), enrollments, nil)

	result, err := svc.Enrollments(context.Background(), models.EnrollmentFilter{ProgramID: programTB}, export.FormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.ContentType)
	assert.Equal(t, 1, result.Rows)
	assert.True(t, bytes.HasPrefix(result.Data, []byte("%PDF")))
}

func TestExportEmptyRoster(t *testing.T) {
	svc := NewExportService(newMockClientRepo(), newMockEnrollmentRepo(), nil)

	result, err := svc.Enrollments(context.Background(), models.EnrollmentFilter{}, export.FormatCSV)
	require.NoError(t, err)
	assert.Zero(t, result.Rows)
	assert.Contains(t, string(result.Data), "Enrollment date")
}
