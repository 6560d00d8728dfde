package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientPatchApplyKeepsAbsentFields(t *testing.T) {
	stored := Client{FirstName: "Bob", LastName: "Lee", Gender: GenderMale, ContactNumber: "5551234567", Email: "bob@example.com", Address: "x", DateOfBirth: NewDate(2000, 1, 1)}
	phone := "123"
	merged := ClientPatch{ContactNumber: &phone}.Apply(stored.Request())

	assert.Equal(t, "123", merged.ContactNumber)
	assert.Equal(t, "Bob", merged.FirstName)
	assert.Equal(t, "2000-01-01", merged.DateOfBirth.String())
}

func TestClientRequestNormalize(t *testing.T) {
	req := ClientRequest{FirstName: " Bob ", Gender: "female", Email: " bob@example.com"}.Normalize()
	assert.Equal(t, "Bob", req.FirstName)
	assert.Equal(t, GenderFemale, req.Gender)
	assert.Equal(t, "bob@example.com", req.Email)
}

func TestEnrollmentPatchApply(t *testing.T) {
	stored := Enrollment{ClientID: "c1", ProgramID: "p1", EnrollmentDate: NewDate(2024, 1, 1), Status: EnrollmentStatusActive, Notes: "first"}
	status := EnrollmentStatusCompleted
	merged := EnrollmentPatch{Status: &status}.Apply(stored.Request())

	assert.Equal(t, EnrollmentStatusCompleted, merged.Status)
	assert.Equal(t, "c1", merged.ClientID)
	if assert.NotNil(t, merged.Notes) {
		assert.Equal(t, "first", *merged.Notes)
	}
}

func TestProgramPatchApply(t *testing.T) {
	name := "HIV Program"
	merged := ProgramPatch{Name: &name}.Apply(ProgramRequest{Name: "TB Program", Description: "d"})
	assert.Equal(t, ProgramRequest{Name: "HIV Program", Description: "d"}, merged)
}
