package models

import "time"

// EnrollmentStatus represents the lifecycle of an enrollment. Any status may
// follow any other.
type EnrollmentStatus string

// Possible enrollment statuses.
const (
	EnrollmentStatusActive     EnrollmentStatus = "active"
	EnrollmentStatusCompleted  EnrollmentStatus = "completed"
	EnrollmentStatusTerminated EnrollmentStatus = "terminated"
)

// Enrollment links one client to one program.
type Enrollment struct {
	ID             string           `db:"id" json:"id"`
	ClientID       string           `db:"client_id" json:"client"`
	ProgramID      string           `db:"program_id" json:"program"`
	EnrollmentDate Date             `db:"enrollment_date" json:"enrollment_date"`
	Status         EnrollmentStatus `db:"status" json:"status"`
	Notes          string           `db:"notes" json:"notes"`
	CreatedAt      time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time        `db:"updated_at" json:"updated_at"`
}

// EnrollmentDetail enriches Enrollment with client and program names.
type EnrollmentDetail struct {
	Enrollment
	ClientName  string `db:"client_name" json:"client_name"`
	ProgramName string `db:"program_name" json:"program_name"`
}

// EnrollmentFilter provides filters for listing enrollments.
type EnrollmentFilter struct {
	ClientID  string
	ProgramID string
	Ordering  string
	Page      int
	PageSize  int
}

// EnrollmentRequest is the full create/replace payload. Status and notes
// are optional: a create defaults them, a replace keeps the stored values.
type EnrollmentRequest struct {
	ClientID       string           `json:"client" validate:"required,uuid"`
	ProgramID      string           `json:"program" validate:"required,uuid"`
	EnrollmentDate Date             `json:"enrollment_date" validate:"required"`
	Status         EnrollmentStatus `json:"status" validate:"omitempty,oneof=active completed terminated"`
	Notes          *string          `json:"notes"`
}

// EnrollmentPatch carries the fields present in a partial update.
type EnrollmentPatch struct {
	ClientID       *string           `json:"client"`
	ProgramID      *string           `json:"program"`
	EnrollmentDate *Date             `json:"enrollment_date"`
	Status         *EnrollmentStatus `json:"status"`
	Notes          *string           `json:"notes"`
}

// Apply overlays the present fields on base.
func (p EnrollmentPatch) Apply(base EnrollmentRequest) EnrollmentRequest {
	if p.ClientID != nil {
		base.ClientID = *p.ClientID
	}
	if p.ProgramID != nil {
		base.ProgramID = *p.ProgramID
	}
	if p.EnrollmentDate != nil {
		base.EnrollmentDate = *p.EnrollmentDate
	}
	if p.Status != nil {
		base.Status = *p.Status
	}
	if p.Notes != nil {
		base.Notes = p.Notes
	}
	return base
}

// Request returns the payload describing an existing enrollment.
func (e *Enrollment) Request() EnrollmentRequest {
	notes := e.Notes
	return EnrollmentRequest{
		ClientID:       e.ClientID,
		ProgramID:      e.ProgramID,
		EnrollmentDate: e.EnrollmentDate,
		Status:         e.Status,
		Notes:          &notes,
	}
}
