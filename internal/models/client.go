package models

import (
	"strings"
	"time"
)

// Gender is stored as a single letter.
type Gender string

// Supported genders.
const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "O"
)

// NormalizeGender maps long-form names onto the stored code. Unknown values
// are returned unchanged so validation can reject them.
func NormalizeGender(raw string) Gender {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male":
		return GenderMale
	case "f", "female":
		return GenderFemale
	case "o", "other":
		return GenderOther
	default:
		return Gender(raw)
	}
}

// Client is a person tracked by the system.
type Client struct {
	ID            string    `db:"id" json:"id"`
	FirstName     string    `db:"first_name" json:"first_name"`
	LastName      string    `db:"last_name" json:"last_name"`
	DateOfBirth   Date      `db:"date_of_birth" json:"date_of_birth"`
	Gender        Gender    `db:"gender" json:"gender"`
	ContactNumber string    `db:"contact_number" json:"contact_number"`
	Email         string    `db:"email" json:"email"`
	Address       string    `db:"address" json:"address"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// FullName joins first and last name.
func (c *Client) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// ClientFilter controls listing of clients.
type ClientFilter struct {
	Search   string
	Ordering string
	Page     int
	PageSize int
}

// ProfileEnrollment is an enrollment annotated with its program.
type ProfileEnrollment struct {
	ID                 string           `db:"id" json:"id"`
	ProgramID          string           `db:"program_id" json:"program_id"`
	ProgramName        string           `db:"program_name" json:"program_name"`
	ProgramDescription string           `db:"program_description" json:"program_description"`
	EnrollmentDate     Date             `db:"enrollment_date" json:"enrollment_date"`
	Status             EnrollmentStatus `db:"status" json:"status"`
	Notes              string           `db:"notes" json:"notes"`
}

// ClientProfile composes a client with all of its enrollments.
type ClientProfile struct {
	Client
	Enrollments []ProfileEnrollment `json:"enrollments"`
}

// ClientRequest is the full create/replace payload.
type ClientRequest struct {
	FirstName     string `json:"first_name" validate:"required,max=100"`
	LastName      string `json:"last_name" validate:"required,max=100"`
	DateOfBirth   Date   `json:"date_of_birth" validate:"required,birthdate"`
	Gender        Gender `json:"gender" validate:"required,oneof=M F O"`
	ContactNumber string `json:"contact_number" validate:"required,phone"`
	Email         string `json:"email" validate:"required,email,max=254"`
	Address       string `json:"address" validate:"required"`
}

// Normalize trims text fields and maps long-form genders to their code.
func (r ClientRequest) Normalize() ClientRequest {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.ContactNumber = strings.TrimSpace(r.ContactNumber)
	r.Email = strings.TrimSpace(r.Email)
	r.Gender = NormalizeGender(string(r.Gender))
	return r
}

// ClientPatch carries the fields present in a partial update.
type ClientPatch struct {
	FirstName     *string `json:"first_name"`
	LastName      *string `json:"last_name"`
	DateOfBirth   *Date   `json:"date_of_birth"`
	Gender        *Gender `json:"gender"`
	ContactNumber *string `json:"contact_number"`
	Email         *string `json:"email"`
	Address       *string `json:"address"`
}

// Apply overlays the present fields on base.
func (p ClientPatch) Apply(base ClientRequest) ClientRequest {
	if p.FirstName != nil {
		base.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		base.LastName = *p.LastName
	}
	if p.DateOfBirth != nil {
		base.DateOfBirth = *p.DateOfBirth
	}
	if p.Gender != nil {
		base.Gender = *p.Gender
	}
	if p.ContactNumber != nil {
		base.ContactNumber = *p.ContactNumber
	}
	if p.Email != nil {
		base.Email = *p.Email
	}
	if p.Address != nil {
		base.Address = *p.Address
	}
	return base
}

// Request returns the payload describing an existing client.
func (c *Client) Request() ClientRequest {
	return ClientRequest{
		FirstName:     c.FirstName,
		LastName:      c.LastName,
		DateOfBirth:   c.DateOfBirth,
		Gender:        c.Gender,
		ContactNumber: c.ContactNumber,
		Email:         c.Email,
		Address:       c.Address,
	}
}
