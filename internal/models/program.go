package models

import "time"

// Program is a named health initiative clients can be enrolled in.
type Program struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// ProgramFilter controls listing of programs.
type ProgramFilter struct {
	Ordering string
	Page     int
	PageSize int
}

// ProgramRequest is the full create/replace payload.
type ProgramRequest struct {
	Name        string `json:"name" validate:"required,max=100"`
	Description string `json:"description" validate:"required"`
}

// ProgramPatch carries the fields present in a partial update.
type ProgramPatch struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

// Apply overlays the present fields on base.
func (p ProgramPatch) Apply(base ProgramRequest) ProgramRequest {
	if p.Name != nil {
		base.Name = *p.Name
	}
	if p.Description != nil {
		base.Description = *p.Description
	}
	return base
}

// Request returns the payload describing an existing program.
func (p *Program) Request() ProgramRequest {
	return ProgramRequest{Name: p.Name, Description: p.Description}
}
