package projects

import (
	"errors"
	"time"
)

// Status is the project lifecycle status.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusCompleted  Status = "Completed"
	StatusOnHold     Status = "On Hold"
)

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOnHold:
		return true
	}
	return false
}

// Project is a construction project owning purchase and change orders.
type Project struct {
	UUID            string    `json:"uuid"`
	CorporationUUID string    `json:"corporation_uuid"`
	Name            string    `json:"name"`
	Status          Status    `json:"status"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
	Addresses       []Address `json:"addresses,omitempty"`
}

// Address is a project site or billing address.
type Address struct {
	UUID        string `json:"uuid"`
	ProjectUUID string `json:"project_uuid"`
	Kind        string `json:"kind"`
	Line1       string `json:"line1"`
	Line2       string `json:"line2,omitempty"`
	City        string `json:"city"`
	State       string `json:"state"`
	PostalCode  string `json:"postal_code"`
}

var (
	// ErrNotFound indicates the project is missing.
	ErrNotFound = errors.New("projects: not found")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("projects: invalid input")
	// ErrInvalidStatus occurs when an unknown status value is supplied.
	ErrInvalidStatus = errors.New("projects: invalid status")
)
