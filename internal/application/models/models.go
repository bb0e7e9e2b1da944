// Package models defines the application aggregate for HSA onboarding.
package models

import (
	"time"

	"hsaonboard/pkg/domain"
)

// Status is the application lifecycle state. A new application starts at
// StatusPending; decision evaluation moves it to a terminal state.
type Status string

const (
	StatusPending      Status = "pending"
	StatusProcessing   Status = "processing"
	StatusApproved     Status = "approved"
	StatusRejected     Status = "rejected"
	StatusManualReview Status = "manual_review"
)

// Valid reports whether s is a known status value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusApproved, StatusRejected, StatusManualReview:
		return true
	}
	return false
}

// Mutable reports whether an application in this status may still be edited
// or deleted by the applicant.
func (s Status) Mutable() bool {
	return s == StatusPending
}

// Address is the applicant's mailing address, compared sub-field by
// sub-field against extracted document addresses.
type Address struct {
	Street string
	City   string
	State  string
	Zip    string
}

// Application is the applicant-entered identity record. Within one decision
// cycle it is treated as immutable input.
type Application struct {
	ID           domain.ApplicationID
	FullName     string
	DateOfBirth  string // YYYY-MM-DD, validated at the boundary
	Address      Address
	SSN          domain.SSN
	EmployerName string
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
