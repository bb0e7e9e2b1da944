// Package models defines uploaded documents and their extracted data.
package models

import (
	"time"

	"hsaonboard/pkg/domain"
)

// Type distinguishes the two accepted document kinds.
type Type string

const (
	TypeGovernmentID  Type = "government_id"
	TypeEmployerProof Type = "employer_proof"
)

// Valid reports whether t is a known document type.
func (t Type) Valid() bool {
	return t == TypeGovernmentID || t == TypeEmployerProof
}

// ProcessingStatus tracks extraction progress.
type ProcessingStatus string

const (
	StatusPending    ProcessingStatus = "pending"
	StatusProcessing ProcessingStatus = "processing"
	StatusCompleted  ProcessingStatus = "completed"
	StatusFailed     ProcessingStatus = "failed"
)

// GovernmentIDData is the extracted content of a government ID with
// per-field confidence scores from the vision model.
type GovernmentIDData struct {
	DocumentType     string             `json:"document_type"`
	IDNumber         string             `json:"id_number"`
	FullName         string             `json:"full_name"`
	DateOfBirth      string             `json:"date_of_birth"`
	Street           string             `json:"street"`
	City             string             `json:"city"`
	State            string             `json:"state"`
	Zip              string             `json:"zip"`
	IssueDate        string             `json:"issue_date"`
	ExpiryDate       string             `json:"expiry_date"`
	IssuingAuthority string             `json:"issuing_authority"`
	Confidences      map[string]float64 `json:"confidences"`
}

// EmployerProofData is the extracted content of an employer eligibility
// document.
type EmployerProofData struct {
	EmployeeName    string             `json:"employee_name"`
	EmployerName    string             `json:"employer_name"`
	EmployerAddress string             `json:"employer_address"`
	DocumentDate    string             `json:"document_date"`
	PlanType        string             `json:"plan_type"`
	Confidences     map[string]float64 `json:"confidences"`
}

// Document is one uploaded file and its extraction state. File bytes are not
// retained after extraction; only metadata and extracted fields persist.
type Document struct {
	ID            domain.DocumentID
	ApplicationID domain.ApplicationID
	Type          Type
	FileName      string
	ContentType   string
	SizeBytes     int64
	Status        ProcessingStatus
	GovernmentID  *GovernmentIDData
	EmployerProof *EmployerProofData
	ErrorMessage  string
	// Superseded marks documents replaced by a newer upload of the same
	// type. Decision evaluation only consults the latest.
	Superseded bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
