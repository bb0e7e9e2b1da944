// Package decision implements the document-to-application matching and
// decision engine: normalization, field matching, expiry checking, and the
// rule chain that produces exactly one of Approve, Reject, or ManualReview.
package decision

import (
	"time"

	"hsaonboard/pkg/domain"
)

// Outcome is the terminal result of one evaluation. Exactly one of the three
// values, never empty.
type Outcome string

const (
	OutcomeApprove      Outcome = "approve"
	OutcomeReject       Outcome = "reject"
	OutcomeManualReview Outcome = "manual_review"
)

// Required field names. Every non-Reject outcome reports one FieldMatchResult
// per entry, in this order.
const (
	FieldFullName     = "full_name"
	FieldDateOfBirth  = "date_of_birth"
	FieldAddress      = "address"
	FieldEmployerName = "employer_name"
)

// RequiredFields lists the fields every evaluation must compare.
var RequiredFields = []string{FieldFullName, FieldDateOfBirth, FieldAddress, FieldEmployerName}

// Address is a four-part mailing address compared sub-field by sub-field.
type Address struct {
	Street string `json:"street"`
	City   string `json:"city"`
	State  string `json:"state"`
	Zip    string `json:"zip"`
}

// Applicant is the user-entered identity data an evaluation compares against
// extracted documents. Immutable within one decision cycle. The applicant
// declares no government-ID number; the SSN surfaces only as SubjectIDHash
// for the audit trail.
type Applicant struct {
	ApplicationID domain.ApplicationID
	FullName      string
	DateOfBirth   string
	Address       Address
	EmployerName  string
	SubjectIDHash string
}

// IdentityDocument is the OCR output for a government ID. Fields may be empty
// when extraction was partial; ProcessingError marks a failed extraction.
type IdentityDocument struct {
	DocumentType     string
	IDNumber         string
	FullName         string
	DateOfBirth      string
	Address          Address
	IssueDate        string
	ExpiryDate       string
	IssuingAuthority string
	Confidences      map[string]float64
	ProcessingError  bool
}

// EmployerDocument is the OCR output for proof of HSA eligibility.
type EmployerDocument struct {
	EmployeeName    string
	EmployerName    string
	EmployerAddress string
	DocumentDate    string
	PlanType        string
	Confidences     map[string]float64
	ProcessingError bool
}

// FieldMatchResult is the outcome of comparing one required field.
type FieldMatchResult struct {
	Field          string  `json:"field"`
	ApplicantValue string  `json:"applicant_value"`
	DocumentValue  string  `json:"document_value"`
	IsMatch        bool    `json:"is_match"`
	Confidence     float64 `json:"confidence"`
	Reason         string  `json:"reason,omitempty"`
}

// ExpiryResult is the outcome of checking the ID expiry date against the
// reference date.
type ExpiryResult struct {
	Expired     bool   `json:"expired"`
	DaysOverdue int    `json:"days_overdue"`
	ExpiryDate  string `json:"expiry_date,omitempty"`
}

// DecisionOutcome is the terminal artifact of one evaluation: the outcome,
// a human-readable explanation, the full match trace, the expiry check, and
// a supplemental risk score in [0,1].
type DecisionOutcome struct {
	Outcome     Outcome            `json:"outcome"`
	Explanation string             `json:"explanation"`
	Matches     []FieldMatchResult `json:"matches"`
	Expiry      ExpiryResult       `json:"expiry"`
	RiskScore   float64            `json:"risk_score"`
}

// Record is a persisted evaluation for one application.
type Record struct {
	ID            domain.DecisionID
	ApplicationID domain.ApplicationID
	Outcome       Outcome
	Explanation   string
	Matches       []FieldMatchResult
	Expiry        ExpiryResult
	RiskScore     float64
	ReferenceDate time.Time
	EvaluatedBy   string
	CreatedAt     time.Time
}
