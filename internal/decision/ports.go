package decision

import (
	"context"

	"hsaonboard/pkg/domain"
)

// ApplicantSource supplies applicant-entered data for evaluation.
type ApplicantSource interface {
	GetApplicant(ctx context.Context, id domain.ApplicationID) (*Applicant, error)
	SetApplicationStatus(ctx context.Context, id domain.ApplicationID, outcome Outcome) error
}

// DocumentSource supplies the latest extracted documents for an application.
// A missing or failed extraction is reported as nil or with ProcessingError
// set, not as an error; the engine's missing-document rule handles both.
type DocumentSource interface {
	LatestIdentityDocument(ctx context.Context, id domain.ApplicationID) (*IdentityDocument, error)
	LatestEmployerDocument(ctx context.Context, id domain.ApplicationID) (*EmployerDocument, error)
}

// Store persists decision records.
type Store interface {
	Save(ctx context.Context, record *Record) error
	LatestByApplication(ctx context.Context, id domain.ApplicationID) (*Record, error)
	ListByApplication(ctx context.Context, id domain.ApplicationID) ([]*Record, error)
}
