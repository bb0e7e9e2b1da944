package domain

import (
	"github.com/google/uuid"

	dErrors "hsaonboard/pkg/domain-errors"
)

// Typed UUID wrappers for entity identifiers. Distinct types prevent an
// application ID from being passed where a document ID is expected; the
// compiler enforces the boundary.
type (
	ApplicationID uuid.UUID
	DocumentID    uuid.UUID
	DecisionID    uuid.UUID
	ExchangeID    uuid.UUID
)

// NewApplicationID returns a fresh random application ID.
func NewApplicationID() ApplicationID { return ApplicationID(uuid.New()) }

// NewDocumentID returns a fresh random document ID.
func NewDocumentID() DocumentID { return DocumentID(uuid.New()) }

// NewDecisionID returns a fresh random decision ID.
func NewDecisionID() DecisionID { return DecisionID(uuid.New()) }

// NewExchangeID returns a fresh random assistant exchange ID.
func NewExchangeID() ExchangeID { return ExchangeID(uuid.New()) }

func (id ApplicationID) String() string { return uuid.UUID(id).String() }
func (id DocumentID) String() string    { return uuid.UUID(id).String() }
func (id DecisionID) String() string    { return uuid.UUID(id).String() }
func (id ExchangeID) String() string    { return uuid.UUID(id).String() }

func (id ApplicationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id DocumentID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id DecisionID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }
func (id ExchangeID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// parseUUID enforces the parsing invariant shared by all typed IDs:
// IDs must be valid, non-empty, non-nil UUIDs.
func parseUUID(s, kind string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be empty")
	}
	parsed, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" must not be the nil UUID")
	}
	return parsed, nil
}

// ParseApplicationID validates and returns an ApplicationID.
func ParseApplicationID(s string) (ApplicationID, error) {
	parsed, err := parseUUID(s, "application_id")
	if err != nil {
		return ApplicationID{}, err
	}
	return ApplicationID(parsed), nil
}

// ParseDocumentID validates and returns a DocumentID.
func ParseDocumentID(s string) (DocumentID, error) {
	parsed, err := parseUUID(s, "document_id")
	if err != nil {
		return DocumentID{}, err
	}
	return DocumentID(parsed), nil
}

// ParseDecisionID validates and returns a DecisionID.
func ParseDecisionID(s string) (DecisionID, error) {
	parsed, err := parseUUID(s, "decision_id")
	if err != nil {
		return DecisionID{}, err
	}
	return DecisionID(parsed), nil
}
