package audit

import (
	"time"

	id "hsaonboard/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies and routing.
type EventCategory string

const (
	// CategoryCompliance covers events with legal/regulatory significance.
	// Decision outcomes fall here; CIP rules require a durable trail.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to security monitoring.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers events useful for debugging and
	// operational visibility.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category      EventCategory
	Timestamp     time.Time
	ApplicationID id.ApplicationID
	Subject       string
	Action        string
	Decision      string
	Reason        string
	RiskScore     float64
	// SubjectIDHash is a SHA-256 hash of the applicant's SSN. Kept for
	// compliance traceability without storing raw PII.
	SubjectIDHash string
	RequestID     string
	// ActorID tracks the reviewer performing the action when one is
	// authenticated; automated evaluations leave it empty.
	ActorID   string
	ClientIP  string
	UserAgent string
}

// AuditEvent names every action this service records.
type AuditEvent string

const (
	// Application events
	EventApplicationCreated AuditEvent = "application_created"
	EventApplicationUpdated AuditEvent = "application_updated"
	EventApplicationDeleted AuditEvent = "application_deleted"

	// Document events
	EventDocumentUploaded         AuditEvent = "document_uploaded"
	EventDocumentExtracted        AuditEvent = "document_extracted"
	EventDocumentExtractionFailed AuditEvent = "document_extraction_failed"

	// Decision events
	EventDecisionMade AuditEvent = "decision_made"

	// Assistant events
	EventQuestionAnswered AuditEvent = "assistant_question_answered"

	// Auth events
	EventReviewerTokenIssued AuditEvent = "reviewer_token_issued"
	EventAuthFailed          AuditEvent = "auth_failed"
)

// eventCategories maps each audit event to its category.
var eventCategories = map[AuditEvent]EventCategory{
	// Compliance events - require tamper-proof storage
	EventApplicationCreated: CategoryCompliance,
	EventApplicationDeleted: CategoryCompliance,
	EventDecisionMade:       CategoryCompliance,

	// Security events
	EventAuthFailed:          CategorySecurity,
	EventReviewerTokenIssued: CategorySecurity,

	// Operations events - routine activity, can be sampled
	EventApplicationUpdated:       CategoryOperations,
	EventDocumentUploaded:         CategoryOperations,
	EventDocumentExtracted:        CategoryOperations,
	EventDocumentExtractionFailed: CategoryOperations,
	EventQuestionAnswered:         CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}
