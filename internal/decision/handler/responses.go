package handler

import (
	"time"

	"hsaonboard/internal/decision"
	audit "hsaonboard/pkg/platform/audit"
)

// DecisionResponse is the wire representation of one evaluation.
type DecisionResponse struct {
	ID            string                      `json:"id"`
	ApplicationID string                      `json:"application_id"`
	Outcome       string                      `json:"outcome"`
	Explanation   string                      `json:"explanation"`
	Matches       []decision.FieldMatchResult `json:"matches"`
	Expiry        decision.ExpiryResult       `json:"expiry"`
	RiskScore     float64                     `json:"risk_score"`
	ReferenceDate string                      `json:"reference_date"`
	EvaluatedBy   string                      `json:"evaluated_by,omitempty"`
	CreatedAt     string                      `json:"created_at"`
}

// FromRecord converts a decision record to its response form.
func FromRecord(record *decision.Record) DecisionResponse {
	return DecisionResponse{
		ID:            record.ID.String(),
		ApplicationID: record.ApplicationID.String(),
		Outcome:       string(record.Outcome),
		Explanation:   record.Explanation,
		Matches:       record.Matches,
		Expiry:        record.Expiry,
		RiskScore:     record.RiskScore,
		ReferenceDate: record.ReferenceDate.Format("2006-01-02"),
		EvaluatedBy:   record.EvaluatedBy,
		CreatedAt:     record.CreatedAt.Format(time.RFC3339),
	}
}

// AuditEventResponse is one audit trail entry.
type AuditEventResponse struct {
	Category  string  `json:"category"`
	Timestamp string  `json:"timestamp"`
	Subject   string  `json:"subject"`
	Action    string  `json:"action"`
	Decision  string  `json:"decision,omitempty"`
	Reason    string  `json:"reason,omitempty"`
	RiskScore float64 `json:"risk_score,omitempty"`
	RequestID string  `json:"request_id,omitempty"`
	ActorID   string  `json:"actor_id,omitempty"`
}

// AuditTrailResponse wraps the audit events for an application.
type AuditTrailResponse struct {
	ApplicationID string               `json:"application_id"`
	Events        []AuditEventResponse `json:"events"`
	Count         int                  `json:"count"`
}

// FromAuditEvents converts the audit trail. Client IPs, user agents, and
// subject hashes stay internal.
func FromAuditEvents(applicationID string, events []audit.Event) AuditTrailResponse {
	out := AuditTrailResponse{
		ApplicationID: applicationID,
		Events:        make([]AuditEventResponse, 0, len(events)),
	}
	for _, e := range events {
		out.Events = append(out.Events, AuditEventResponse{
			Category:  string(e.Category),
			Timestamp: e.Timestamp.Format(time.RFC3339),
			Subject:   e.Subject,
			Action:    e.Action,
			Decision:  e.Decision,
			Reason:    e.Reason,
			RiskScore: e.RiskScore,
			RequestID: e.RequestID,
			ActorID:   e.ActorID,
		})
	}
	out.Count = len(out.Events)
	return out
}
