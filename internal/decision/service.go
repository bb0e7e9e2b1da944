package decision

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"hsaonboard/internal/decision/metrics"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/requestcontext"
)

const evidenceTimeout = 10 * time.Second

var tracer = otel.Tracer("hsaonboard/internal/decision")

// AuditPublisher emits the compliance trail for evaluations.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates one evaluation: gather the applicant and extracted
// documents, run the engine, persist the record, update the application
// status, and emit the compliance audit event.
type Service struct {
	engine     *Engine
	applicants ApplicantSource
	documents  DocumentSource
	store      Store
	audit      AuditPublisher
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewService(
	engine *Engine,
	applicants ApplicantSource,
	documents DocumentSource,
	store Store,
	auditPub AuditPublisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		engine:     engine,
		applicants: applicants,
		documents:  documents,
		store:      store,
		audit:      auditPub,
		metrics:    m,
		logger:     logger,
	}
}

// evidence bundles the gathered inputs for one evaluation.
type evidence struct {
	applicant   *Applicant
	idDoc       *IdentityDocument
	employerDoc *EmployerDocument
}

// Evaluate runs the decision pipeline for an application. The reference date
// comes from the request context, keeping evaluation deterministic in tests.
func (s *Service) Evaluate(ctx context.Context, applicationID domain.ApplicationID) (*Record, error) {
	start := time.Now()
	ctx, span := tracer.Start(ctx, "decision.Evaluate", trace.WithAttributes(
		attribute.String("application_id", applicationID.String()),
	))
	defer span.End()

	ev, err := s.gatherEvidence(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	referenceDate := requestcontext.Now(ctx)
	outcome, err := s.engine.Decide(ev.applicant, ev.idDoc, ev.employerDoc, referenceDate)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("outcome", string(outcome.Outcome)))

	record := &Record{
		ID:            domain.NewDecisionID(),
		ApplicationID: applicationID,
		Outcome:       outcome.Outcome,
		Explanation:   outcome.Explanation,
		Matches:       outcome.Matches,
		Expiry:        outcome.Expiry,
		RiskScore:     outcome.RiskScore,
		ReferenceDate: referenceDate,
		EvaluatedBy:   requestcontext.Reviewer(ctx),
		CreatedAt:     referenceDate,
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to persist decision", err)
	}

	if err := s.applicants.SetApplicationStatus(ctx, applicationID, outcome.Outcome); err != nil {
		s.logger.ErrorContext(ctx, "application status update failed after decision",
			"request_id", requestcontext.RequestID(ctx),
			"application_id", applicationID,
			"error", err,
		)
	}

	// The decision is a compliance event. If the trail cannot be written the
	// evaluation must not be acknowledged.
	if err := s.audit.Emit(ctx, s.auditEvent(ctx, record, ev.applicant)); err != nil {
		return nil, err
	}

	s.metrics.IncrementOutcome(string(outcome.Outcome))
	s.metrics.ObserveRiskScore(outcome.RiskScore)
	s.metrics.ObserveEvaluateLatency(time.Since(start))

	s.logger.InfoContext(ctx, "decision evaluated",
		"request_id", requestcontext.RequestID(ctx),
		"application_id", applicationID,
		"outcome", outcome.Outcome,
		"risk_score", outcome.RiskScore,
	)
	return record, nil
}

// Latest returns the most recent decision for an application.
func (s *Service) Latest(ctx context.Context, applicationID domain.ApplicationID) (*Record, error) {
	return s.store.LatestByApplication(ctx, applicationID)
}

// History returns all decisions for an application, newest first.
func (s *Service) History(ctx context.Context, applicationID domain.ApplicationID) ([]*Record, error) {
	return s.store.ListByApplication(ctx, applicationID)
}

// gatherEvidence fetches the applicant and both documents concurrently with
// shared cancellation. Document lookups that find nothing return nil inputs;
// the engine's missing-document rule takes over from there.
func (s *Service) gatherEvidence(ctx context.Context, applicationID domain.ApplicationID) (*evidence, error) {
	ctx, cancel := context.WithTimeout(ctx, evidenceTimeout)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)
	ev := &evidence{}

	g.Go(func() error {
		start := time.Now()
		applicant, err := s.applicants.GetApplicant(ctx, applicationID)
		s.metrics.ObserveEvidenceLatency("applicant", time.Since(start))
		if err != nil {
			return err
		}
		ev.applicant = applicant
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		doc, err := s.documents.LatestIdentityDocument(ctx, applicationID)
		s.metrics.ObserveEvidenceLatency("identity_document", time.Since(start))
		if err != nil {
			// A missing document is evidence, not a failure.
			s.logger.DebugContext(ctx, "identity document lookup failed",
				"application_id", applicationID,
				"error", err,
			)
			return nil
		}
		ev.idDoc = doc
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		doc, err := s.documents.LatestEmployerDocument(ctx, applicationID)
		s.metrics.ObserveEvidenceLatency("employer_document", time.Since(start))
		if err != nil {
			s.logger.DebugContext(ctx, "employer document lookup failed",
				"application_id", applicationID,
				"error", err,
			)
			return nil
		}
		ev.employerDoc = doc
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return ev, nil
}

func (s *Service) auditEvent(ctx context.Context, record *Record, applicant *Applicant) audit.Event {
	event := audit.Event{
		Timestamp:     record.CreatedAt,
		ApplicationID: record.ApplicationID,
		Subject:       "application",
		Action:        string(audit.EventDecisionMade),
		Decision:      string(record.Outcome),
		Reason:        record.Explanation,
		RiskScore:     record.RiskScore,
		RequestID:     requestcontext.RequestID(ctx),
		ActorID:       requestcontext.Reviewer(ctx),
		ClientIP:      requestcontext.ClientIP(ctx),
		UserAgent:     requestcontext.UserAgent(ctx),
	}
	if applicant != nil {
		event.SubjectIDHash = applicant.SubjectIDHash
	}
	return event
}

// MarshalMatches serializes a match trace for persistence.
func MarshalMatches(matches []FieldMatchResult) ([]byte, error) {
	return json.Marshal(matches)
}

// UnmarshalMatches restores a persisted match trace.
func UnmarshalMatches(data []byte) ([]FieldMatchResult, error) {
	var matches []FieldMatchResult
	if err := json.Unmarshal(data, &matches); err != nil {
		return nil, err
	}
	return matches, nil
}
