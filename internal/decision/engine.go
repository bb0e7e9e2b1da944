package decision

import (
	"fmt"
	"strings"
	"time"

	dErrors "hsaonboard/pkg/domain-errors"
)

const (
	explanationMissingDocument = "Document unreadable or missing; manual verification required"
	explanationAllMatch        = "All data matches; ID valid."
)

// Engine aggregates per-field match results and the expiry check into a
// final outcome. Pure domain logic: no I/O, no side effects, deterministic
// for fixed inputs and reference date.
type Engine struct {
	matcher *Matcher
}

func NewEngine(matcher *Matcher) *Engine {
	return &Engine{matcher: matcher}
}

// Decide evaluates one application against its extracted documents.
//
// Rule priority (first applicable rule wins):
//  1. Missing or failed document - manual verification, no guessing
//  2. Expired ID - hard reject, matches still attached for the audit trail
//  3. Unreadable expiry date or any required-field mismatch - manual review
//     listing the failures
//  4. Approve, reachable only with a positively unexpired ID
//
// The only error is a nil applicant, which is a caller contract violation.
// Data-quality problems are absorbed into the outcome.
func (e *Engine) Decide(applicant *Applicant, idDoc *IdentityDocument, employerDoc *EmployerDocument, referenceDate time.Time) (DecisionOutcome, error) {
	if applicant == nil {
		return DecisionOutcome{}, dErrors.New(dErrors.CodeBadRequest, "applicant record is required")
	}

	// Rule 1: missing or unreadable document - never guess
	if idDoc == nil || idDoc.ProcessingError || employerDoc == nil || employerDoc.ProcessingError {
		return DecisionOutcome{
			Outcome:     OutcomeManualReview,
			Explanation: explanationMissingDocument,
			Matches:     []FieldMatchResult{},
			RiskScore:   riskScore(nil, ExpiryResult{}),
		}, nil
	}

	// Matches are always computed in full, even on the reject path, so the
	// audit trail carries one result per required field.
	matches := e.matchFields(applicant, idDoc, employerDoc)
	expiry, expiryErr := e.checkExpiry(idDoc.ExpiryDate, referenceDate)

	// Rule 2: expired ID - hard reject
	if expiry.Expired {
		return DecisionOutcome{
			Outcome:     OutcomeReject,
			Explanation: fmt.Sprintf("ID expired on %s", expiry.ExpiryDate),
			Matches:     matches,
			Expiry:      expiry,
			RiskScore:   riskScore(matches, expiry),
		}, nil
	}

	// Rule 3: unreadable expiry or any required-field mismatch - manual
	// review. An ID whose expiry date could not be read is never positively
	// valid, so it must not reach the approve rule.
	var failures []string
	if expiryErr != nil {
		failures = append(failures, "ID expiry date unreadable")
	}
	for _, m := range matches {
		if !m.IsMatch {
			failures = append(failures, mismatchSentence(m.Field))
		}
	}
	if len(failures) > 0 {
		return DecisionOutcome{
			Outcome:     OutcomeManualReview,
			Explanation: strings.Join(failures, "; "),
			Matches:     matches,
			Expiry:      expiry,
			RiskScore:   riskScore(matches, expiry),
		}, nil
	}

	// Rule 4: approve
	return DecisionOutcome{
		Outcome:     OutcomeApprove,
		Explanation: explanationAllMatch,
		Matches:     matches,
		Expiry:      expiry,
		RiskScore:   riskScore(matches, expiry),
	}, nil
}

// matchFields compares every required field. The result slice always has
// exactly one entry per required field, in declaration order.
func (e *Engine) matchFields(applicant *Applicant, idDoc *IdentityDocument, employerDoc *EmployerDocument) []FieldMatchResult {
	return []FieldMatchResult{
		e.matcher.Match(FieldFullName, applicant.FullName, idDoc.FullName, KindName),
		e.matcher.Match(FieldDateOfBirth, applicant.DateOfBirth, idDoc.DateOfBirth, KindDate),
		e.matcher.MatchAddress(applicant.Address, idDoc.Address),
		e.matcher.Match(FieldEmployerName, applicant.EmployerName, employerDoc.EmployerName, KindName),
	}
}

// checkExpiry parses the extracted expiry date and runs the expiry check.
// The reject rule only fires on a positively expired ID; an unparseable
// expiry date is reported as an error so Decide escalates to manual review
// instead of approving.
func (e *Engine) checkExpiry(rawExpiry string, referenceDate time.Time) (ExpiryResult, error) {
	expiryDate, err := ParseDate(rawExpiry)
	if err != nil {
		return ExpiryResult{}, err
	}
	return CheckExpiry(expiryDate, referenceDate), nil
}

func mismatchSentence(field string) string {
	switch field {
	case FieldFullName:
		return "Name mismatch between ID and application"
	case FieldDateOfBirth:
		return "Date of birth mismatch between ID and application"
	case FieldAddress:
		return "Address mismatch between ID and application"
	case FieldEmployerName:
		return "Employer name mismatch between application and employer document"
	}
	return field + " mismatch"
}
