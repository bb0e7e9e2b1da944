package decision

import (
	"fmt"
	"strings"
)

const reasonNormalizationFailure = "normalization failure"

// Matcher compares applicant-entered values against extracted document
// values. Stateless and safe for concurrent use.
type Matcher struct {
	// nameDistancePer10 is the allowed Levenshtein distance per 10
	// characters of the longer normalized name. Absorbs minor OCR noise.
	nameDistancePer10 int
}

// NewMatcher creates a matcher with the given name tolerance. A tolerance of
// zero means names must match exactly after normalization.
func NewMatcher(nameDistancePer10 int) *Matcher {
	if nameDistancePer10 < 0 {
		nameDistancePer10 = 0
	}
	return &Matcher{nameDistancePer10: nameDistancePer10}
}

// Match compares one field. Normalization failures on either side yield a
// non-match with zero confidence, never an error.
func (m *Matcher) Match(field, applicantValue, documentValue string, kind FieldKind) FieldMatchResult {
	result := FieldMatchResult{
		Field:          field,
		ApplicantValue: applicantValue,
		DocumentValue:  documentValue,
	}

	normApplicant, err := Normalize(applicantValue, kind)
	if err != nil {
		result.Reason = reasonNormalizationFailure
		return result
	}
	normDocument, err := Normalize(documentValue, kind)
	if err != nil {
		result.Reason = reasonNormalizationFailure
		return result
	}

	if normApplicant == normDocument {
		result.IsMatch = true
		result.Confidence = 1.0
		return result
	}

	if kind == KindName {
		// One name's tokens being a subset of the other's covers middle
		// name and initial variations.
		if nameTokenSubset(normApplicant, normDocument) {
			result.IsMatch = true
			result.Confidence = 0.85
			result.Reason = "middle name or initial variation"
			return result
		}
		if m.nameDistancePer10 > 0 {
			if ok, confidence := m.nameWithinTolerance(normApplicant, normDocument); ok {
				result.IsMatch = true
				result.Confidence = confidence
				result.Reason = "within edit-distance tolerance"
				return result
			}
		}
	}

	result.Reason = fmt.Sprintf("%s mismatch", field)
	return result
}

// MatchAddress compares a composite address. All four sub-fields must agree;
// the reason lists each disagreeing sub-field.
func (m *Matcher) MatchAddress(applicant, document Address) FieldMatchResult {
	result := FieldMatchResult{
		Field:          FieldAddress,
		ApplicantValue: formatAddress(applicant),
		DocumentValue:  formatAddress(document),
	}

	subfields := []struct {
		name      string
		applicant string
		document  string
	}{
		{"street", applicant.Street, document.Street},
		{"city", applicant.City, document.City},
		{"state", applicant.State, document.State},
		{"zip", applicant.Zip, document.Zip},
	}

	var mismatched []string
	for _, sf := range subfields {
		normA := normalizeAddress(sf.applicant)
		normD := normalizeAddress(sf.document)
		if normA != normD {
			mismatched = append(mismatched, sf.name)
		}
	}

	if len(mismatched) == 0 {
		result.IsMatch = true
		result.Confidence = 1.0
		return result
	}

	result.Reason = "sub-fields disagree: " + strings.Join(mismatched, ", ")
	return result
}

// nameTokenSubset reports whether one normalized name's tokens are all
// present in the other's. Requires at least two shared tokens so a bare
// surname never matches a full name.
func nameTokenSubset(a, b string) bool {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) < 2 || len(tokensB) < 2 {
		return false
	}
	shorter, longer := tokensA, tokensB
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	set := make(map[string]bool, len(longer))
	for _, tok := range longer {
		set[tok] = true
	}
	for _, tok := range shorter {
		if !set[tok] {
			return false
		}
	}
	return true
}

// nameWithinTolerance reports whether two normalized names are within the
// configured edit-distance budget, and the distance-scaled confidence.
func (m *Matcher) nameWithinTolerance(a, b string) (bool, float64) {
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	if longer == 0 {
		return false, 0
	}

	allowed := m.nameDistancePer10 * ((longer + 9) / 10)
	distance := levenshtein(a, b)
	if distance > allowed {
		return false, 0
	}
	// Scale confidence down proportionally to the edit distance.
	confidence := 1.0 - float64(distance)/float64(longer)
	if confidence < 0 {
		confidence = 0
	}
	return true, confidence
}

// levenshtein computes the edit distance between two strings using the
// two-row dynamic programming formulation.
func levenshtein(a, b string) int {
	ra, rb := []rune(a), []rune(b)
	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func formatAddress(a Address) string {
	parts := []string{a.Street, a.City, a.State, a.Zip}
	var nonEmpty []string
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			nonEmpty = append(nonEmpty, strings.TrimSpace(p))
		}
	}
	return strings.Join(nonEmpty, ", ")
}
