package decision

// Risk factor weights. An expired ID dominates; identity fields (name, DOB)
// weigh more than address or employer discrepancies.
var riskWeights = map[string]float64{
	"expired_id":      1.0,
	FieldFullName:     0.8,
	FieldDateOfBirth:  0.9,
	FieldAddress:      0.3,
	FieldEmployerName: 0.4,
}

// riskScore computes the supplemental risk score in [0,1]: the sum of
// triggered factor weights over the total possible weight. The score informs
// reviewers; the rule chain in engine.go decides the outcome.
func riskScore(matches []FieldMatchResult, expiry ExpiryResult) float64 {
	var total, triggered float64
	for _, w := range riskWeights {
		total += w
	}

	if expiry.Expired {
		triggered += riskWeights["expired_id"]
	}
	for _, m := range matches {
		if m.IsMatch {
			continue
		}
		if w, ok := riskWeights[m.Field]; ok {
			triggered += w
		}
	}

	if total == 0 {
		return 0
	}
	return triggered / total
}
