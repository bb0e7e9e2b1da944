package decision

import "time"

// CheckExpiry evaluates an ID expiry date against an injected reference date.
// An ID expiring exactly on the reference date is still valid (strict
// inequality). The reference date is always supplied by the caller; this
// function never reads the system clock.
func CheckExpiry(expiryDate, referenceDate time.Time) ExpiryResult {
	expiry := truncateToDay(expiryDate)
	reference := truncateToDay(referenceDate)

	result := ExpiryResult{ExpiryDate: expiry.Format("2006-01-02")}
	if expiry.Before(reference) {
		result.Expired = true
		result.DaysOverdue = int(reference.Sub(expiry).Hours() / 24)
	}
	return result
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
