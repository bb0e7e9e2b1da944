package handler

import (
	"regexp"
	"strings"
	"time"

	"hsaonboard/internal/application/models"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
)

var (
	stateRe = regexp.MustCompile(`^[A-Za-z]{2}$`)
	zipRe   = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
)

// dobFormats are the accepted date-of-birth input formats. Stored form is
// always ISO.
var dobFormats = []string{"2006-01-02", "01/02/2006"}

const (
	minApplicantAge = 18
	maxApplicantAge = 120
)

// applicationPayload carries the applicant-entered fields shared by create
// and update requests.
type applicationPayload struct {
	FullName     string `json:"full_name"`
	DateOfBirth  string `json:"date_of_birth"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	SSN          string `json:"ssn"`
	EmployerName string `json:"employer_name"`

	parsedSSN domain.SSN
	parsedDOB string // normalized to YYYY-MM-DD
}

func (p *applicationPayload) validate() error {
	p.FullName = strings.TrimSpace(p.FullName)
	if p.FullName == "" {
		return dErrors.New(dErrors.CodeValidation, "full_name is required")
	}
	if len(p.FullName) > 200 {
		return dErrors.New(dErrors.CodeValidation, "full_name must be at most 200 characters")
	}

	dob, err := parseDOB(p.DateOfBirth)
	if err != nil {
		return err
	}
	if err := checkAdultAge(dob); err != nil {
		return err
	}
	p.parsedDOB = dob.Format("2006-01-02")

	if strings.TrimSpace(p.Street) == "" {
		return dErrors.New(dErrors.CodeValidation, "street is required")
	}
	if strings.TrimSpace(p.City) == "" {
		return dErrors.New(dErrors.CodeValidation, "city is required")
	}
	if !stateRe.MatchString(p.State) {
		return dErrors.New(dErrors.CodeValidation, "state must be a two-letter code")
	}
	if !zipRe.MatchString(p.Zip) {
		return dErrors.New(dErrors.CodeValidation, "zip must match 12345 or 12345-6789")
	}

	ssn, err := domain.ParseSSN(p.SSN)
	if err != nil {
		return err
	}
	p.parsedSSN = ssn

	if strings.TrimSpace(p.EmployerName) == "" {
		return dErrors.New(dErrors.CodeValidation, "employer_name is required")
	}
	return nil
}

func (p *applicationPayload) toModel() *models.Application {
	return &models.Application{
		FullName:    p.FullName,
		DateOfBirth: p.parsedDOB,
		Address: models.Address{
			Street: strings.TrimSpace(p.Street),
			City:   strings.TrimSpace(p.City),
			State:  strings.ToUpper(p.State),
			Zip:    p.Zip,
		},
		SSN:          p.parsedSSN,
		EmployerName: strings.TrimSpace(p.EmployerName),
	}
}

func parseDOB(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, dErrors.New(dErrors.CodeValidation, "date_of_birth is required")
	}
	for _, layout := range dobFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, dErrors.New(dErrors.CodeValidation, "date_of_birth must be YYYY-MM-DD or MM/DD/YYYY")
}

func checkAdultAge(dob time.Time) error {
	now := time.Now()
	age := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		age--
	}
	if age < minApplicantAge {
		return dErrors.New(dErrors.CodeValidation, "applicant must be at least 18 years old")
	}
	if age > maxApplicantAge {
		return dErrors.New(dErrors.CodeValidation, "date_of_birth is not plausible")
	}
	return nil
}

// CreateApplicationRequest is the POST /applications body.
type CreateApplicationRequest struct {
	applicationPayload
}

func (r *CreateApplicationRequest) Validate() error { return r.validate() }

// UpdateApplicationRequest is the PUT /applications/{id} body. All fields are
// required; partial updates are not supported.
type UpdateApplicationRequest struct {
	applicationPayload
}

func (r *UpdateApplicationRequest) Validate() error { return r.validate() }
