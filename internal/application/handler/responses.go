package handler

import (
	"time"

	"hsaonboard/internal/application/models"
)

// ApplicationResponse is the wire representation of an application. The SSN
// is always masked; raw digits never leave the service.
type ApplicationResponse struct {
	ID           string `json:"id"`
	FullName     string `json:"full_name"`
	DateOfBirth  string `json:"date_of_birth"`
	Street       string `json:"street"`
	City         string `json:"city"`
	State        string `json:"state"`
	Zip          string `json:"zip"`
	SSNMasked    string `json:"ssn_masked"`
	EmployerName string `json:"employer_name"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
}

// FromApplication converts a domain application to its response form.
func FromApplication(app *models.Application) ApplicationResponse {
	return ApplicationResponse{
		ID:           app.ID.String(),
		FullName:     app.FullName,
		DateOfBirth:  app.DateOfBirth,
		Street:       app.Address.Street,
		City:         app.Address.City,
		State:        app.Address.State,
		Zip:          app.Address.Zip,
		SSNMasked:    app.SSN.Masked(),
		EmployerName: app.EmployerName,
		Status:       string(app.Status),
		CreatedAt:    app.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    app.UpdatedAt.Format(time.RFC3339),
	}
}

// ListApplicationsResponse wraps a page of applications.
type ListApplicationsResponse struct {
	Applications []ApplicationResponse `json:"applications"`
	Count        int                   `json:"count"`
}

// FromApplications converts a slice of applications.
func FromApplications(apps []*models.Application) ListApplicationsResponse {
	out := ListApplicationsResponse{Applications: make([]ApplicationResponse, 0, len(apps))}
	for _, app := range apps {
		out.Applications = append(out.Applications, FromApplication(app))
	}
	out.Count = len(out.Applications)
	return out
}
