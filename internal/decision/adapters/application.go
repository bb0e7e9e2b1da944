// Package adapters bridges the decision ports to the application and
// document modules.
package adapters

import (
	"context"

	appmodels "hsaonboard/internal/application/models"
	appservice "hsaonboard/internal/application/service"
	"hsaonboard/internal/decision"
	"hsaonboard/pkg/domain"
)

// ApplicationAdapter exposes the application module as an ApplicantSource.
type ApplicationAdapter struct {
	apps *appservice.Service
}

func NewApplicationAdapter(apps *appservice.Service) *ApplicationAdapter {
	return &ApplicationAdapter{apps: apps}
}

func (a *ApplicationAdapter) GetApplicant(ctx context.Context, id domain.ApplicationID) (*decision.Applicant, error) {
	app, err := a.apps.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &decision.Applicant{
		ApplicationID: app.ID,
		FullName:      app.FullName,
		DateOfBirth:   app.DateOfBirth,
		Address: decision.Address{
			Street: app.Address.Street,
			City:   app.Address.City,
			State:  app.Address.State,
			Zip:    app.Address.Zip,
		},
		EmployerName:  app.EmployerName,
		SubjectIDHash: app.SSN.Hash(),
	}, nil
}

func (a *ApplicationAdapter) SetApplicationStatus(ctx context.Context, id domain.ApplicationID, outcome decision.Outcome) error {
	return a.apps.SetStatus(ctx, id, statusForOutcome(outcome))
}

func statusForOutcome(outcome decision.Outcome) appmodels.Status {
	switch outcome {
	case decision.OutcomeApprove:
		return appmodels.StatusApproved
	case decision.OutcomeReject:
		return appmodels.StatusRejected
	default:
		return appmodels.StatusManualReview
	}
}
