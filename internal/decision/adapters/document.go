package adapters

import (
	"context"

	"hsaonboard/internal/decision"
	docmodels "hsaonboard/internal/document/models"
	docservice "hsaonboard/internal/document/service"
	"hsaonboard/pkg/domain"
)

// DocumentAdapter exposes the document module as a DocumentSource. Documents
// that are still processing, or whose extraction failed, surface with
// ProcessingError set so the engine's missing-document rule applies.
type DocumentAdapter struct {
	docs *docservice.Service
}

func NewDocumentAdapter(docs *docservice.Service) *DocumentAdapter {
	return &DocumentAdapter{docs: docs}
}

func (a *DocumentAdapter) LatestIdentityDocument(ctx context.Context, id domain.ApplicationID) (*decision.IdentityDocument, error) {
	doc, err := a.docs.LatestByType(ctx, id, docmodels.TypeGovernmentID)
	if err != nil {
		return nil, err
	}
	if doc.Status != docmodels.StatusCompleted || doc.GovernmentID == nil {
		return &decision.IdentityDocument{ProcessingError: true}, nil
	}
	data := doc.GovernmentID
	return &decision.IdentityDocument{
		DocumentType: data.DocumentType,
		IDNumber:     data.IDNumber,
		FullName:     data.FullName,
		DateOfBirth:  data.DateOfBirth,
		Address: decision.Address{
			Street: data.Street,
			City:   data.City,
			State:  data.State,
			Zip:    data.Zip,
		},
		IssueDate:        data.IssueDate,
		ExpiryDate:       data.ExpiryDate,
		IssuingAuthority: data.IssuingAuthority,
		Confidences:      data.Confidences,
	}, nil
}

func (a *DocumentAdapter) LatestEmployerDocument(ctx context.Context, id domain.ApplicationID) (*decision.EmployerDocument, error) {
	doc, err := a.docs.LatestByType(ctx, id, docmodels.TypeEmployerProof)
	if err != nil {
		return nil, err
	}
	if doc.Status != docmodels.StatusCompleted || doc.EmployerProof == nil {
		return &decision.EmployerDocument{ProcessingError: true}, nil
	}
	data := doc.EmployerProof
	return &decision.EmployerDocument{
		EmployeeName:    data.EmployeeName,
		EmployerName:    data.EmployerName,
		EmployerAddress: data.EmployerAddress,
		DocumentDate:    data.DocumentDate,
		PlanType:        data.PlanType,
		Confidences:     data.Confidences,
	}, nil
}
