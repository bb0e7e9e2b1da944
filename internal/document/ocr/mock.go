package ocr

import (
	"context"

	"hsaonboard/internal/document/models"
)

// MockExtractor returns canned extraction results. Used by tests and by
// local development when no API key is configured.
type MockExtractor struct {
	GovernmentID  *models.GovernmentIDData
	EmployerProof *models.EmployerProofData
	Err           error
}

func (m *MockExtractor) ExtractGovernmentID(ctx context.Context, image []byte, contentType string) (*models.GovernmentIDData, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.GovernmentID != nil {
		return m.GovernmentID, nil
	}
	return &models.GovernmentIDData{
		DocumentType:     "drivers_license",
		IDNumber:         "D1234567",
		FullName:         "Jane Doe",
		DateOfBirth:      "1990-05-01",
		Street:           "123 Main St",
		City:             "Springfield",
		State:            "IL",
		Zip:              "62704",
		IssueDate:        "2020-01-01",
		ExpiryDate:       "2030-01-01",
		IssuingAuthority: "IL DMV",
		Confidences: map[string]float64{
			"full_name": 0.98, "date_of_birth": 0.97, "id_number": 0.95,
		},
	}, nil
}

func (m *MockExtractor) ExtractEmployerProof(ctx context.Context, image []byte, contentType string) (*models.EmployerProofData, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.EmployerProof != nil {
		return m.EmployerProof, nil
	}
	return &models.EmployerProofData{
		EmployeeName:    "Jane Doe",
		EmployerName:    "Acme Corp",
		EmployerAddress: "500 Industrial Way, Springfield, IL 62704",
		DocumentDate:    "2024-01-15",
		PlanType:        "HDHP",
		Confidences:     map[string]float64{"employer_name": 0.96, "employee_name": 0.94},
	}, nil
}
