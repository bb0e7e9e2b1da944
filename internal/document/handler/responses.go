package handler

import (
	"time"

	"hsaonboard/internal/document/models"
)

// DocumentResponse is the wire representation of an uploaded document.
type DocumentResponse struct {
	ID            string                    `json:"id"`
	ApplicationID string                    `json:"application_id"`
	Type          string                    `json:"type"`
	FileName      string                    `json:"file_name"`
	ContentType   string                    `json:"content_type"`
	SizeBytes     int64                     `json:"size_bytes"`
	Status        string                    `json:"status"`
	GovernmentID  *models.GovernmentIDData  `json:"government_id,omitempty"`
	EmployerProof *models.EmployerProofData `json:"employer_proof,omitempty"`
	ErrorMessage  string                    `json:"error_message,omitempty"`
	Superseded    bool                      `json:"superseded"`
	CreatedAt     string                    `json:"created_at"`
	UpdatedAt     string                    `json:"updated_at"`
}

// FromDocument converts a document to its response form.
func FromDocument(doc *models.Document) DocumentResponse {
	return DocumentResponse{
		ID:            doc.ID.String(),
		ApplicationID: doc.ApplicationID.String(),
		Type:          string(doc.Type),
		FileName:      doc.FileName,
		ContentType:   doc.ContentType,
		SizeBytes:     doc.SizeBytes,
		Status:        string(doc.Status),
		GovernmentID:  doc.GovernmentID,
		EmployerProof: doc.EmployerProof,
		ErrorMessage:  doc.ErrorMessage,
		Superseded:    doc.Superseded,
		CreatedAt:     doc.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     doc.UpdatedAt.Format(time.RFC3339),
	}
}

// ListDocumentsResponse wraps all documents for an application.
type ListDocumentsResponse struct {
	Documents []DocumentResponse `json:"documents"`
	Count     int                `json:"count"`
}

// FromDocuments converts a slice of documents.
func FromDocuments(docs []*models.Document) ListDocumentsResponse {
	out := ListDocumentsResponse{Documents: make([]DocumentResponse, 0, len(docs))}
	for _, doc := range docs {
		out.Documents = append(out.Documents, FromDocument(doc))
	}
	out.Count = len(out.Documents)
	return out
}
