// Package models defines assistant Q&A exchanges and knowledge base types.
package models

import (
	"time"

	"hsaonboard/pkg/domain"
)

// Citation points at the knowledge base passage supporting part of an answer.
type Citation struct {
	DocumentName   string  `json:"document_name"`
	Excerpt        string  `json:"excerpt"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Answer is one generated response with its supporting evidence.
type Answer struct {
	Answer           string     `json:"answer"`
	ConfidenceScore  float64    `json:"confidence_score"`
	Citations        []Citation `json:"citations"`
	SourceDocuments  []string   `json:"source_documents"`
	ProcessingTimeMs int64      `json:"processing_time_ms"`
	// Cached marks answers served from the cache rather than the model.
	Cached bool `json:"cached"`
}

// Exchange is one recorded question/answer interaction.
type Exchange struct {
	ID domain.ExchangeID
	// ApplicationID links the exchange to an application when the asker
	// provided one; anonymous questions leave it nil.
	ApplicationID   domain.ApplicationID
	Question        string
	Context         string
	Answer          string
	ConfidenceScore float64
	CitationsCount  int
	SourceDocuments []string
	Cached          bool
	CreatedAt       time.Time
}

// KnowledgeBaseStats describes the hosted vector store backing the assistant.
type KnowledgeBaseStats struct {
	VectorStoreID  string `json:"vector_store_id"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	TotalFiles     int    `json:"total_files"`
	CompletedFiles int    `json:"completed_files"`
	FailedFiles    int    `json:"failed_files"`
	UsageBytes     int64  `json:"usage_bytes"`
}
