package rag

import (
	"context"

	"hsaonboard/internal/assistant/models"
)

// MockClient returns canned answers. Used by tests and by local development
// when no API key is configured.
type MockClient struct {
	Response *models.Answer
	Err      error
}

func (m *MockClient) Answer(ctx context.Context, question, followUp string) (*models.Answer, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Response != nil {
		clone := *m.Response
		return &clone, nil
	}
	answer := "For 2024, the HSA contribution limit is $4,150 for self-only coverage and $8,300 for family coverage (IRS Publication 969)."
	citations := []models.Citation{{
		DocumentName:   "irs.pdf",
		Excerpt:        "For 2024, the annual contribution limit is $4,150 for self-only HDHP coverage.",
		RelevanceScore: 0.9,
	}}
	return &models.Answer{
		Answer:           answer,
		ConfidenceScore:  ConfidenceScore(len(citations), answer),
		Citations:        citations,
		SourceDocuments:  []string{"irs.pdf"},
		ProcessingTimeMs: 42,
	}, nil
}

func (m *MockClient) Stats(ctx context.Context) (*models.KnowledgeBaseStats, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &models.KnowledgeBaseStats{
		VectorStoreID:  "vs_mock",
		Name:           "hsa_knowledge_base",
		Status:         "completed",
		TotalFiles:     1,
		CompletedFiles: 1,
		UsageBytes:     2_400_000,
	}, nil
}
