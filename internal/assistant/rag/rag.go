// Package rag answers HSA questions against a hosted vector store.
package rag

import (
	"context"

	"hsaonboard/internal/assistant/models"
)

// Client generates cited answers from the knowledge base.
type Client interface {
	// Answer produces a grounded answer for a question. followUp carries
	// optional conversational context from the asker.
	Answer(ctx context.Context, question, followUp string) (*models.Answer, error)
	// Stats describes the backing vector store.
	Stats(ctx context.Context) (*models.KnowledgeBaseStats, error)
}
