// Package cache stores generated answers keyed by the normalized question so
// repeat questions skip the hosted model.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"hsaonboard/internal/assistant/models"
)

// AnswerCache is the lookup surface the assistant service needs.
type AnswerCache interface {
	Get(ctx context.Context, key string) (*models.Answer, bool)
	Set(ctx context.Context, key string, answer *models.Answer)
}

// Key derives the cache key for a question and its optional context. Casing
// and surrounding whitespace do not change the key; the hash keeps question
// text out of the keyspace.
func Key(question, followUp string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(question), " "))
	if followUp != "" {
		normalized += "\x00" + strings.ToLower(strings.Join(strings.Fields(followUp), " "))
	}
	sum := sha256.Sum256([]byte(normalized))
	return "assistant:answer:" + hex.EncodeToString(sum[:])
}
