// Package service orchestrates assistant Q&A: cache, RAG call, history, audit.
package service

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"hsaonboard/internal/assistant/cache"
	"hsaonboard/internal/assistant/metrics"
	"hsaonboard/internal/assistant/models"
	"hsaonboard/internal/assistant/rag"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/requestcontext"
)

const (
	minQuestionLen = 10
	maxQuestionLen = 500
	maxContextLen  = 1000

	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

// Store persists Q&A exchanges.
type Store interface {
	Save(ctx context.Context, exchange *models.Exchange) error
	History(ctx context.Context, applicationID domain.ApplicationID, limit, offset int) ([]*models.Exchange, error)
	Count(ctx context.Context) (int, error)
}

// AuditPublisher emits assistant events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Stats combines knowledge base state with local usage counters.
type Stats struct {
	KnowledgeBase  models.KnowledgeBaseStats `json:"knowledge_base"`
	TotalQuestions int                       `json:"total_questions"`
}

// Service answers HSA questions with caching and history tracking.
type Service struct {
	rag     rag.Client
	cache   cache.AnswerCache
	store   Store
	audit   AuditPublisher
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func New(ragClient rag.Client, answerCache cache.AnswerCache, store Store, auditPub AuditPublisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		rag:     ragClient,
		cache:   answerCache,
		store:   store,
		audit:   auditPub,
		metrics: m,
		logger:  logger,
	}
}

// Ask answers a question, serving from the cache when the same question was
// answered recently. Every ask is recorded in the history, cached or not.
func (s *Service) Ask(ctx context.Context, question, followUp string, applicationID domain.ApplicationID) (*models.Answer, error) {
	start := time.Now()
	if err := validateQuestion(question, followUp); err != nil {
		return nil, err
	}

	key := cache.Key(question, followUp)
	answer, hit := s.lookupCache(ctx, key)
	if hit {
		answer.Cached = true
		s.metrics.IncrementQuestions("cache")
	} else {
		var err error
		answer, err = s.rag.Answer(ctx, question, followUp)
		if err != nil {
			return nil, err
		}
		s.storeCache(ctx, key, answer)
		s.metrics.IncrementQuestions("model")
	}

	exchange := &models.Exchange{
		ID:              domain.NewExchangeID(),
		ApplicationID:   applicationID,
		Question:        question,
		Context:         followUp,
		Answer:          answer.Answer,
		ConfidenceScore: answer.ConfidenceScore,
		CitationsCount:  len(answer.Citations),
		SourceDocuments: answer.SourceDocuments,
		Cached:          answer.Cached,
		CreatedAt:       requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, exchange); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to record assistant exchange", err)
	}

	if err := s.audit.Emit(ctx, audit.Event{
		Timestamp:     exchange.CreatedAt,
		ApplicationID: applicationID,
		Subject:       "assistant",
		Action:        string(audit.EventQuestionAnswered),
		RequestID:     requestcontext.RequestID(ctx),
		ClientIP:      requestcontext.ClientIP(ctx),
		UserAgent:     requestcontext.UserAgent(ctx),
	}); err != nil {
		s.logger.WarnContext(ctx, "audit emit failed for assistant event",
			"exchange_id", exchange.ID,
			"error", err,
		)
	}

	s.metrics.ObserveConfidence(answer.ConfidenceScore)
	s.metrics.ObserveAskLatency(time.Since(start))

	s.logger.InfoContext(ctx, "question answered",
		"request_id", requestcontext.RequestID(ctx),
		"exchange_id", exchange.ID,
		"confidence", answer.ConfidenceScore,
		"cached", answer.Cached,
	)
	return answer, nil
}

// History lists recorded exchanges, newest first. A nil application ID
// returns history across all applications.
func (s *Service) History(ctx context.Context, applicationID domain.ApplicationID, limit, offset int) ([]*models.Exchange, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.History(ctx, applicationID, limit, offset)
}

// Stats reports knowledge base state and usage counts.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	kb, err := s.rag.Stats(ctx)
	if err != nil {
		return nil, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeInternal, "failed to count assistant exchanges", err)
	}
	return &Stats{KnowledgeBase: *kb, TotalQuestions: total}, nil
}

func (s *Service) lookupCache(ctx context.Context, key string) (*models.Answer, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(ctx, key)
}

func (s *Service) storeCache(ctx context.Context, key string, answer *models.Answer) {
	if s.cache != nil {
		s.cache.Set(ctx, key, answer)
	}
}

func validateQuestion(question, followUp string) error {
	n := utf8.RuneCountInString(question)
	if n < minQuestionLen {
		return dErrors.New(dErrors.CodeValidation, "question must be at least 10 characters")
	}
	if n > maxQuestionLen {
		return dErrors.New(dErrors.CodeValidation, "question must be at most 500 characters")
	}
	if utf8.RuneCountInString(followUp) > maxContextLen {
		return dErrors.New(dErrors.CodeValidation, "context must be at most 1000 characters")
	}
	return nil
}
