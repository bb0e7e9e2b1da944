package handler

import (
	"time"

	"hsaonboard/internal/assistant/models"
)

// ExchangeResponse is one history entry.
type ExchangeResponse struct {
	ID              string   `json:"id"`
	ApplicationID   string   `json:"application_id,omitempty"`
	Question        string   `json:"question"`
	Answer          string   `json:"answer"`
	ConfidenceScore float64  `json:"confidence_score"`
	CitationsCount  int      `json:"citations_count"`
	SourceDocuments []string `json:"source_documents,omitempty"`
	Cached          bool     `json:"cached"`
	CreatedAt       string   `json:"created_at"`
}

// HistoryResponse wraps the exchange history.
type HistoryResponse struct {
	Exchanges []ExchangeResponse `json:"exchanges"`
	Count     int                `json:"count"`
}

// FromExchanges converts history entries to their response form.
func FromExchanges(exchanges []*models.Exchange) HistoryResponse {
	out := HistoryResponse{Exchanges: make([]ExchangeResponse, 0, len(exchanges))}
	for _, e := range exchanges {
		item := ExchangeResponse{
			ID:              e.ID.String(),
			Question:        e.Question,
			Answer:          e.Answer,
			ConfidenceScore: e.ConfidenceScore,
			CitationsCount:  e.CitationsCount,
			SourceDocuments: e.SourceDocuments,
			Cached:          e.Cached,
			CreatedAt:       e.CreatedAt.Format(time.RFC3339),
		}
		if !e.ApplicationID.IsNil() {
			item.ApplicationID = e.ApplicationID.String()
		}
		out.Exchanges = append(out.Exchanges, item)
	}
	out.Count = len(out.Exchanges)
	return out
}
