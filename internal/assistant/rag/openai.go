package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hsaonboard/internal/assistant/models"
	dErrors "hsaonboard/pkg/domain-errors"
)

const advisorPrompt = `You are an expert HSA (Health Savings Account) advisor. Answer questions based ONLY on the attached IRS documentation about HSA rules and regulations.
1. Base your answer exclusively on the provided IRS Publication 969 documentation.
2. Provide accurate information about HSA rules, limits, and eligibility.
3. When mentioning specific numbers, dates, or limits, reference the source document.
4. If the documentation does not contain enough information to answer, say so clearly.`

// OpenAIClient answers questions through the hosted responses endpoint with
// the file_search tool pointed at the configured vector store.
type OpenAIClient struct {
	apiKey        string
	baseURL       string
	model         string
	vectorStoreID string
	httpClient    *http.Client
}

func NewOpenAIClient(apiKey, baseURL, model, vectorStoreID string, timeout time.Duration) *OpenAIClient {
	return &OpenAIClient{
		apiKey:        apiKey,
		baseURL:       baseURL,
		model:         model,
		vectorStoreID: vectorStoreID,
		httpClient:    &http.Client{Timeout: timeout},
	}
}

// responses API request/response shapes, limited to the fields used.
type responsesRequest struct {
	Model           string         `json:"model"`
	Instructions    string         `json:"instructions"`
	Input           string         `json:"input"`
	Tools           []responseTool `json:"tools"`
	MaxOutputTokens int            `json:"max_output_tokens"`
	Temperature     float64        `json:"temperature"`
}

type responseTool struct {
	Type           string   `json:"type"`
	VectorStoreIDs []string `json:"vector_store_ids"`
}

type responsesResponse struct {
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type        string `json:"type"`
			Text        string `json:"text"`
			Annotations []struct {
				Type     string `json:"type"`
				Filename string `json:"filename"`
				Quote    string `json:"quote"`
			} `json:"annotations"`
		} `json:"content"`
	} `json:"output"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type vectorStoreResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Status     string `json:"status"`
	UsageBytes int64  `json:"usage_bytes"`
	FileCounts struct {
		Completed int `json:"completed"`
		Failed    int `json:"failed"`
		Total     int `json:"total"`
	} `json:"file_counts"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (c *OpenAIClient) Answer(ctx context.Context, question, followUp string) (*models.Answer, error) {
	if c.vectorStoreID == "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "assistant knowledge base is not configured")
	}
	start := time.Now()

	input := question
	if followUp != "" {
		input = "Context: " + followUp + "\n\nQuestion: " + question
	}
	payload := responsesRequest{
		Model:        c.model,
		Instructions: advisorPrompt,
		Input:        input,
		Tools: []responseTool{{
			Type:           "file_search",
			VectorStoreIDs: []string{c.vectorStoreID},
		}},
		MaxOutputTokens: 1500,
		Temperature:     0.1,
	}

	var parsed responsesResponse
	if err := c.post(ctx, "/responses", payload, &parsed); err != nil {
		return nil, err
	}
	if parsed.Error != nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "answer model error: "+parsed.Error.Message)
	}

	var text string
	var citations []models.Citation
	sources := make(map[string]struct{})
	for _, out := range parsed.Output {
		if out.Type != "message" {
			continue
		}
		for _, content := range out.Content {
			if content.Type != "output_text" {
				continue
			}
			text += content.Text
			for _, a := range content.Annotations {
				if a.Type != "file_citation" {
					continue
				}
				citations = append(citations, models.Citation{
					DocumentName:   a.Filename,
					Excerpt:        truncate(a.Quote, 200),
					RelevanceScore: 0.9,
				})
				sources[a.Filename] = struct{}{}
			}
		}
	}
	if text == "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "answer model returned no output")
	}

	sourceDocs := make([]string, 0, len(sources))
	for name := range sources {
		sourceDocs = append(sourceDocs, name)
	}

	return &models.Answer{
		Answer:           text,
		ConfidenceScore:  ConfidenceScore(len(citations), text),
		Citations:        citations,
		SourceDocuments:  sourceDocs,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func (c *OpenAIClient) Stats(ctx context.Context) (*models.KnowledgeBaseStats, error) {
	if c.vectorStoreID == "" {
		return nil, dErrors.New(dErrors.CodeUnavailable, "assistant knowledge base is not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/vector_stores/"+c.vectorStoreID, nil)
	if err != nil {
		return nil, fmt.Errorf("build vector store request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "vector store request failed", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "vector store response read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("vector store lookup returned status %d", resp.StatusCode))
	}

	var store vectorStoreResponse
	if err := json.Unmarshal(body, &store); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "vector store response malformed", err)
	}
	if store.Error != nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "vector store error: "+store.Error.Message)
	}

	return &models.KnowledgeBaseStats{
		VectorStoreID:  store.ID,
		Name:           store.Name,
		Status:         store.Status,
		TotalFiles:     store.FileCounts.Total,
		CompletedFiles: store.FileCounts.Completed,
		FailedFiles:    store.FileCounts.Failed,
		UsageBytes:     store.UsageBytes,
	}, nil
}

func (c *OpenAIClient) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "answer model request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "answer model response read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("answer model returned status %d", resp.StatusCode))
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return dErrors.Wrap(dErrors.CodeUnavailable, "answer model response malformed", err)
	}
	return nil
}

// ConfidenceScore estimates answer confidence from citation count and answer
// length. Uncited answers score 0.3.
func ConfidenceScore(citationCount int, answer string) float64 {
	if citationCount == 0 {
		return 0.3
	}
	citationFactor := min(float64(citationCount)/3, 1.0)
	lengthFactor := min(float64(len(answer))/200, 1.0)
	return min(0.6+citationFactor*0.3+lengthFactor*0.1, 1.0)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
