package ocr

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"hsaonboard/internal/document/models"
	dErrors "hsaonboard/pkg/domain-errors"
)

const (
	governmentIDPrompt = `Extract the following fields from this government ID image and return them as JSON:
document_type, id_number, full_name, date_of_birth (YYYY-MM-DD), street, city, state, zip, issue_date (YYYY-MM-DD), expiry_date (YYYY-MM-DD), issuing_authority.
Also return a "confidences" object mapping each field name to a confidence between 0 and 1.
Use empty strings for fields you cannot read.`

	employerProofPrompt = `Extract the following fields from this employer health plan document and return them as JSON:
employee_name, employer_name, employer_address, document_date (YYYY-MM-DD), plan_type.
Also return a "confidences" object mapping each field name to a confidence between 0 and 1.
Use empty strings for fields you cannot read.`
)

// OpenAIExtractor extracts document fields through the hosted vision model's
// chat completions endpoint.
type OpenAIExtractor struct {
	apiKey     string
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOpenAIExtractor creates an extractor for the given API configuration.
func NewOpenAIExtractor(apiKey, baseURL, model string, timeout time.Duration) *OpenAIExtractor {
	return &OpenAIExtractor{
		apiKey:     apiKey,
		baseURL:    baseURL,
		model:      model,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (e *OpenAIExtractor) ExtractGovernmentID(ctx context.Context, image []byte, contentType string) (*models.GovernmentIDData, error) {
	raw, err := e.complete(ctx, governmentIDPrompt, image, contentType)
	if err != nil {
		return nil, err
	}
	var data models.GovernmentIDData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "vision model returned malformed extraction", err)
	}
	return &data, nil
}

func (e *OpenAIExtractor) ExtractEmployerProof(ctx context.Context, image []byte, contentType string) (*models.EmployerProofData, error) {
	raw, err := e.complete(ctx, employerProofPrompt, image, contentType)
	if err != nil {
		return nil, err
	}
	var data models.EmployerProofData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "vision model returned malformed extraction", err)
	}
	return &data, nil
}

// chat completion request/response shapes, limited to the fields used.
type completionRequest struct {
	Model          string              `json:"model"`
	Messages       []completionMessage `json:"messages"`
	ResponseFormat responseFormat      `json:"response_format"`
	MaxTokens      int                 `json:"max_tokens"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type completionMessage struct {
	Role    string        `json:"role"`
	Content []contentPart `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (e *OpenAIExtractor) complete(ctx context.Context, prompt string, image []byte, contentType string) ([]byte, error) {
	dataURL := fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image))

	payload := completionRequest{
		Model: e.model,
		Messages: []completionMessage{{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		}},
		ResponseFormat: responseFormat{Type: "json_object"},
		MaxTokens:      1024,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "vision model request failed", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "vision model response read failed", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.New(dErrors.CodeUnavailable,
			fmt.Sprintf("vision model returned status %d", resp.StatusCode))
	}

	var completion completionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, dErrors.Wrap(dErrors.CodeUnavailable, "vision model response malformed", err)
	}
	if completion.Error != nil {
		return nil, dErrors.New(dErrors.CodeUnavailable, "vision model error: "+completion.Error.Message)
	}
	if len(completion.Choices) == 0 {
		return nil, dErrors.New(dErrors.CodeUnavailable, "vision model returned no choices")
	}
	return []byte(completion.Choices[0].Message.Content), nil
}
