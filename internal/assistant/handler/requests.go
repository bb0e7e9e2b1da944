package handler

import (
	"strings"

	"hsaonboard/pkg/domain"
)

// AskRequest is the POST /assistant/ask body. The application link is
// optional; anonymous questions are allowed.
type AskRequest struct {
	Question      string `json:"question"`
	Context       string `json:"context,omitempty"`
	ApplicationID string `json:"application_id,omitempty"`

	parsedAppID domain.ApplicationID
}

func (r *AskRequest) Validate() error {
	r.Question = strings.TrimSpace(r.Question)
	r.Context = strings.TrimSpace(r.Context)
	if r.ApplicationID != "" {
		id, err := domain.ParseApplicationID(r.ApplicationID)
		if err != nil {
			return err
		}
		r.parsedAppID = id
	}
	return nil
}
