package handler

import (
	"hsaonboard/pkg/domain"
)

// EvaluateRequest is the POST /decisions/evaluate body.
type EvaluateRequest struct {
	ApplicationID string `json:"application_id"`

	parsedID domain.ApplicationID
}

func (r *EvaluateRequest) Validate() error {
	id, err := domain.ParseApplicationID(r.ApplicationID)
	if err != nil {
		return err
	}
	r.parsedID = id
	return nil
}
