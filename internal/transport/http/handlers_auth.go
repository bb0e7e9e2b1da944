package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"hsaonboard/internal/platform/auth"
	dErrors "hsaonboard/pkg/domain-errors"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/platform/httputil"
	"hsaonboard/pkg/requestcontext"
)

// AuditPublisher emits auth events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// tokenRequest is the POST /auth/token body: the reviewer identifies
// themselves and presents the shared reviewer secret.
type tokenRequest struct {
	Subject string `json:"subject"`
	Secret  string `json:"secret"`
}

func (r *tokenRequest) Validate() error {
	r.Subject = strings.TrimSpace(r.Subject)
	if r.Subject == "" {
		return dErrors.New(dErrors.CodeValidation, "subject is required")
	}
	if r.Secret == "" {
		return dErrors.New(dErrors.CodeValidation, "secret is required")
	}
	return nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// TokenHandler exchanges the reviewer secret for a short-lived JWT. Failed
// attempts are audited as security events.
func TokenHandler(issuer *auth.Issuer, auditPub AuditPublisher, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := requestcontext.RequestID(ctx)

		req, ok := httputil.DecodeAndPrepare[tokenRequest](w, r, logger, ctx, requestID)
		if !ok {
			return
		}

		now := time.Now()
		token, err := issuer.Issue(req.Subject, req.Secret, now)
		if err != nil {
			logger.WarnContext(ctx, "reviewer token issuance refused",
				"request_id", requestID,
				"subject", req.Subject,
			)
			emit(ctx, auditPub, logger, audit.EventAuthFailed, req.Subject, now)
			httputil.WriteError(w, err)
			return
		}

		emit(ctx, auditPub, logger, audit.EventReviewerTokenIssued, req.Subject, now)
		httputil.WriteJSON(w, http.StatusOK, tokenResponse{
			AccessToken: token,
			TokenType:   "Bearer",
			ExpiresIn:   int64(time.Hour / time.Second),
		})
	}
}

func emit(ctx context.Context, auditPub AuditPublisher, logger *slog.Logger, action audit.AuditEvent, subject string, now time.Time) {
	err := auditPub.Emit(ctx, audit.Event{
		Timestamp: now,
		Subject:   "auth",
		Action:    string(action),
		ActorID:   subject,
		RequestID: requestcontext.RequestID(ctx),
		ClientIP:  requestcontext.ClientIP(ctx),
		UserAgent: requestcontext.UserAgent(ctx),
	})
	if err != nil {
		logger.WarnContext(ctx, "audit emit failed for auth event",
			"action", action,
			"error", err,
		)
	}
}
