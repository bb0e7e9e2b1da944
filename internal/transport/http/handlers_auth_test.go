package httptransport_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hsaonboard/internal/platform/auth"
	httptransport "hsaonboard/internal/transport/http"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/platform/audit/publisher"
	auditmem "hsaonboard/pkg/platform/audit/store/memory"
	"hsaonboard/pkg/testutil"
)

const reviewerSecret = "correct-horse-battery-staple"

func newAuthRouter(t *testing.T) (http.Handler, *auditmem.Store) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(reviewerSecret), bcrypt.MinCost)
	require.NoError(t, err)

	issuer := auth.NewIssuer("test-signing-key", string(hash))
	auditStore := auditmem.New()

	router := httptransport.NewRouter(httptransport.Options{
		TokenHandler: httptransport.TokenHandler(issuer, publisher.New(auditStore), testutil.NewTestLogger()),
		Logger:       testutil.NewTestLogger(),
	})
	return router, auditStore
}

func TestTokenExchange(t *testing.T) {
	router, auditStore := newAuthRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", map[string]any{
		"subject": "reviewer@example.com",
		"secret":  reviewerSecret,
	}))
	testutil.AssertStatus(t, rr, http.StatusOK)

	body := testutil.UnmarshalResponse[map[string]any](t, rr)
	token, _ := (*body)["access_token"].(string)
	require.NotEmpty(t, token)
	assert.Equal(t, "Bearer", (*body)["token_type"])

	// The issued token round-trips through validation.
	issuer := auth.NewIssuer("test-signing-key", "")
	claims, err := issuer.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reviewer@example.com", claims.Subject)

	events := auditStore.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventReviewerTokenIssued), events[0].Action)
	assert.Equal(t, "reviewer@example.com", events[0].ActorID)
}

func TestTokenExchangeRejectsWrongSecret(t *testing.T) {
	router, auditStore := newAuthRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", map[string]any{
		"subject": "reviewer@example.com",
		"secret":  "guess",
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")

	events := auditStore.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventAuthFailed), events[0].Action)
}

func TestTokenExchangeRequiresSubjectAndSecret(t *testing.T) {
	router, _ := newAuthRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/auth/token", map[string]any{
		"subject": "  ",
		"secret":  reviewerSecret,
	}))
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_error")
}

type failingChecker struct{}

func (failingChecker) Health(ctx context.Context) error { return errors.New("connection refused") }

type okChecker struct{}

func (okChecker) Health(ctx context.Context) error { return nil }

func TestHealthEndpoint(t *testing.T) {
	router := httptransport.NewRouter(httptransport.Options{
		Health: map[string]httptransport.HealthChecker{
			"postgres": okChecker{},
			"redis":    nil,
		},
		Logger: testutil.NewTestLogger(),
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusOK)
	testutil.AssertJSONContains(t, rr, "status", "ok")
	testutil.AssertJSONContains(t, rr, "redis", "disabled")
}

func TestHealthEndpointDegraded(t *testing.T) {
	router := httptransport.NewRouter(httptransport.Options{
		Health: map[string]httptransport.HealthChecker{
			"postgres": failingChecker{},
		},
		Logger: testutil.NewTestLogger(),
	})

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
	testutil.AssertStatus(t, rr, http.StatusServiceUnavailable)
	testutil.AssertJSONContains(t, rr, "status", "degraded")
}
