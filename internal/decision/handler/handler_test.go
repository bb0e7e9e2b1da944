package handler_test

import (
	"bytes"
	"errors"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmodels "hsaonboard/internal/application/models"
	appservice "hsaonboard/internal/application/service"
	appmem "hsaonboard/internal/application/store/memory"
	"hsaonboard/internal/decision"
	"hsaonboard/internal/decision/adapters"
	"hsaonboard/internal/decision/handler"
	decisionmem "hsaonboard/internal/decision/store/memory"
	docadapters "hsaonboard/internal/document/adapters"
	docmodels "hsaonboard/internal/document/models"
	"hsaonboard/internal/document/ocr"
	docservice "hsaonboard/internal/document/service"
	docmem "hsaonboard/internal/document/store/memory"
	"hsaonboard/internal/platform/auth"
	"hsaonboard/pkg/domain"
	"hsaonboard/pkg/platform/audit/publisher"
	auditmem "hsaonboard/pkg/platform/audit/store/memory"
	"hsaonboard/pkg/testutil"
)

// stubValidator accepts the literal token "reviewer-token" and rejects
// everything else.
type stubValidator struct{}

func (stubValidator) ValidateToken(token string) (*auth.Claims, error) {
	if token != "reviewer-token" {
		return nil, errors.New("unknown token")
	}
	return &auth.Claims{Subject: "reviewer@example.com"}, nil
}

type env struct {
	router chi.Router
	apps   *appservice.Service
	docs   *docservice.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	logger := testutil.NewTestLogger()
	auditStore := auditmem.New()
	auditPub := publisher.New(auditStore)

	apps := appservice.New(appmem.New(), auditPub, logger)
	docs := docservice.New(docmem.New(), &ocr.MockExtractor{}, docadapters.NewApplicationChecker(apps), auditPub, logger)
	svc := decision.NewService(
		decision.NewEngine(decision.NewMatcher(1)),
		adapters.NewApplicationAdapter(apps),
		adapters.NewDocumentAdapter(docs),
		decisionmem.New(),
		auditPub,
		nil,
		logger,
	)

	h := handler.New(svc, auditStore, stubValidator{}, logger)
	r := chi.NewRouter()
	h.Register(r)
	return &env{router: r, apps: apps, docs: docs}
}

func (e *env) seedApplication(t *testing.T) *appmodels.Application {
	t.Helper()
	ssn, err := domain.ParseSSN("123-45-6789")
	require.NoError(t, err)
	app, err := e.apps.Create(t.Context(), &appmodels.Application{
		FullName:    "Jane Doe",
		DateOfBirth: "1990-05-01",
		Address: appmodels.Address{
			Street: "123 Main St",
			City:   "Springfield",
			State:  "IL",
			Zip:    "62704",
		},
		SSN:          ssn,
		EmployerName: "Acme Corp",
	})
	require.NoError(t, err)

	for _, docType := range []docmodels.Type{docmodels.TypeGovernmentID, docmodels.TypeEmployerProof} {
		_, err := e.docs.Upload(t.Context(), app.ID, docType, "scan.jpg", "image/jpeg", 4, bytes.NewReader([]byte("data")))
		require.NoError(t, err)
	}
	return app
}

func authed(req *http.Request) *http.Request {
	req.Header.Set("Authorization", "Bearer reviewer-token")
	return req
}

func TestEvaluateRequiresToken(t *testing.T) {
	e := newEnv(t)

	rr := testutil.DoRequest(e.router, testutil.NewJSONRequest(t, http.MethodPost, "/decisions/evaluate",
		map[string]any{"application_id": "b7f3f44e-9a3b-4f6e-9a57-1f0cbb6d58a1"}))
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestEvaluateRejectsBadToken(t *testing.T) {
	e := newEnv(t)

	req := testutil.NewJSONRequest(t, http.MethodPost, "/decisions/evaluate",
		map[string]any{"application_id": "b7f3f44e-9a3b-4f6e-9a57-1f0cbb6d58a1"})
	req.Header.Set("Authorization", "Bearer forged")
	rr := testutil.DoRequest(e.router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusUnauthorized, "unauthorized")
}

func TestEvaluateEndpoint(t *testing.T) {
	e := newEnv(t)
	app := e.seedApplication(t)

	rr := testutil.DoRequest(e.router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/decisions/evaluate",
		map[string]any{"application_id": app.ID.String()})))
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[handler.DecisionResponse](t, rr)
	assert.Equal(t, app.ID.String(), resp.ApplicationID)
	assert.Equal(t, "approve", resp.Outcome)
	assert.Equal(t, "All data matches; ID valid.", resp.Explanation)
	assert.Equal(t, "reviewer@example.com", resp.EvaluatedBy)
	assert.Len(t, resp.Matches, 4)
}

func TestEvaluateUnknownApplication(t *testing.T) {
	e := newEnv(t)

	rr := testutil.DoRequest(e.router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/decisions/evaluate",
		map[string]any{"application_id": "b7f3f44e-9a3b-4f6e-9a57-1f0cbb6d58a1"})))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestEvaluateInvalidApplicationID(t *testing.T) {
	e := newEnv(t)

	rr := testutil.DoRequest(e.router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/decisions/evaluate",
		map[string]any{"application_id": "not-a-uuid"})))
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "invalid_input")
}

func TestLatestDecisionEndpoint(t *testing.T) {
	e := newEnv(t)
	app := e.seedApplication(t)

	rr := testutil.DoRequest(e.router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/decisions/evaluate",
		map[string]any{"application_id": app.ID.String()})))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(e.router, authed(testutil.NewRequest(t, http.MethodGet, "/decisions/"+app.ID.String())))
	testutil.AssertStatus(t, rr, http.StatusOK)

	resp := testutil.UnmarshalResponse[handler.DecisionResponse](t, rr)
	assert.Equal(t, "approve", resp.Outcome)
}

func TestLatestDecisionNotFound(t *testing.T) {
	e := newEnv(t)
	app := e.seedApplication(t)

	rr := testutil.DoRequest(e.router, authed(testutil.NewRequest(t, http.MethodGet, "/decisions/"+app.ID.String())))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestAuditTrailEndpoint(t *testing.T) {
	e := newEnv(t)
	app := e.seedApplication(t)

	rr := testutil.DoRequest(e.router, authed(testutil.NewJSONRequest(t, http.MethodPost, "/decisions/evaluate",
		map[string]any{"application_id": app.ID.String()})))
	testutil.AssertStatus(t, rr, http.StatusOK)

	rr = testutil.DoRequest(e.router, authed(testutil.NewRequest(t, http.MethodGet, "/decisions/"+app.ID.String()+"/audit")))
	testutil.AssertStatus(t, rr, http.StatusOK)

	trail := testutil.UnmarshalResponse[handler.AuditTrailResponse](t, rr)
	assert.Equal(t, app.ID.String(), trail.ApplicationID)
	require.NotEmpty(t, trail.Events)

	var actions []string
	for _, ev := range trail.Events {
		actions = append(actions, ev.Action)
	}
	assert.Contains(t, actions, "decision_made")
	assert.Contains(t, actions, "application_created")
	assert.Contains(t, actions, "document_uploaded")
}
