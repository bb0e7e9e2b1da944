package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsaonboard/internal/application/handler"
	"hsaonboard/internal/application/service"
	appmem "hsaonboard/internal/application/store/memory"
	"hsaonboard/pkg/platform/audit/publisher"
	auditmem "hsaonboard/pkg/platform/audit/store/memory"
	"hsaonboard/pkg/testutil"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	svc := service.New(appmem.New(), publisher.New(auditmem.New()), testutil.NewTestLogger())
	h := handler.New(svc, testutil.NewTestLogger())
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func createBody() map[string]any {
	return map[string]any{
		"full_name":     "Jane Doe",
		"date_of_birth": "1990-05-01",
		"street":        "123 Main St",
		"city":          "Springfield",
		"state":         "IL",
		"zip":           "62704",
		"ssn":           "123-45-6789",
		"employer_name": "Acme Corp",
	}
}

func TestCreateApplicationEndpoint(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", createBody()))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	resp := testutil.UnmarshalResponse[handler.ApplicationResponse](t, rr)
	assert.NotEmpty(t, resp.ID)
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, "***-**-6789", resp.SSNMasked)
}

func TestCreateApplicationRejectsDuplicateSSN(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", createBody()))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", createBody()))
	testutil.AssertStatusAndError(t, rr, http.StatusConflict, "conflict")
}

func TestCreateApplicationValidationError(t *testing.T) {
	router := newRouter(t)

	body := createBody()
	body["state"] = "Illinois"
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", body))
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_error")
}

func TestGetApplicationEndpoint(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", createBody()))
	created := testutil.UnmarshalResponse[handler.ApplicationResponse](t, rr)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/applications/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusOK)

	got := testutil.UnmarshalResponse[handler.ApplicationResponse](t, rr)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Jane Doe", got.FullName)
}

func TestGetApplicationNotFound(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/applications/b7f3f44e-9a3b-4f6e-9a57-1f0cbb6d58a1"))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestGetApplicationInvalidID(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/applications/not-a-uuid"))
	testutil.AssertStatus(t, rr, http.StatusBadRequest)
}

func TestListApplicationsEndpoint(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", createBody()))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	second := createBody()
	second["ssn"] = "987-65-4321"
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", second))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/applications?status=pending"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	list := testutil.UnmarshalResponse[handler.ListApplicationsResponse](t, rr)
	assert.Equal(t, 2, list.Count)
}

func TestDeleteApplicationEndpoint(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", createBody()))
	created := testutil.UnmarshalResponse[handler.ApplicationResponse](t, rr)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodDelete, "/applications/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusNoContent)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/applications/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusNotFound)
}

func TestUpdateApplicationEndpoint(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", createBody()))
	created := testutil.UnmarshalResponse[handler.ApplicationResponse](t, rr)

	body := createBody()
	body["city"] = "Shelbyville"
	rr = testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPut, "/applications/"+created.ID, body))
	testutil.AssertStatus(t, rr, http.StatusOK)

	got := testutil.UnmarshalResponse[handler.ApplicationResponse](t, rr)
	require.Equal(t, "Shelbyville", got.City)
}
