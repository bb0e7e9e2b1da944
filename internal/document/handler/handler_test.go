package handler_test

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphandler "hsaonboard/internal/application/handler"
	appservice "hsaonboard/internal/application/service"
	appmem "hsaonboard/internal/application/store/memory"
	docadapters "hsaonboard/internal/document/adapters"
	"hsaonboard/internal/document/handler"
	"hsaonboard/internal/document/ocr"
	docservice "hsaonboard/internal/document/service"
	docmem "hsaonboard/internal/document/store/memory"
	"hsaonboard/pkg/platform/audit/publisher"
	auditmem "hsaonboard/pkg/platform/audit/store/memory"
	"hsaonboard/pkg/testutil"
)

func newRouter(t *testing.T) chi.Router {
	t.Helper()
	logger := testutil.NewTestLogger()
	auditPub := publisher.New(auditmem.New())

	apps := appservice.New(appmem.New(), auditPub, logger)
	docs := docservice.New(docmem.New(), &ocr.MockExtractor{}, docadapters.NewApplicationChecker(apps), auditPub, logger)

	r := chi.NewRouter()
	apphandler.New(apps, logger).Register(r)
	handler.New(docs, logger).Register(r)
	return r
}

func createApplication(t *testing.T, router chi.Router) string {
	t.Helper()
	rr := testutil.DoRequest(router, testutil.NewJSONRequest(t, http.MethodPost, "/applications", map[string]any{
		"full_name":     "Jane Doe",
		"date_of_birth": "1990-05-01",
		"street":        "123 Main St",
		"city":          "Springfield",
		"state":         "IL",
		"zip":           "62704",
		"ssn":           "123-45-6789",
		"employer_name": "Acme Corp",
	}))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	return testutil.UnmarshalResponse[apphandler.ApplicationResponse](t, rr).ID
}

// uploadRequest builds a multipart upload with an explicit part content type.
func uploadRequest(t *testing.T, appID, docType, fileName, contentType string, payload []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	require.NoError(t, mw.WriteField("application_id", appID))
	require.NoError(t, mw.WriteField("document_type", docType))

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadDocumentEndpoint(t *testing.T) {
	router := newRouter(t)
	appID := createApplication(t, router)

	rr := testutil.DoRequest(router, uploadRequest(t, appID, "government_id", "license.jpg", "image/jpeg", []byte("fake image")))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	resp := testutil.UnmarshalResponse[handler.DocumentResponse](t, rr)
	assert.Equal(t, appID, resp.ApplicationID)
	assert.Equal(t, "government_id", resp.Type)
	assert.Equal(t, "completed", resp.Status)
	require.NotNil(t, resp.GovernmentID)
	assert.Equal(t, "Jane Doe", resp.GovernmentID.FullName)
}

func TestUploadRejectsUnknownApplication(t *testing.T) {
	router := newRouter(t)

	rr := testutil.DoRequest(router, uploadRequest(t, "b7f3f44e-9a3b-4f6e-9a57-1f0cbb6d58a1", "government_id", "license.jpg", "image/jpeg", []byte("x")))
	testutil.AssertStatusAndError(t, rr, http.StatusNotFound, "not_found")
}

func TestUploadRejectsBadDocumentType(t *testing.T) {
	router := newRouter(t)
	appID := createApplication(t, router)

	rr := testutil.DoRequest(router, uploadRequest(t, appID, "passport_scan", "license.jpg", "image/jpeg", []byte("x")))
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_error")
}

func TestUploadRejectsUnsupportedContentType(t *testing.T) {
	router := newRouter(t)
	appID := createApplication(t, router)

	rr := testutil.DoRequest(router, uploadRequest(t, appID, "government_id", "notes.txt", "text/plain", []byte("x")))
	testutil.AssertStatusAndError(t, rr, http.StatusUnprocessableEntity, "validation_error")
}

func TestUploadRequiresFilePart(t *testing.T) {
	router := newRouter(t)
	appID := createApplication(t, router)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("application_id", appID))
	require.NoError(t, mw.WriteField("document_type", "government_id"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rr := testutil.DoRequest(router, req)
	testutil.AssertStatusAndError(t, rr, http.StatusBadRequest, "bad_request")
}

func TestGetDocumentEndpoint(t *testing.T) {
	router := newRouter(t)
	appID := createApplication(t, router)

	rr := testutil.DoRequest(router, uploadRequest(t, appID, "employer_proof", "letter.pdf", "application/pdf", []byte("fake pdf")))
	created := testutil.UnmarshalResponse[handler.DocumentResponse](t, rr)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/documents/"+created.ID))
	testutil.AssertStatus(t, rr, http.StatusOK)

	got := testutil.UnmarshalResponse[handler.DocumentResponse](t, rr)
	assert.Equal(t, created.ID, got.ID)
	require.NotNil(t, got.EmployerProof)
	assert.Equal(t, "Acme Corp", got.EmployerProof.EmployerName)
}

func TestListDocumentsEndpoint(t *testing.T) {
	router := newRouter(t)
	appID := createApplication(t, router)

	rr := testutil.DoRequest(router, uploadRequest(t, appID, "government_id", "old.jpg", "image/jpeg", []byte("v1")))
	testutil.AssertStatus(t, rr, http.StatusCreated)
	rr = testutil.DoRequest(router, uploadRequest(t, appID, "government_id", "new.jpg", "image/jpeg", []byte("v2")))
	testutil.AssertStatus(t, rr, http.StatusCreated)

	rr = testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/applications/"+appID+"/documents"))
	testutil.AssertStatus(t, rr, http.StatusOK)

	list := testutil.UnmarshalResponse[handler.ListDocumentsResponse](t, rr)
	assert.Equal(t, 2, list.Count)

	var superseded int
	for _, d := range list.Documents {
		if d.Superseded {
			superseded++
		}
	}
	assert.Equal(t, 1, superseded, "the replaced upload stays in the history as superseded")
}
