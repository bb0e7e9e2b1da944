package service_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsaonboard/internal/document/models"
	"hsaonboard/internal/document/ocr"
	"hsaonboard/internal/document/service"
	docmem "hsaonboard/internal/document/store/memory"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
	"hsaonboard/pkg/platform/audit/publisher"
	auditmem "hsaonboard/pkg/platform/audit/store/memory"
	"hsaonboard/pkg/requestcontext"
	"hsaonboard/pkg/testutil"
)

// okChecker accepts every application ID.
type okChecker struct{}

func (okChecker) Exists(ctx context.Context, id domain.ApplicationID) error { return nil }

// missingChecker rejects every application ID.
type missingChecker struct{}

func (missingChecker) Exists(ctx context.Context, id domain.ApplicationID) error {
	return dErrors.New(dErrors.CodeNotFound, "application not found")
}

func newService(extractor ocr.Extractor) (*service.Service, *auditmem.Store) {
	auditStore := auditmem.New()
	svc := service.New(docmem.New(), extractor, okChecker{}, publisher.New(auditStore), testutil.NewTestLogger())
	return svc, auditStore
}

func uploadCtx(day int) context.Context {
	return requestcontext.WithTime(context.Background(), time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC))
}

func TestUploadExtractsGovernmentID(t *testing.T) {
	svc, auditStore := newService(&ocr.MockExtractor{})
	appID := domain.NewApplicationID()

	doc, err := svc.Upload(uploadCtx(1), appID, models.TypeGovernmentID, "license.jpg", "image/jpeg", 4, bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	assert.Equal(t, models.StatusCompleted, doc.Status)
	require.NotNil(t, doc.GovernmentID)
	assert.Equal(t, "Jane Doe", doc.GovernmentID.FullName)
	assert.False(t, doc.Superseded)

	actions := make(map[string]int)
	for _, e := range auditStore.Events() {
		actions[e.Action]++
	}
	assert.Equal(t, 1, actions["document_uploaded"])
	assert.Equal(t, 1, actions["document_extracted"])
}

func TestUploadFailedExtractionIsNotAnError(t *testing.T) {
	svc, auditStore := newService(&ocr.MockExtractor{Err: errors.New("vision model timeout")})
	appID := domain.NewApplicationID()

	doc, err := svc.Upload(uploadCtx(1), appID, models.TypeGovernmentID, "blurry.jpg", "image/jpeg", 4, bytes.NewReader([]byte("data")))
	require.NoError(t, err, "a failed extraction is a stored document, not an upload error")

	assert.Equal(t, models.StatusFailed, doc.Status)
	assert.Equal(t, "vision model timeout", doc.ErrorMessage)
	assert.Nil(t, doc.GovernmentID)

	var failed int
	for _, e := range auditStore.Events() {
		if e.Action == "document_extraction_failed" {
			failed++
		}
	}
	assert.Equal(t, 1, failed)
}

func TestUploadValidation(t *testing.T) {
	svc, _ := newService(&ocr.MockExtractor{})
	appID := domain.NewApplicationID()

	tests := []struct {
		name        string
		docType     models.Type
		contentType string
		size        int64
		body        string
		wantCode    dErrors.Code
	}{
		{"unknown type", "passport_scan", "image/jpeg", 4, "data", dErrors.CodeValidation},
		{"declared size over limit", models.TypeGovernmentID, "image/jpeg", service.MaxUploadBytes + 1, "data", dErrors.CodeValidation},
		{"unsupported content type", models.TypeGovernmentID, "text/html", 4, "data", dErrors.CodeValidation},
		{"empty file", models.TypeGovernmentID, "image/jpeg", 0, "", dErrors.CodeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Upload(uploadCtx(1), appID, tt.docType, "file", tt.contentType, tt.size, strings.NewReader(tt.body))
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, dErrors.CodeOf(err))
		})
	}
}

func TestUploadRequiresExistingApplication(t *testing.T) {
	svc := service.New(docmem.New(), &ocr.MockExtractor{}, missingChecker{}, publisher.New(auditmem.New()), testutil.NewTestLogger())

	_, err := svc.Upload(uploadCtx(1), domain.NewApplicationID(), models.TypeGovernmentID, "license.jpg", "image/jpeg", 4, bytes.NewReader([]byte("data")))
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestUploadSupersedesPrior(t *testing.T) {
	svc, _ := newService(&ocr.MockExtractor{})
	appID := domain.NewApplicationID()

	first, err := svc.Upload(uploadCtx(1), appID, models.TypeGovernmentID, "old.jpg", "image/jpeg", 4, bytes.NewReader([]byte("data")))
	require.NoError(t, err)
	second, err := svc.Upload(uploadCtx(2), appID, models.TypeGovernmentID, "new.jpg", "image/jpeg", 4, bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	latest, err := svc.LatestByType(uploadCtx(2), appID, models.TypeGovernmentID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	// The superseded version stays in the history.
	all, err := svc.ListByApplication(uploadCtx(2), appID)
	require.NoError(t, err)
	require.Len(t, all, 2)

	stored, err := svc.Get(uploadCtx(2), first.ID)
	require.NoError(t, err)
	assert.True(t, stored.Superseded)
}

func TestUploadDifferentTypesDoNotSupersede(t *testing.T) {
	svc, _ := newService(&ocr.MockExtractor{})
	appID := domain.NewApplicationID()

	_, err := svc.Upload(uploadCtx(1), appID, models.TypeGovernmentID, "license.jpg", "image/jpeg", 4, bytes.NewReader([]byte("data")))
	require.NoError(t, err)
	_, err = svc.Upload(uploadCtx(2), appID, models.TypeEmployerProof, "letter.pdf", "application/pdf", 4, bytes.NewReader([]byte("data")))
	require.NoError(t, err)

	id, err := svc.LatestByType(uploadCtx(2), appID, models.TypeGovernmentID)
	require.NoError(t, err)
	assert.False(t, id.Superseded)
}

func TestLatestByTypeRejectsUnknownType(t *testing.T) {
	svc, _ := newService(&ocr.MockExtractor{})

	_, err := svc.LatestByType(context.Background(), domain.NewApplicationID(), "passport_scan")
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeBadRequest, dErrors.CodeOf(err))
}

func TestGetUnknownDocument(t *testing.T) {
	svc, _ := newService(&ocr.MockExtractor{})

	_, err := svc.Get(context.Background(), domain.NewDocumentID())
	require.Error(t, err)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}
