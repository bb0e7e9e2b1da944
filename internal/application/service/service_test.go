package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsaonboard/internal/application/models"
	"hsaonboard/internal/application/service"
	appmem "hsaonboard/internal/application/store/memory"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
	audit "hsaonboard/pkg/platform/audit"
	"hsaonboard/pkg/platform/audit/publisher"
	auditmem "hsaonboard/pkg/platform/audit/store/memory"
	"hsaonboard/pkg/requestcontext"
	"hsaonboard/pkg/testutil"
)

func newService(t *testing.T) (*service.Service, *auditmem.Store) {
	t.Helper()
	auditStore := auditmem.New()
	return service.New(appmem.New(), publisher.New(auditStore), testutil.NewTestLogger()), auditStore
}

func validApplication(t *testing.T, ssn string) *models.Application {
	t.Helper()
	parsed, err := domain.ParseSSN(ssn)
	require.NoError(t, err)
	return &models.Application{
		FullName:    "Jane Doe",
		DateOfBirth: "1990-05-01",
		Address: models.Address{
			Street: "123 Main St",
			City:   "Springfield",
			State:  "IL",
			Zip:    "62704",
		},
		SSN:          parsed,
		EmployerName: "Acme Corp",
	}
}

func TestCreateAssignsIdentityAndStatus(t *testing.T) {
	svc, auditStore := newService(t)
	ctx := requestcontext.WithTime(context.Background(), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	app, err := svc.Create(ctx, validApplication(t, "123-45-6789"))
	require.NoError(t, err)

	assert.False(t, app.ID.IsNil())
	assert.Equal(t, models.StatusPending, app.Status)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), app.CreatedAt)

	events := auditStore.Events()
	require.Len(t, events, 1)
	assert.Equal(t, string(audit.EventApplicationCreated), events[0].Action)
	assert.Equal(t, app.SSN.Hash(), events[0].SubjectIDHash)
}

func TestCreateRejectsDuplicateSSN(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, validApplication(t, "123-45-6789"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, validApplication(t, "123456789"))
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUpdateOnlyWhilePending(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, validApplication(t, "123-45-6789"))
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, app.ID, models.StatusApproved))

	updated := validApplication(t, "123-45-6789")
	updated.FullName = "Jane A. Doe"
	_, err = svc.Update(ctx, app.ID, updated)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestUpdateReplacesFields(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, validApplication(t, "123-45-6789"))
	require.NoError(t, err)

	updated := validApplication(t, "123-45-6789")
	updated.FullName = "Jane A. Doe"
	updated.Address.City = "Shelbyville"

	got, err := svc.Update(ctx, app.ID, updated)
	require.NoError(t, err)
	assert.Equal(t, "Jane A. Doe", got.FullName)
	assert.Equal(t, "Shelbyville", got.Address.City)
	assert.Equal(t, app.ID, got.ID)
}

func TestDeleteOnlyWhilePending(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, validApplication(t, "123-45-6789"))
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, app.ID, models.StatusRejected))

	err = svc.Delete(ctx, app.ID)
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestDeleteRemovesPendingApplication(t *testing.T) {
	svc, auditStore := newService(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, validApplication(t, "123-45-6789"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, app.ID))

	_, err = svc.Get(ctx, app.ID)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	events := auditStore.Events()
	require.Len(t, events, 2)
	assert.Equal(t, string(audit.EventApplicationDeleted), events[1].Action)
}

func TestListFiltersByStatus(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, validApplication(t, "123-45-6789"))
	require.NoError(t, err)
	second, err := svc.Create(ctx, validApplication(t, "987-65-4321"))
	require.NoError(t, err)

	require.NoError(t, svc.SetStatus(ctx, second.ID, models.StatusApproved))

	pending, err := svc.List(ctx, service.ListFilter{Status: models.StatusPending})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, first.ID, pending[0].ID)

	all, err := svc.List(ctx, service.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.List(context.Background(), service.ListFilter{Status: "bogus"})
	require.Error(t, err)
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}
