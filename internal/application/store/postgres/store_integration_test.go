//go:build integration

package postgres_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hsaonboard/internal/application/models"
	"hsaonboard/internal/application/service"
	"hsaonboard/internal/application/store/postgres"
	"hsaonboard/pkg/domain"
	dErrors "hsaonboard/pkg/domain-errors"
	"hsaonboard/pkg/testutil/containers"
)

func migrations(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "..", "..", "migrations", "0001_init.sql"))
	require.NoError(t, err)
	return path
}

func newApplication(t *testing.T) *models.Application {
	t.Helper()
	ssn, err := domain.ParseSSN("123-45-6789")
	require.NoError(t, err)
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &models.Application{
		ID:          domain.NewApplicationID(),
		FullName:    "Jane Doe",
		DateOfBirth: "1990-05-01",
		Address: models.Address{
			Street: "123 Main St",
			City:   "Springfield",
			State:  "IL",
			Zip:    "62704",
		},
		SSN:          ssn,
		EmployerName: "Acme Corp",
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestStoreRoundTrip(t *testing.T) {
	pc := containers.NewPostgresContainer(t, migrations(t))
	store := postgres.New(pc.Pool)
	ctx := context.Background()

	app := newApplication(t)
	require.NoError(t, store.Create(ctx, app))

	got, err := store.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, app.FullName, got.FullName)
	assert.Equal(t, app.Address, got.Address)
	assert.Equal(t, app.SSN.Digits(), got.SSN.Digits())
	assert.Equal(t, models.StatusPending, got.Status)

	exists, err := store.ExistsBySSNHash(ctx, app.SSN.Hash())
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, store.UpdateStatus(ctx, app.ID, models.StatusApproved))
	got, err = store.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, got.Status)

	listed, err := store.List(ctx, service.ListFilter{Status: models.StatusApproved, Limit: 10})
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, app.ID, listed[0].ID)

	require.NoError(t, store.Delete(ctx, app.ID))
	_, err = store.GetByID(ctx, app.ID)
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(err))
}

func TestStoreUpdatePersistsFields(t *testing.T) {
	pc := containers.NewPostgresContainer(t, migrations(t))
	store := postgres.New(pc.Pool)
	ctx := context.Background()

	app := newApplication(t)
	require.NoError(t, store.Create(ctx, app))

	app.FullName = "Jane A. Doe"
	app.Address.City = "Chatham"
	app.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	require.NoError(t, store.Update(ctx, app))

	got, err := store.GetByID(ctx, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane A. Doe", got.FullName)
	assert.Equal(t, "Chatham", got.Address.City)
}
