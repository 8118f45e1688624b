package service_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	pumpdomain "github.com/smallbiznis/pumpops/internal/pump/domain"
	pumprepo "github.com/smallbiznis/pumpops/internal/pump/repository"
	pumpservice "github.com/smallbiznis/pumpops/internal/pump/service"
	"github.com/smallbiznis/pumpops/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newService(t *testing.T) pumpdomain.Service {
	t.Helper()
	conn, err := db.NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&pumpdomain.Pump{}))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return pumpservice.New(pumpservice.Params{
		DB:    conn,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  pumprepo.Provide(),
	})
}

func TestCreateNormalizesPrefixAndDefaultsStatus(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p, err := svc.Create(ctx, pumpdomain.CreateRequest{Prefix: " px-01 ", OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, "PX-01", p.Prefix)
	assert.Equal(t, pumpdomain.StatusAvailable, p.Status)

	got, err := svc.GetByPrefix(ctx, "px-01")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestCreateRejectsDuplicatePrefix(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	_, err := svc.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-01", OwnerID: "owner-1"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, pumpdomain.CreateRequest{Prefix: "px-01", OwnerID: "owner-2"})
	assert.ErrorIs(t, err, pumpdomain.ErrPrefixTaken)
}

func TestCreateValidation(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, pumpdomain.CreateRequest{OwnerID: "o"})
	assert.ErrorIs(t, err, pumpdomain.ErrInvalidPrefix)

	_, err = svc.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-02"})
	assert.ErrorIs(t, err, pumpdomain.ErrInvalidOwner)

	_, err = svc.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-02", OwnerID: "o", Status: "broken"})
	assert.ErrorIs(t, err, pumpdomain.ErrInvalidStatus)
}

func TestSetStatus(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	p, err := svc.Create(ctx, pumpdomain.CreateRequest{Prefix: "PX-03", OwnerID: "o"})
	require.NoError(t, err)

	updated, err := svc.SetStatus(ctx, p.ID, pumpdomain.StatusInMaintenance)
	require.NoError(t, err)
	assert.Equal(t, pumpdomain.StatusInMaintenance, updated.Status)

	reloaded, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, pumpdomain.StatusInMaintenance, reloaded.Status)

	_, err = svc.SetStatus(ctx, p.ID, "parked")
	assert.ErrorIs(t, err, pumpdomain.ErrInvalidStatus)
}

func TestGetMissingPump(t *testing.T) {
	svc := newService(t)
	_, err := svc.Get(context.Background(), 12345)
	assert.ErrorIs(t, err, pumpdomain.ErrNotFound)

	items, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, items)
}
