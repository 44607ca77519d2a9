package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	blackoutdomain "github.com/smallbiznis/reservo/internal/blackout/domain"
	blackoutrepo "github.com/smallbiznis/reservo/internal/blackout/repository"
	blackoutservice "github.com/smallbiznis/reservo/internal/blackout/service"
	"github.com/smallbiznis/reservo/internal/tenantctx"
	"github.com/smallbiznis/reservo/pkg/dateonly"
)

func setupBlackoutTest(t *testing.T) (blackoutdomain.Service, context.Context) {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(
		`CREATE TABLE blackouts (
			id BIGINT PRIMARY KEY,
			tenant_id BIGINT NOT NULL,
			date DATE NOT NULL,
			reason TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		)`).Error)
	require.NoError(t, db.Exec(
		`CREATE UNIQUE INDEX ux_blackouts_tenant_date ON blackouts(tenant_id, date)`).Error)

	node, err := snowflake.NewNode(10)
	require.NoError(t, err)

	svc := blackoutservice.New(blackoutservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  blackoutrepo.Provide(),
	})
	ctx := tenantctx.WithTenantID(context.Background(), node.Generate())
	return svc, ctx
}

func TestCreateBlackout(t *testing.T) {
	svc, ctx := setupBlackoutTest(t)

	blackout, err := svc.Create(ctx, blackoutdomain.CreateBlackoutRequest{
		Date:   "2026-03-15",
		Reason: "  maintenance  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-03-15", blackout.Date.String())
	assert.Equal(t, "maintenance", blackout.Reason)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, blackout.ID, list[0].ID)
}

func TestCreateBlackoutDuplicateDate(t *testing.T) {
	svc, ctx := setupBlackoutTest(t)

	_, err := svc.Create(ctx, blackoutdomain.CreateBlackoutRequest{Date: "2026-03-15"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, blackoutdomain.CreateBlackoutRequest{Date: "2026-03-15"})
	assert.ErrorIs(t, err, blackoutdomain.ErrBlackoutExists)
}

func TestCreateBlackoutInvalidDate(t *testing.T) {
	svc, ctx := setupBlackoutTest(t)

	_, err := svc.Create(ctx, blackoutdomain.CreateBlackoutRequest{Date: "15/03/2026"})
	assert.ErrorIs(t, err, blackoutdomain.ErrInvalidDate)
}

func TestDatesInRange(t *testing.T) {
	svc, ctx := setupBlackoutTest(t)

	for _, date := range []string{"2026-03-10", "2026-03-20", "2026-04-05"} {
		_, err := svc.Create(ctx, blackoutdomain.CreateBlackoutRequest{Date: date})
		require.NoError(t, err)
	}

	dates, err := svc.DatesInRange(ctx, "2026-03-01", "2026-03-31")
	require.NoError(t, err)
	assert.Len(t, dates, 2)
	assert.Contains(t, dates, dateonly.Date("2026-03-10"))
	assert.Contains(t, dates, dateonly.Date("2026-03-20"))
	assert.NotContains(t, dates, dateonly.Date("2026-04-05"))
}

func TestDatesInRangeInvalidBounds(t *testing.T) {
	svc, ctx := setupBlackoutTest(t)

	_, err := svc.DatesInRange(ctx, "2026-03-31", "2026-03-01")
	assert.ErrorIs(t, err, blackoutdomain.ErrInvalidDate)
}

func TestDeleteBlackout(t *testing.T) {
	svc, ctx := setupBlackoutTest(t)

	blackout, err := svc.Create(ctx, blackoutdomain.CreateBlackoutRequest{Date: "2026-03-15"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, blackout.ID.String()))

	err = svc.Delete(ctx, blackout.ID.String())
	assert.ErrorIs(t, err, blackoutdomain.ErrNotFound)
}

func TestBlackoutRequiresTenant(t *testing.T) {
	svc, _ := setupBlackoutTest(t)

	_, err := svc.List(context.Background())
	assert.ErrorIs(t, err, blackoutdomain.ErrInvalidTenant)
}
