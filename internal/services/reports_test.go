package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"apporbit/internal/apperrors"
	"apporbit/internal/models"
	"apporbit/internal/repository/memory"
)

func TestFileReportMirrorsSnapshot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "orbit", "owner@apporbit.test", models.StatusApproved, 0)

	report, err := env.reports.FileReport(ctx, p.ID.Hex(), "r1", "")
	require.NoError(t, err)
	assert.Equal(t, models.DefaultReportReason, report.Reason)
	assert.Equal(t, models.ReportStatusPending, report.Status)
	assert.Equal(t, testNow, report.Timestamp)

	got, err := env.products.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	require.Len(t, got.Reports, 1)
	assert.Equal(t, *report, got.Reports[0])

	n, err := env.store.Reports.CountByProduct(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	reported, err := env.reports.ListReportedProducts(ctx)
	require.NoError(t, err)
	require.Len(t, reported, 1)
	assert.Equal(t, p.ID, reported[0].ID)
}

func TestFileReportErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "orbit", "owner@apporbit.test", models.StatusApproved, 0)

	_, err := env.reports.FileReport(ctx, "xyz", "r1", "")
	assert.Equal(t, "INVALID_REFERENCE", apperrors.Code(err))

	_, err = env.reports.FileReport(ctx, primitive.NewObjectID().Hex(), "r1", "")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = env.reports.FileReport(ctx, p.ID.Hex(), "r1", "spam")
	require.NoError(t, err)
	_, err = env.reports.FileReport(ctx, p.ID.Hex(), "r1", "again")
	assert.Equal(t, "DUPLICATE_REPORT", apperrors.Code(err))

	got, err := env.products.Get(ctx, p.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, got.Reports, 1)
}

func TestFileReportSurfacesMirrorFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "orbit", "owner@apporbit.test", models.StatusApproved, 0)
	svc := NewReportService(env.store.Products,
		failingReports{ReportStore: env.store.Reports, err: errors.New("write concern timeout")},
		memory.Transactor{}, zap.NewNop())
	svc.now = env.reports.now

	_, err := svc.FileReport(ctx, p.ID.Hex(), "r1", "")
	assert.Equal(t, 500, apperrors.Status(err))
}

func TestFileReportStaleMirrorIsInternalError(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedProduct(t, "orbit", "owner@apporbit.test", models.StatusApproved, 0)

	stale := models.Report{ProductID: p.ID.Hex(), ReporterID: "r1", Reason: "old", Status: models.ReportStatusPending}
	require.NoError(t, env.store.Reports.Insert(ctx, &stale))

	core, logs := observer.New(zap.ErrorLevel)
	svc := NewReportService(env.store.Products, env.store.Reports, memory.Transactor{}, zap.New(core))
	svc.now = env.reports.now

	_, err := svc.FileReport(ctx, p.ID.Hex(), "r1", "")
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, apperrors.Status(err))
	assert.NotEqual(t, "DUPLICATE_REPORT", apperrors.Code(err))
	assert.Equal(t, 1, logs.FilterMessage("report mirrored on product but not stored").Len())
}
