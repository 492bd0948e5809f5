package services

import (
	"context"
	"errors"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"apporbit/internal/apperrors"
	"apporbit/internal/models"
	"apporbit/internal/repository"
)

type ReportService struct {
	products ProductStore
	reports  ReportStore
	tx       Transactor
	log      *zap.Logger
	now      Clock
}

func NewReportService(products ProductStore, reports ReportStore, tx Transactor, log *zap.Logger) *ReportService {
	return &ReportService{
		products: products,
		reports:  reports,
		tx:       tx,
		log:      log.Named("reports"),
		now:      systemClock,
	}
}

// FileReport embeds a report snapshot in the product and mirrors it into the
// reports collection under the same id. One report per reporter and product.
func (s *ReportService) FileReport(ctx context.Context, productID, reporterID, reason string) (*models.Report, error) {
	oid, ok := parseObjectID(productID)
	if !ok {
		return nil, apperrors.InvalidReference("productId")
	}
	if strings.TrimSpace(reporterID) == "" {
		return nil, apperrors.Validation("reporterId is required")
	}
	if strings.TrimSpace(reason) == "" {
		reason = models.DefaultReportReason
	}

	report := models.Report{
		ID:         primitive.NewObjectID(),
		ProductID:  oid.Hex(),
		ReporterID: reporterID,
		Reason:     reason,
		Timestamp:  s.now(),
		Status:     models.ReportStatusPending,
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		appended, err := s.products.AppendReport(ctx, oid, report)
		if err != nil {
			return apperrors.Internal("failed to report product", err)
		}
		if !appended {
			return s.explainRejectedReport(ctx, oid, reporterID)
		}

		mirror := report
		// A duplicate key here means a stale standalone copy; the embedded push already
		// succeeded, so it is a partial write like any other mirror failure.
		if err := s.reports.Insert(ctx, &mirror); err != nil {
			s.log.Error("report mirrored on product but not stored",
				zap.String("reportId", report.ID.Hex()),
				zap.String("productId", report.ProductID),
				zap.Error(err),
			)
			return apperrors.Internal("failed to store report", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("product reported", zap.String("productId", report.ProductID), zap.String("reporter", reporterID))
	return &report, nil
}

func (s *ReportService) explainRejectedReport(ctx context.Context, id primitive.ObjectID, reporterID string) error {
	product, err := s.products.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("product")
	}
	if err != nil {
		return apperrors.Internal("failed to load product", err)
	}
	if product.HasReporter(reporterID) {
		return apperrors.DuplicateReport()
	}
	return apperrors.Internal("report was not recorded", errors.New("conditional push matched nothing"))
}

// ListReportedProducts returns products with at least one report, newest first.
func (s *ReportService) ListReportedProducts(ctx context.Context) ([]models.Product, error) {
	items, err := s.products.Find(ctx, repository.ProductQuery{ReportedOnly: true})
	if err != nil {
		return nil, apperrors.Internal("failed to load reported products", err)
	}
	if items == nil {
		items = []models.Product{}
	}
	return items, nil
}
