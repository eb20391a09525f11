package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
	"github.com/AshiqAbdulkhader/FSAD-version2/pkg/export"
)

// ExportFormat names a supported export encoding.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

// ExportResult carries rendered bytes plus response metadata.
type ExportResult struct {
	Content     []byte
	ContentType string
	Filename    string
}

type requestLister interface {
	List(ctx context.Context, actor *models.JWTClaims, status *models.RequestStatus) ([]models.BorrowingRequestDetail, error)
}

// ExportService renders borrowing-request listings into downloadable files.
type ExportService struct {
	requests requestLister
	csv      *export.CSVExporter
	pdf      *export.PDFExporter
	logger   *zap.Logger
	now      func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(requests requestLister, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		requests: requests,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		logger:   logger,
		now:      time.Now,
	}
}

// Requests exports the caller's visible request list in the given format.
// Restricted to staff/admin.
func (s *ExportService) Requests(ctx context.Context, actor *models.JWTClaims, format ExportFormat, status *models.RequestStatus) (*ExportResult, error) {
	if err := requireManager(actor); err != nil {
		return nil, err
	}

	requests, err := s.requests.List(ctx, actor, status)
	if err != nil {
		return nil, err
	}

	dataset := buildRequestDataset(requests)
	stamp := s.now().UTC().Format("20060102")

	switch format {
	case ExportCSV:
		content, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{Content: content, ContentType: "text/csv", Filename: "borrowing-requests-" + stamp + ".csv"}, nil
	case ExportPDF:
		content, err := s.pdf.Render(dataset, "Borrowing Requests")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{Content: content, ContentType: "application/pdf", Filename: "borrowing-requests-" + stamp + ".pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func buildRequestDataset(requests []models.BorrowingRequestDetail) export.Dataset {
	headers := []string{"Requester", "Email", "Equipment", "Start", "End", "Status", "Requested At"}
	rows := make([]map[string]string, 0, len(requests))
	for _, req := range requests {
		rows = append(rows, map[string]string{
			"Requester":    req.UserName,
			"Email":        req.UserEmail,
			"Equipment":    req.EquipmentName,
			"Start":        req.StartDate.String(),
			"End":          req.EndDate.String(),
			"Status":       strings.ToLower(string(req.Status)),
			"Requested At": req.RequestDate.UTC().Format(time.RFC3339),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}
