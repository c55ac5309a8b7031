package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ankithlg/PeerBridge/internal/dto"
	"github.com/ankithlg/PeerBridge/internal/models"
	appErrors "github.com/ankithlg/PeerBridge/pkg/errors"
	"github.com/ankithlg/PeerBridge/pkg/export"
	"github.com/ankithlg/PeerBridge/pkg/jobs"
	"github.com/ankithlg/PeerBridge/pkg/storage"
)

// JobTypeExportCleanup asks the maintenance queue to sweep expired
// export files off disk.
const JobTypeExportCleanup = "exports.cleanup"

type acceptedConnectionLister interface {
	ListAcceptedForStudent(ctx context.Context, studentID string) ([]models.ConnectionWithCounterpart, error)
}

type exportStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
}

type exportJobQueue interface {
	Enqueue(job jobs.Job) error
}

// ExportService renders a student's accepted connections into a
// downloadable document and hands back a signed, expiring ticket.
type ExportService struct {
	connections acceptedConnectionLister
	csv         *export.CSVExporter
	pdf         *export.PDFExporter
	store       exportStore
	signer      *storage.SignedURLSigner
	queue       exportJobQueue
	logger      *zap.Logger
}

func NewExportService(connections acceptedConnectionLister, store exportStore, signer *storage.SignedURLSigner, queue exportJobQueue, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		connections: connections,
		csv:         export.NewCSVExporter(),
		pdf:         export.NewPDFExporter(),
		store:       store,
		signer:      signer,
		queue:       queue,
		logger:      logger,
	}
}

// CreateConnectionsExport renders the student's accepted connections in
// the requested format, persists the file and returns a download
// ticket. format is "csv" or "pdf".
func (s *ExportService) CreateConnectionsExport(ctx context.Context, studentID, format string) (*dto.ExportTicket, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format != "csv" && format != "pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	accepted, err := s.connections.ListAcceptedForStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list accepted connections")
	}

	rows := make([]dto.ConnectionExportRow, 0, len(accepted))
	for _, conn := range accepted {
		rows = append(rows, dto.ConnectionExportRow{
			Name:           conn.Counterpart.Name,
			Email:          conn.Counterpart.Email,
			PreferredMode:  conn.Counterpart.PreferredMode,
			ConnectedSince: conn.CreatedAt,
		})
	}

	data := export.Dataset{
		Headers: []string{"Name", "Email", "Preferred Mode", "Connected Since"},
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		data.Rows = append(data.Rows, []string{
			row.Name,
			row.Email,
			row.PreferredMode,
			row.ConnectedSince.UTC().Format(time.RFC3339),
		})
	}

	var payload []byte
	switch format {
	case "csv":
		payload, err = s.csv.Render(data)
	case "pdf":
		payload, err = s.pdf.Render(data, "Accepted Connections")
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	exportID := uuid.NewString()
	filename := fmt.Sprintf("connections_%s_%s.%s", studentID, exportID, format)
	relPath, err := s.store.Save(filename, payload)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist export")
	}

	token, expiresAt, err := s.signer.Generate(exportID, relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download token")
	}

	if s.queue != nil {
		if err := s.queue.Enqueue(jobs.Job{
			ID:   exportID,
			Type: JobTypeExportCleanup,
		}); err != nil {
			s.logger.Warn("failed to enqueue export cleanup", zap.Error(err))
		}
	}

	s.logger.Info("export created",
		zap.String("student_id", studentID),
		zap.String("export_id", exportID),
		zap.String("format", format),
		zap.Int("rows", len(data.Rows)))

	return &dto.ExportTicket{
		Token:     token,
		Format:    format,
		ExpiresAt: expiresAt,
	}, nil
}

// ResolveDownload validates a download token and opens the file it
// points at. The caller owns the returned file handle.
func (s *ExportService) ResolveDownload(token string) (*os.File, string, error) {
	_, relPath, _, err := s.signer.Parse(token)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid or expired download token")
	}

	file, err := s.store.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrNotFound, "export no longer available")
	}
	return file, relPath, nil
}
