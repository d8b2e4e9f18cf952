package import_feature

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"go-agrofleet/internal/features/inventory"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// progressEvery is how many rows pass between progress writes
const progressEvery = 100

type ImportService interface {
	PreviewFile(ctx context.Context, file io.Reader, filename string, resource inventory.Resource) (*ImportPreview, error)
	CreateJob(ctx context.Context, userID string, req JobRequest) (*ImportJob, error)
	GetJob(ctx context.Context, userID, id string) (*ImportJob, error)
	GetUserJobs(ctx context.Context, userID string) ([]ImportJob, error)
	ProcessImport(ctx context.Context, jobID string) error
}

type ImportServiceImpl struct {
	ImportRepo ImportRepository
	Inventory  inventory.InventoryService
	Logger     *zap.Logger
}

func NewImportService(importRepo ImportRepository, inv inventory.InventoryService, logger *zap.Logger) ImportService {
	return &ImportServiceImpl{
		ImportRepo: importRepo,
		Inventory:  inv,
		Logger:     logger,
	}
}

func (s *ImportServiceImpl) PreviewFile(ctx context.Context, file io.Reader, filename string, resource inventory.Resource) (*ImportPreview, error) {
	schema, err := s.Inventory.Schema(resource)
	if err != nil {
		return nil, err
	}

	table, err := ReadTable(file, filename)
	if err != nil {
		return nil, err
	}

	sample := table.Rows
	if len(sample) > previewRows {
		sample = sample[:previewRows]
	}
	return &ImportPreview{
		Headers:    table.Headers,
		SampleData: sample,
		TotalRows:  len(table.Rows),
		Columns:    schema.Columns,
		Required:   schema.Required,
	}, nil
}

// CreateJob validates the request and stores a pending job. The script is
// compiled here so a broken one is rejected before any row is read.
func (s *ImportServiceImpl) CreateJob(ctx context.Context, userID string, req JobRequest) (*ImportJob, error) {
	if _, err := s.Inventory.Schema(req.Resource); err != nil {
		return nil, err
	}
	if len(req.Mapping) == 0 {
		return nil, ErrEmptyMapping
	}
	if _, err := NewTransform(req.Script); err != nil {
		return nil, err
	}

	job := &ImportJob{
		ID:            uuid.NewString(),
		UserID:        userID,
		Resource:      req.Resource,
		FileName:      req.FileName,
		FilePath:      req.FilePath,
		ColumnMapping: req.Mapping,
		Script:        req.Script,
	}
	if err := s.ImportRepo.Create(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

func (s *ImportServiceImpl) GetJob(ctx context.Context, userID, id string) (*ImportJob, error) {
	job, err := s.ImportRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.UserID != userID {
		return nil, ErrForbidden
	}
	return job, nil
}

func (s *ImportServiceImpl) GetUserJobs(ctx context.Context, userID string) ([]ImportJob, error) {
	return s.ImportRepo.FindByUserID(ctx, userID, 50)
}

// ProcessImport reads the job's file and creates one item per row. Row
// failures are collected on the job; only file level problems fail it.
func (s *ImportServiceImpl) ProcessImport(ctx context.Context, jobID string) error {
	job, err := s.ImportRepo.Get(ctx, jobID)
	if err != nil {
		return err
	}
	log := s.Logger.With(zap.String("job_id", job.ID), zap.String("resource", string(job.Resource)), zap.String("user_id", job.UserID))

	if err := s.ImportRepo.UpdateStatus(ctx, jobID, ImportStatusProcessing); err != nil {
		return err
	}
	job.Status = ImportStatusProcessing

	table, err := s.readJobFile(job)
	if err != nil {
		return s.fail(ctx, job, err)
	}
	transform, err := NewTransform(job.Script)
	if err != nil {
		return s.fail(ctx, job, err)
	}

	job.TotalRecords = len(table.Rows)
	for i, row := range table.Rows {
		rowNum := i + 2

		rec := make(map[string]any)
		for _, header := range table.Headers {
			attr, ok := job.ColumnMapping[header]
			if !ok || attr == "" {
				continue
			}
			if value, exists := row[header]; exists && value != "" {
				rec[attr] = value
			}
		}

		rec, keep, err := transform.Apply(ctx, rec)
		switch {
		case err != nil:
			job.ErrorCount++
			job.Errors = append(job.Errors, ImportError{Row: rowNum, Field: "script", Message: err.Error()})
		case !keep || len(rec) == 0:
			job.SkippedCount++
		default:
			if _, err := s.Inventory.Create(ctx, job.Resource, rec, job.UserID); err != nil {
				job.ErrorCount++
				job.Errors = append(job.Errors, ImportError{Row: rowNum, Message: err.Error()})
			} else {
				job.SuccessCount++
			}
		}

		job.ProcessedRecords = i + 1
		if job.ProcessedRecords%progressEvery == 0 {
			if err := s.ImportRepo.Update(ctx, job); err != nil {
				log.Warn("failed to store import progress", zap.Error(err))
			}
		}
	}

	job.Status = ImportStatusCompleted
	now := time.Now()
	job.CompletedAt = &now

	log.Info("import completed",
		zap.Int("success", job.SuccessCount),
		zap.Int("skipped", job.SkippedCount),
		zap.Int("errors", job.ErrorCount),
	)
	return s.ImportRepo.Update(ctx, job)
}

func (s *ImportServiceImpl) readJobFile(job *ImportJob) (*Table, error) {
	file, err := os.Open(job.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()
	return ReadTable(file, job.FileName)
}

func (s *ImportServiceImpl) fail(ctx context.Context, job *ImportJob, cause error) error {
	job.Status = ImportStatusFailed
	job.Errors = append(job.Errors, ImportError{Row: 0, Field: "file", Message: cause.Error()})
	now := time.Now()
	job.CompletedAt = &now

	s.Logger.Error("import failed", zap.String("job_id", job.ID), zap.Error(cause))
	if err := s.ImportRepo.Update(ctx, job); err != nil {
		return err
	}
	return cause
}
