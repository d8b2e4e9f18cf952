package import_feature

import (
	"errors"
	"time"

	"go-agrofleet/internal/features/inventory"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrJobNotFound       = errors.New("import job not found")
	ErrForbidden         = errors.New("import job belongs to another user")
	ErrEmptyMapping      = errors.New("column mapping is required")
)

type ImportStatus string

const (
	ImportStatusPending    ImportStatus = "pending"
	ImportStatusProcessing ImportStatus = "processing"
	ImportStatusCompleted  ImportStatus = "completed"
	ImportStatusFailed     ImportStatus = "failed"
)

// previewRows is how many data rows a preview returns
const previewRows = 5

// ImportJob loads one uploaded file into an inventory resource
type ImportJob struct {
	ID               string             `json:"id" bson:"_id"`
	UserID           string             `json:"user_id" bson:"user_id"`
	Resource         inventory.Resource `json:"resource" bson:"resource"`
	FileName         string             `json:"file_name" bson:"file_name"`
	FilePath         string             `json:"-" bson:"file_path"`
	Status           ImportStatus       `json:"status" bson:"status"`
	TotalRecords     int                `json:"total_records" bson:"total_records"`
	ProcessedRecords int                `json:"processed_records" bson:"processed_records"`
	SuccessCount     int                `json:"success_count" bson:"success_count"`
	SkippedCount     int                `json:"skipped_count" bson:"skipped_count"`
	ErrorCount       int                `json:"error_count" bson:"error_count"`
	ColumnMapping    map[string]string  `json:"column_mapping" bson:"column_mapping"` // file column -> attribute
	Script           string             `json:"script,omitempty" bson:"script,omitempty"`
	Errors           []ImportError      `json:"errors,omitempty" bson:"errors,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// ImportError is a failure on one row; Row counts the header as row 1
type ImportError struct {
	Row     int    `json:"row" bson:"row"`
	Field   string `json:"field" bson:"field"`
	Message string `json:"message" bson:"message"`
}

// ImportPreview is the head of an uploaded file
type ImportPreview struct {
	Headers    []string         `json:"headers"`
	SampleData []map[string]any `json:"sample_data"`
	TotalRows  int              `json:"total_rows"`
	Columns    []string         `json:"columns"`
	Required   []string         `json:"required"`
}

// JobRequest describes a new import job
type JobRequest struct {
	Resource inventory.Resource
	FileName string
	FilePath string
	Mapping  map[string]string
	Script   string
}
