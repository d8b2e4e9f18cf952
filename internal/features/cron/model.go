package cron_feature

import (
	"context"
	"errors"
	"time"
)

var (
	ErrJobNotFound = errors.New("cron job not found")
	ErrJobRunning  = errors.New("cron job is already running")
)

const (
	JobSessionSweep   = "session_sweep"
	JobCatalogRefresh = "catalog_refresh"
)

const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// JobFunc runs one execution and reports how many items it touched
type JobFunc func(ctx context.Context) (int, error)

// CronJob is a registered maintenance job
type CronJob struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Schedule    string     `json:"schedule"`
	Active      bool       `json:"active"`
	LastRun     *time.Time `json:"last_run,omitempty"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	LastStatus  string     `json:"last_status,omitempty"`
	LastError   string     `json:"last_error,omitempty"`
	Running     bool       `json:"running"`

	run JobFunc
}

// CronJobLog represents a single execution of a cron job
type CronJobLog struct {
	ID              string     `json:"id" bson:"_id"`
	CronJobName     string     `json:"cron_job_name" bson:"cron_job_name"`
	StartTime       time.Time  `json:"start_time" bson:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty" bson:"end_time,omitempty"`
	Status          string     `json:"status" bson:"status"`
	RecordsAffected int        `json:"records_affected" bson:"records_affected"`
	Error           string     `json:"error,omitempty" bson:"error,omitempty"`
	Manual          bool       `json:"manual" bson:"manual"`
	CreatedAt       time.Time  `json:"created_at" bson:"created_at"`
}
