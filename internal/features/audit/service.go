package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const systemActor = "system"

type AuditService interface {
	LogChange(ctx context.Context, action, resource, recordID, actorID string, changes map[string]any) error
	ListLogs(ctx context.Context, filters map[string]string, page, limit int64) ([]AuditLog, error)
}

type AuditServiceImpl struct {
	Repo AuditRepository
	now  func() time.Time
}

func NewAuditService(repo AuditRepository) AuditService {
	return &AuditServiceImpl{
		Repo: repo,
		now:  time.Now,
	}
}

func (s *AuditServiceImpl) LogChange(ctx context.Context, action, resource, recordID, actorID string, changes map[string]any) error {
	if actorID == "" {
		actorID = systemActor
	}

	log := AuditLog{
		ID:        uuid.NewString(),
		Action:    action,
		Resource:  resource,
		RecordID:  recordID,
		ActorID:   actorID,
		Changes:   changes,
		Timestamp: s.now().UTC(),
	}

	return s.Repo.Create(ctx, log)
}

func (s *AuditServiceImpl) ListLogs(ctx context.Context, filters map[string]string, page, limit int64) ([]AuditLog, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}
	offset := (page - 1) * limit
	return s.Repo.List(ctx, filters, limit, offset)
}
