package audit

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryAudit struct {
	logs        []AuditLog
	lastFilters map[string]string
	lastLimit   int64
	lastOffset  int64
}

func (m *memoryAudit) Create(_ context.Context, log AuditLog) error {
	m.logs = append(m.logs, log)
	return nil
}

func (m *memoryAudit) List(_ context.Context, filters map[string]string, limit, offset int64) ([]AuditLog, error) {
	m.lastFilters, m.lastLimit, m.lastOffset = filters, limit, offset
	return m.logs, nil
}

func TestLogChange(t *testing.T) {
	repo := &memoryAudit{}
	svc := &AuditServiceImpl{Repo: repo, now: func() time.Time { return time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC) }}

	require.NoError(t, svc.LogChange(context.Background(), "update", "maquinas", "m1", "", map[string]any{"estado": "Operativa"}))
	require.Len(t, repo.logs, 1)
	log := repo.logs[0]
	assert.NotEmpty(t, log.ID)
	assert.Equal(t, systemActor, log.ActorID)
	assert.Equal(t, "maquinas", log.Resource)
	assert.Equal(t, "Operativa", log.Changes["estado"])
	assert.Equal(t, 2024, log.Timestamp.Year())
}

func TestListLogsPaging(t *testing.T) {
	repo := &memoryAudit{}
	svc := NewAuditService(repo)

	_, err := svc.ListLogs(context.Background(), nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(10), repo.lastLimit)
	assert.Equal(t, int64(0), repo.lastOffset)

	_, err = svc.ListLogs(context.Background(), nil, 3, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(40), repo.lastOffset)
}

func TestAuditController(t *testing.T) {
	repo := &memoryAudit{logs: []AuditLog{{ID: "a1", Action: "create", Resource: "repuestos"}}}
	app := fiber.New()
	app.Get("/api/audit-logs", NewAuditController(NewAuditService(repo)).ListLogs)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/audit-logs?resource=repuestos&page=2&limit=5", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "repuestos", repo.lastFilters["resource"])
	assert.Equal(t, int64(5), repo.lastOffset)

	var logs []AuditLog
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "a1", logs[0].ID)
}
