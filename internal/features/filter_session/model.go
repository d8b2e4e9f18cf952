package filter_session

import (
	"errors"
	"sync"
	"time"

	"go-agrofleet/internal/features/inventory"
	ft "go-agrofleet/pkg/filtertoken"
)

var (
	ErrSessionNotFound = errors.New("filter session not found")
	ErrForbidden       = errors.New("filter session belongs to another user")
	ErrFieldNotAllowed = errors.New("field not filterable on this resource")
)

// Session is one user's filter panel bound to an inventory resource
type Session struct {
	ID        string
	Owner     string
	Resource  inventory.Resource
	Engine    *ft.Engine
	CreatedAt time.Time

	mu       sync.Mutex
	result   *inventory.Page
	fetchErr string
	lastSeen time.Time
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) setResult(page *inventory.Page, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.fetchErr = err.Error()
		return
	}
	s.result = page
	s.fetchErr = ""
}

// TokenView is a token as shown in the panel
type TokenView struct {
	ft.Token
	Icon string `json:"icon"`
}

// Snapshot is the externally visible state of a session
type Snapshot struct {
	ID        string             `json:"id"`
	Resource  inventory.Resource `json:"resource"`
	Temporary ft.State           `json:"temporary"`
	Tokens    []TokenView        `json:"tokens"`
	Filters   ft.Consolidated    `json:"filters"`
	Query     string             `json:"query"`
	Options   ft.Catalog         `json:"options"`
	Result    *inventory.Page    `json:"result,omitempty"`
	Error     string             `json:"error,omitempty"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func (s *Session) snapshot() Snapshot {
	tokens := s.Engine.Tokens()
	views := make([]TokenView, len(tokens))
	for i, t := range tokens {
		views[i] = TokenView{Token: t, Icon: ft.Icon(t.Field)}
	}
	filters := s.Engine.Consolidated()
	temp := s.Engine.Temporary()
	catalog := s.Engine.Catalog()

	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:        s.ID,
		Resource:  s.Resource,
		Temporary: temp,
		Tokens:    views,
		Filters:   filters,
		Query:     filters.Encode().Encode(),
		Options:   catalog,
		Result:    s.result,
		Error:     s.fetchErr,
		UpdatedAt: s.lastSeen,
	}
}
