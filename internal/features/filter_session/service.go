package filter_session

import (
	"context"
	"fmt"
	"time"

	"go-agrofleet/internal/config"
	"go-agrofleet/internal/features/inventory"
	ft "go-agrofleet/pkg/filtertoken"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type FilterSessionService interface {
	Create(ctx context.Context, owner string, resource inventory.Resource) (*Snapshot, error)
	Get(ctx context.Context, owner, id string) (*Snapshot, error)
	SetFields(ctx context.Context, owner, id string, fields map[string]string) (*Snapshot, error)
	Apply(ctx context.Context, owner, id string) (*Snapshot, error)
	RemoveToken(ctx context.Context, owner, id, tokenID string) (*Snapshot, error)
	Clear(ctx context.Context, owner, id string) (*Snapshot, error)
	ReloadOptions(ctx context.Context, owner, id string) (*Snapshot, error)
	Page(ctx context.Context, owner, id string, page int) (*Snapshot, error)
	Restore(ctx context.Context, owner, id string, criteria []ft.Criterion) (*Snapshot, error)
	Delete(ctx context.Context, owner, id string) error
	Tokens(ctx context.Context, owner, id string) (inventory.Resource, []ft.Token, error)
	Subscribe(ctx context.Context, owner, id string) (<-chan Snapshot, func(), error)
	Sweep() int
}

type FilterSessionServiceImpl struct {
	Inventory inventory.InventoryService
	Store     *Store
	Hub       *Hub
	Logger    *zap.Logger

	ttl             time.Duration
	pageSize        int
	policy          ft.RefreshPolicy
	exclusiveRanges bool
}

func NewFilterSessionService(
	inv inventory.InventoryService,
	store *Store,
	hub *Hub,
	cfg *config.Config,
	logger *zap.Logger,
) (FilterSessionService, error) {
	policy, err := ft.ParseRefreshPolicy(cfg.RefreshPolicy)
	if err != nil {
		return nil, err
	}
	return &FilterSessionServiceImpl{
		Inventory:       inv,
		Store:           store,
		Hub:             hub,
		Logger:          logger,
		ttl:             cfg.SessionTTL,
		pageSize:        cfg.PageSize,
		policy:          policy,
		exclusiveRanges: cfg.ExclusiveRanges,
	}, nil
}

func (s *FilterSessionServiceImpl) Create(ctx context.Context, owner string, resource inventory.Resource) (*Snapshot, error) {
	if _, err := s.Inventory.Schema(resource); err != nil {
		return nil, err
	}

	sess := &Session{
		ID:        uuid.NewString(),
		Owner:     owner,
		Resource:  resource,
		CreatedAt: time.Now(),
	}
	log := s.Logger.With(zap.String("session_id", sess.ID), zap.String("user_id", owner), zap.String("resource", string(resource)))

	sess.Engine = ft.New(s.fetcher(sess),
		ft.WithOptionsFetcher(func(ctx context.Context) (ft.Catalog, error) {
			return s.Inventory.Options(ctx, resource)
		}),
		ft.WithLogger(log),
		ft.WithRefreshPolicy(s.policy),
		ft.WithExclusiveRanges(s.exclusiveRanges),
	)
	s.Store.Put(sess)

	sess.Engine.LoadOptions(ctx)
	sess.Engine.Page(ctx, 1)

	log.Info("filter session created")
	return s.publish(sess), nil
}

// fetcher runs the consolidated filters against the inventory and keeps the
// page on the session
func (s *FilterSessionServiceImpl) fetcher(sess *Session) ft.Fetcher {
	return func(ctx context.Context, filters ft.Consolidated, page int) {
		result, err := s.Inventory.ListFiltered(ctx, sess.Resource, filters, page, s.pageSize)
		if err != nil {
			s.Logger.Warn("filtered fetch failed",
				zap.String("session_id", sess.ID),
				zap.Error(err),
			)
		}
		sess.setResult(result, err)
	}
}

func (s *FilterSessionServiceImpl) session(owner, id string) (*Session, error) {
	sess, err := s.Store.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Owner != owner {
		return nil, ErrForbidden
	}
	return sess, nil
}

func (s *FilterSessionServiceImpl) publish(sess *Session) *Snapshot {
	snap := sess.snapshot()
	s.Hub.Publish(snap)
	return &snap
}

func (s *FilterSessionServiceImpl) Get(ctx context.Context, owner, id string) (*Snapshot, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	snap := sess.snapshot()
	return &snap, nil
}

// SetFields writes temporary inputs. Every field is checked before any is
// written.
func (s *FilterSessionServiceImpl) SetFields(ctx context.Context, owner, id string, fields map[string]string) (*Snapshot, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	schema, err := s.Inventory.Schema(sess.Resource)
	if err != nil {
		return nil, err
	}
	for k := range fields {
		if !schema.Accepts(ft.Field(k)) {
			return nil, fmt.Errorf("%w: %s on %s", ErrFieldNotAllowed, k, sess.Resource)
		}
	}
	for k, v := range fields {
		sess.Engine.SetField(ft.Field(k), v)
	}
	return s.publish(sess), nil
}

func (s *FilterSessionServiceImpl) Apply(ctx context.Context, owner, id string) (*Snapshot, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	sess.Engine.ApplyCurrent(ctx)
	return s.publish(sess), nil
}

func (s *FilterSessionServiceImpl) RemoveToken(ctx context.Context, owner, id, tokenID string) (*Snapshot, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	sess.Engine.RemoveToken(ctx, tokenID)
	return s.publish(sess), nil
}

func (s *FilterSessionServiceImpl) Clear(ctx context.Context, owner, id string) (*Snapshot, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	sess.Engine.ClearAll(ctx)
	return s.publish(sess), nil
}

func (s *FilterSessionServiceImpl) ReloadOptions(ctx context.Context, owner, id string) (*Snapshot, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	sess.Engine.LoadOptions(ctx)
	return s.publish(sess), nil
}

func (s *FilterSessionServiceImpl) Page(ctx context.Context, owner, id string, page int) (*Snapshot, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	sess.Engine.Page(ctx, page)
	return s.publish(sess), nil
}

func (s *FilterSessionServiceImpl) Restore(ctx context.Context, owner, id string, criteria []ft.Criterion) (*Snapshot, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return nil, err
	}
	schema, err := s.Inventory.Schema(sess.Resource)
	if err != nil {
		return nil, err
	}
	for _, c := range criteria {
		if err := schema.CheckCriterion(c); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFieldNotAllowed, err)
		}
	}
	sess.Engine.Restore(ctx, criteria)
	return s.publish(sess), nil
}

func (s *FilterSessionServiceImpl) Delete(ctx context.Context, owner, id string) error {
	if _, err := s.session(owner, id); err != nil {
		return err
	}
	s.Store.Delete(id)
	s.Hub.Close(id)
	return nil
}

// Tokens returns the resource and active tokens of a session
func (s *FilterSessionServiceImpl) Tokens(ctx context.Context, owner, id string) (inventory.Resource, []ft.Token, error) {
	sess, err := s.session(owner, id)
	if err != nil {
		return "", nil, err
	}
	return sess.Resource, sess.Engine.Tokens(), nil
}

func (s *FilterSessionServiceImpl) Subscribe(ctx context.Context, owner, id string) (<-chan Snapshot, func(), error) {
	if _, err := s.session(owner, id); err != nil {
		return nil, nil, err
	}
	ch, cancel := s.Hub.Subscribe(id)
	return ch, cancel, nil
}

// Sweep evicts idle sessions and disconnects their subscribers
func (s *FilterSessionServiceImpl) Sweep() int {
	evicted := s.Store.Sweep(s.ttl)
	for _, id := range evicted {
		s.Hub.Close(id)
	}
	if len(evicted) > 0 {
		s.Logger.Info("idle filter sessions evicted", zap.Int("count", len(evicted)), zap.Int("live", s.Store.Len()))
	}
	return len(evicted)
}
