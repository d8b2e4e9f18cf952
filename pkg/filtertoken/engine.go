package filtertoken

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Fetcher receives the consolidated filters after the active tokens change.
// The engine ignores whatever the fetch does with them.
type Fetcher func(ctx context.Context, filters Consolidated, page int)

// OptionsFetcher loads the options catalog.
type OptionsFetcher func(ctx context.Context) (Catalog, error)

// ErrorReporter receives failures that the engine recovers from locally.
type ErrorReporter func(err error)

// RefreshPolicy decides when a mutation calls the Fetcher.
type RefreshPolicy int

const (
	// RefreshSource fetches after ApplyCurrent only when a token was added,
	// and after every RemoveToken and ClearAll, even when nothing changed.
	RefreshSource RefreshPolicy = iota
	// RefreshOnChange fetches only when the active token list changed.
	RefreshOnChange
	// RefreshOnSubmit fetches after every ApplyCurrent that had input, even
	// if all of it was duplicate, and after every RemoveToken and ClearAll.
	RefreshOnSubmit
)

// ParseRefreshPolicy maps a configuration string to a RefreshPolicy.
func ParseRefreshPolicy(s string) (RefreshPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "source":
		return RefreshSource, nil
	case "on-change":
		return RefreshOnChange, nil
	case "on-submit":
		return RefreshOnSubmit, nil
	}
	return RefreshSource, fmt.Errorf("unknown refresh policy %q", s)
}

func (p RefreshPolicy) String() string {
	switch p {
	case RefreshOnChange:
		return "on-change"
	case RefreshOnSubmit:
		return "on-submit"
	}
	return "source"
}

// Option configures an Engine.
type Option func(*Engine)

// WithOptionsFetcher sets the collaborator used by LoadOptions.
func WithOptionsFetcher(f OptionsFetcher) Option {
	return func(e *Engine) { e.fetchOptions = f }
}

// WithDefaults seeds the temporary state.
func WithDefaults(s State) Option {
	return func(e *Engine) {
		for k, v := range s {
			e.temp[k] = v
		}
	}
}

// WithLogger sets the engine's logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithErrorReporter replaces the default reporter, which logs at error level.
func WithErrorReporter(r ErrorReporter) Option {
	return func(e *Engine) { e.report = r }
}

// WithIDGenerator replaces the token id generator.
func WithIDGenerator(gen func(Field) string) Option {
	return func(e *Engine) { e.newID = gen }
}

// WithRefreshPolicy sets when the Fetcher runs.
func WithRefreshPolicy(p RefreshPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithExclusiveRanges makes a new range token replace any earlier token of
// the same family instead of sitting next to it.
func WithExclusiveRanges(on bool) Option {
	return func(e *Engine) { e.exclusiveRanges = on }
}

// Engine owns the temporary inputs, the active tokens and their
// consolidation. It is safe for concurrent use; the Fetcher is called after
// the mutation is complete and outside the engine's lock.
type Engine struct {
	mu sync.Mutex

	fetch        Fetcher
	fetchOptions OptionsFetcher
	report       ErrorReporter
	log          *zap.Logger
	newID        func(Field) string

	policy          RefreshPolicy
	exclusiveRanges bool

	temp         State
	tokens       []Token
	consolidated Consolidated
	catalog      Catalog
}

// New returns an engine that calls fetch whenever the active filters change.
// fetch may be nil.
func New(fetch Fetcher, opts ...Option) *Engine {
	e := &Engine{
		fetch:        fetch,
		log:          zap.NewNop(),
		newID:        defaultID,
		temp:         DefaultState(),
		consolidated: Consolidated{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.report == nil {
		e.report = func(err error) {
			e.log.Error("filter engine error", zap.Error(err))
		}
	}
	return e
}

func defaultID(f Field) string {
	return string(f) + "_" + uuid.NewString()
}

// SetField overwrites one temporary input. An empty value clears it.
func (e *Engine) SetField(field Field, value string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.temp[field] = value
}

// Field returns the temporary value of field.
func (e *Engine) Field(field Field) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.temp[field]
}

// Temporary returns a copy of the temporary inputs.
func (e *Engine) Temporary() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.temp.Clone()
}

// Tokens returns a copy of the active tokens in application order.
func (e *Engine) Tokens() []Token {
	e.mu.Lock()
	defer e.mu.Unlock()
	return slices.Clone(e.tokens)
}

// Consolidated returns a copy of the current consolidated filters.
func (e *Engine) Consolidated() Consolidated {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.consolidated.Clone()
}

// Catalog returns a copy of the last loaded options catalog.
func (e *Engine) Catalog() Catalog {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.catalog.Clone()
}

// ApplyCurrent turns the non-empty temporary inputs into tokens, skipping
// values already present, then clears the temporary inputs.
func (e *Engine) ApplyCurrent(ctx context.Context) {
	e.mu.Lock()
	submitted := e.temp.HasInput()
	added := 0

	for _, fam := range families {
		r := Range{Min: e.temp[fam.Min], Max: e.temp[fam.Max]}
		if r.Empty() || e.has(fam.Field, r) {
			continue
		}
		if e.exclusiveRanges {
			e.dropRanges(fam.Field)
		}
		e.tokens = append(e.tokens, e.token(fam.Field, r))
		added++
	}

	for _, f := range e.temp.keys() {
		v := e.temp[f]
		if v == "" || IsRangeBound(f) || e.has(f, v) {
			continue
		}
		e.tokens = append(e.tokens, e.token(f, v))
		added++
	}

	if added > 0 {
		e.consolidated = Consolidate(e.tokens)
	}
	e.temp.reset()

	refresh := added > 0 || (e.policy == RefreshOnSubmit && submitted)
	filters := e.consolidated.Clone()
	e.mu.Unlock()

	e.log.Debug("filters applied", zap.Int("added", added), zap.Bool("refresh", refresh))
	if refresh {
		e.refresh(ctx, filters, 1)
	}
}

// RemoveToken drops the token with the given id. Unknown ids are ignored.
func (e *Engine) RemoveToken(ctx context.Context, id string) {
	e.mu.Lock()
	idx := slices.IndexFunc(e.tokens, func(t Token) bool { return t.ID == id })
	if idx >= 0 {
		e.tokens = slices.Delete(e.tokens, idx, idx+1)
	}
	e.consolidated = Consolidate(e.tokens)

	refresh := idx >= 0 || e.policy != RefreshOnChange
	filters := e.consolidated.Clone()
	e.mu.Unlock()

	e.log.Debug("filter token removed", zap.String("token_id", id), zap.Bool("found", idx >= 0))
	if refresh {
		e.refresh(ctx, filters, 1)
	}
}

// ClearAll empties the temporary inputs and the active tokens.
func (e *Engine) ClearAll(ctx context.Context) {
	e.mu.Lock()
	changed := len(e.tokens) > 0
	e.temp.reset()
	e.tokens = nil
	e.consolidated = Consolidated{}
	refresh := changed || e.policy != RefreshOnChange
	e.mu.Unlock()

	e.log.Debug("filters cleared", zap.Bool("refresh", refresh))
	if refresh {
		e.refresh(ctx, Consolidated{}, 1)
	}
}

// Restore replaces the active tokens with the given criteria, dropping
// duplicates and empty entries, and fetches the first page.
func (e *Engine) Restore(ctx context.Context, criteria []Criterion) {
	e.mu.Lock()
	e.tokens = nil
	for _, c := range criteria {
		v := c.value()
		if v == nil || e.has(c.Field, v) {
			continue
		}
		if _, isRange := v.(Range); isRange && e.exclusiveRanges {
			e.dropRanges(c.Field)
		}
		e.tokens = append(e.tokens, e.token(c.Field, v))
	}
	e.consolidated = Consolidate(e.tokens)
	filters := e.consolidated.Clone()
	e.mu.Unlock()

	e.refresh(ctx, filters, 1)
}

// Page asks the Fetcher for another page of the current filters.
func (e *Engine) Page(ctx context.Context, page int) {
	if page < 1 {
		page = 1
	}
	e.refresh(ctx, e.Consolidated(), page)
}

// LoadOptions refreshes the options catalog. On failure the previous catalog
// is kept and the error goes to the ErrorReporter. It reports whether the
// catalog was replaced.
func (e *Engine) LoadOptions(ctx context.Context) bool {
	if e.fetchOptions == nil {
		return false
	}
	catalog, err := e.fetchOptions(ctx)
	if err != nil {
		e.report(fmt.Errorf("load filter options: %w", err))
		return false
	}

	e.mu.Lock()
	e.catalog = catalog.Clone()
	e.mu.Unlock()
	return true
}

func (e *Engine) refresh(ctx context.Context, filters Consolidated, page int) {
	if e.fetch == nil {
		return
	}
	e.fetch(ctx, filters, page)
}

func (e *Engine) has(field Field, value any) bool {
	return slices.ContainsFunc(e.tokens, func(t Token) bool { return t.matches(field, value) })
}

func (e *Engine) dropRanges(field Field) {
	e.tokens = slices.DeleteFunc(e.tokens, func(t Token) bool {
		_, isRange := t.Range()
		return isRange && t.Field == field
	})
}

func (e *Engine) token(field Field, value any) Token {
	return Token{
		ID:    e.newID(field),
		Field: field,
		Value: value,
		Label: Label(field, value),
	}
}
