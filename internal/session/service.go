package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/flavourheaven/costonomy/internal/costonomy"
	applog "github.com/flavourheaven/costonomy/internal/log"
	"github.com/flavourheaven/costonomy/internal/metrics"
	"github.com/flavourheaven/costonomy/internal/scaling"
)

// Catalog is the slice of the Costonomy API the service needs.
type Catalog interface {
	BaseItem(ctx context.Context, id int64) (costonomy.BaseItem, error)
	BaseItemIngredients(ctx context.Context, id int64) ([]costonomy.Ingredient, error)
	Product(ctx context.Context, id int64) (costonomy.Product, error)
	DirectIngredients(ctx context.Context, productID int64) ([]costonomy.Ingredient, error)
	ProductIngredients(ctx context.Context, productID int64, storeItems string) ([]costonomy.Ingredient, error)
	Products(ctx context.Context) ([]costonomy.Product, error)
	Departments(ctx context.Context) ([]costonomy.Department, error)
	Items(ctx context.Context) ([]costonomy.Item, error)
	UpsertPurchase(ctx context.Context, p costonomy.Purchase) (int, error)
	UpsertIngredients(ctx context.Context, productID int64, rows []costonomy.IngredientQuantity) (int, error)
	DeleteIngredient(ctx context.Context, productID, itemID int64) (int, error)
}

// Service runs scaling operations against stored sessions. Mutations of one
// session are serialised; different sessions proceed independently.
type Service struct {
	store   Store
	catalog Catalog
	metrics *metrics.Recorder
	loc     *time.Location
	now     func() time.Time
	newID   func() string

	mu    sync.Mutex
	locks map[string]*sessionLock
}

// sessionLock is dropped from Service.locks once no caller holds or waits on it.
type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// Option configures a Service.
type Option func(*Service)

// WithMetrics records operation outcomes and division guards.
func WithMetrics(r *metrics.Recorder) Option {
	return func(s *Service) { s.metrics = r }
}

// WithLocation sets the timezone used to resolve purchase date filters.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(store Store, catalog Catalog, opts ...Option) *Service {
	s := &Service{
		store:   store,
		catalog: catalog,
		loc:     time.UTC,
		now:     time.Now,
		newID:   func() string { return uuid.NewString() },
		locks:   make(map[string]*sessionLock),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OpenBaseItem snapshots a base item's recipe. The reference quantity is the
// base item's own unit quantity.
func (s *Service) OpenBaseItem(ctx context.Context, baseItemID int64) (sess *Session, err error) {
	defer func() { s.metrics.Operation("open_base_item", err) }()

	var (
		item        costonomy.BaseItem
		ingredients []costonomy.Ingredient
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		item, err = s.catalog.BaseItem(gctx, baseItemID)
		if err != nil {
			return fmt.Errorf("load base item %d: %w", baseItemID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ingredients, err = s.catalog.BaseItemIngredients(gctx, baseItemID)
		if err != nil {
			return fmt.Errorf("load base item %d ingredients: %w", baseItemID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	reference := item.UnitQuantity.Float()
	return s.create(ctx, &Session{
		Kind:              KindBaseItem,
		SubjectID:         baseItemID,
		Name:              item.Name,
		Unit:              costonomy.NormalizeUnit(item.Unit),
		UnitQuantity:      reference,
		BaseReference:     reference,
		ReferenceQuantity: reference,
		Original:          costonomy.Lines(ingredients),
	})
}

// OpenRecipe snapshots a product's direct ingredients.
func (s *Service) OpenRecipe(ctx context.Context, productID int64) (sess *Session, err error) {
	defer func() { s.metrics.Operation("open_recipe", err) }()

	var (
		product     costonomy.Product
		ingredients []costonomy.Ingredient
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		product, err = s.catalog.Product(gctx, productID)
		if err != nil {
			return fmt.Errorf("load product %d: %w", productID, err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		ingredients, err = s.catalog.DirectIngredients(gctx, productID)
		if err != nil {
			return fmt.Errorf("load product %d ingredients: %w", productID, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.create(ctx, &Session{
		Kind:              KindRecipe,
		SubjectID:         productID,
		Name:              product.Name,
		BaseReference:     1,
		ReferenceQuantity: 1,
		Original:          costonomy.Lines(ingredients),
	})
}

func (s *Service) create(ctx context.Context, sess *Session) (*Session, error) {
	now := s.now()
	sess.ID = s.newID()
	sess.Multiplier = 1
	sess.Current = scaling.Clone(sess.Original)
	sess.CreatedAt = now
	sess.UpdatedAt = now

	if err := s.store.Create(ctx, sess); err != nil {
		return nil, err
	}
	s.metrics.SessionOpened()
	applog.Info(ctx, "scaling session opened",
		"session_id", sess.ID,
		"kind", sess.Kind,
		"subject_id", sess.SubjectID,
		"lines", len(sess.Original),
	)
	return sess, nil
}

// Get returns a session by ID.
func (s *Service) Get(ctx context.Context, id string) (*Session, error) {
	return s.store.Get(ctx, id)
}

// Delete discards a session.
func (s *Service) Delete(ctx context.Context, id string) error {
	unlock := s.lock(id)
	defer unlock()

	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}
	s.metrics.SessionClosed()
	return nil
}

// Prune drops sessions untouched for longer than maxAge and resets the open
// sessions gauge from the store, which may hold sessions of earlier processes.
func (s *Service) Prune(ctx context.Context, maxAge time.Duration) (int, error) {
	n, err := s.store.Prune(ctx, s.now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	open, err := s.store.Count(ctx)
	if err != nil {
		return n, err
	}
	s.metrics.SetOpenSessions(open)
	if n > 0 {
		applog.Info(ctx, "stale scaling sessions pruned", "count", n, "max_age", maxAge)
	}
	return n, nil
}

// Rescale batch-rescales the snapshot from its base reference to rawTarget,
// so a line rounded to 0 by one target comes back with the next. The target
// is reported as the reference quantity.
func (s *Service) Rescale(ctx context.Context, id, rawTarget string) (*Session, error) {
	return s.mutate(ctx, id, "rescale", func(sess *Session) error {
		target, err := scaling.ParseTargetQuantity(rawTarget)
		if err != nil {
			return err
		}
		res, err := scaling.BatchRescale(sess.Original, target, sess.BaseReference)
		if err != nil {
			return err
		}
		sess.apply(res)
		sess.ReferenceQuantity = target
		sess.Multiplier = 1
		return nil
	})
}

// Multiply applies a named or numeric factor to the working list. Repeated
// calls compound; Reset returns to the snapshot.
func (s *Service) Multiply(ctx context.Context, id, rawFactor string) (*Session, error) {
	return s.mutate(ctx, id, "multiply", func(sess *Session) error {
		m, err := scaling.LookupMultiplier(rawFactor)
		if err != nil {
			return err
		}
		res, err := scaling.MultiplierRescale(sess.Current, m.Factor)
		if err != nil {
			return err
		}
		sess.apply(res)
		sess.Multiplier *= m.Factor
		sess.ReferenceQuantity *= m.Factor
		return nil
	})
}

// EditLine sets one line's quantity from user input.
func (s *Service) EditLine(ctx context.Context, id string, itemID int64, rawQuantity string) (*Session, error) {
	return s.mutate(ctx, id, "edit_line", func(sess *Session) error {
		res, err := scaling.EditLine(sess.Current, itemID, rawQuantity)
		if err != nil {
			return err
		}
		sess.apply(res)
		return nil
	})
}

// Reset restores the original snapshot and reference quantity.
func (s *Service) Reset(ctx context.Context, id string) (*Session, error) {
	return s.mutate(ctx, id, "reset", func(sess *Session) error {
		sess.apply(scaling.Result{Lines: scaling.Clone(sess.Original)})
		sess.ReferenceQuantity = sess.BaseReference
		sess.Multiplier = 1
		return nil
	})
}

// mutate loads the session, applies fn under the session lock and stores
// the result. A failing fn leaves the stored session untouched.
func (s *Service) mutate(ctx context.Context, id, op string, fn func(*Session) error) (sess *Session, err error) {
	defer func() { s.metrics.Operation(op, err) }()

	unlock := s.lock(id)
	defer unlock()

	sess, err = s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdatedAt = s.now()
	if err := s.store.Update(ctx, sess); err != nil {
		return nil, err
	}

	s.reportGuards(ctx, op, sess)
	return sess, nil
}

func (s *Service) reportGuards(ctx context.Context, op string, sess *Session) {
	n := len(sess.Guarded)
	if sess.ReferenceGuarded {
		n++
	}
	if n == 0 {
		return
	}
	s.metrics.DivisionGuards(n)
	applog.Warn(ctx, "zero divisor replaced by 1",
		"operation", op,
		"session_id", sess.ID,
		"items", sess.Guarded,
		"reference", sess.ReferenceGuarded,
	)
}

func (s *Service) lock(id string) func() {
	s.mu.Lock()
	l, ok := s.locks[id]
	if !ok {
		l = &sessionLock{}
		s.locks[id] = l
	}
	l.refs++
	s.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()

		s.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.locks, id)
		}
		s.mu.Unlock()
	}
}
