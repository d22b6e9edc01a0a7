package cart

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/emberhall/commerce/internal/domain/catalog"
)

// LineInput carries the product snapshot captured at the moment an item is
// added to the cart. Name, price, and discount are copied from the catalog
// entry, not referenced live.
type LineInput struct {
	ItemID             string
	ItemType           catalog.ItemType
	Name               string
	Quantity           int
	UnitPrice          decimal.Decimal
	DiscountPercentage decimal.Decimal
	Image              string
	Category           string
}

func (in LineInput) validate() error {
	if in.ItemID == "" {
		return ErrEmptyItemID
	}
	if !in.ItemType.Valid() {
		return ErrInvalidType
	}
	if in.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if in.UnitPrice.IsNegative() {
		return ErrNegativePrice
	}
	return nil
}

// Mutation is the result of a cart operation: the affected line (nil for
// clears), the refreshed totals, and whether the change reached the store.
type Mutation struct {
	Line    *Line
	Summary Summary
	Outcome SyncOutcome
	// Merged is true when an add folded into an existing line instead of
	// creating a new one.
	Merged bool
}

// Service reconciles session-local cart state with the persisted store.
// Store failures never fail the caller: the mutation is applied to the
// session and reported as SyncLocalOnly. Guest sessions skip the store
// entirely.
type Service struct {
	repo Repository
	lg   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewService creates the cart service.
func NewService(repo Repository, lg *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		lg:       lg.Named("cart"),
		sessions: make(map[string]*Session),
	}
}

// Session returns the session for an owner, creating it on first use. An
// empty ownerID returns a fresh, unregistered guest session.
func (s *Service) Session(ownerID string) *Session {
	if ownerID == "" {
		return NewSession("")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[ownerID]
	if !ok {
		sess = NewSession(ownerID)
		s.sessions[ownerID] = sess
	}
	sess.touch(time.Now())
	return sess
}

// EndSession tears down an owner's session. The local guest cart, if any,
// is discarded rather than merged when an identity appears; the next
// Session call starts from the persisted state.
func (s *Service) EndSession(ownerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, ownerID)
}

// StartSessionReaper evicts sessions idle longer than ttl on a background
// goroutine, bounding the registry against request floods of distinct owner
// IDs. The goroutine exits when ctx is cancelled.
func (s *Service) StartSessionReaper(ctx context.Context, ttl time.Duration) {
	go func() {
		ticker := time.NewTicker(ttl)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				s.evictIdle(now, ttl)
			}
		}
	}()
}

// evictIdle drops every session untouched for ttl. Persisted lines survive
// in the store; the next Session call for that owner starts fresh and loads
// them back.
func (s *Service) evictIdle(now time.Time, ttl time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastSeenAt()) >= ttl {
			delete(s.sessions, id)
			evicted++
		}
	}
	if evicted > 0 {
		s.lg.Debug("evicted idle cart sessions",
			zap.Int("evicted", evicted), zap.Int("remaining", len(s.sessions)))
	}
}

// Load fetches all lines for the session's owner from the store and replaces
// the local state wholesale. Guest sessions return their local lines.
func (s *Service) Load(ctx context.Context, sess *Session) ([]Line, error) {
	if sess.Guest() {
		return sess.Lines(), nil
	}
	lines, err := s.repo.ListByOwner(ctx, sess.OwnerID())
	if err != nil {
		s.lg.Warn("cart load failed",
			zap.String("owner_id", sess.OwnerID()), zap.Error(err))
		return nil, err
	}
	sess.replaceAll(lines)
	return sess.Lines(), nil
}

// AddItem adds a product to the cart. If a line for the same
// (owner, item, item type) already exists, its quantity is incremented by
// in.Quantity via an atomic upsert; otherwise a new line is inserted with
// the product snapshot.
func (s *Service) AddItem(ctx context.Context, sess *Session, in LineInput) (*Mutation, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	line := Line{
		ID:                 uuid.New().String(),
		OwnerID:            sess.OwnerID(),
		ItemID:             in.ItemID,
		ItemType:           in.ItemType,
		Name:               in.Name,
		Quantity:           in.Quantity,
		UnitPrice:          in.UnitPrice,
		DiscountPercentage: in.DiscountPercentage,
		Image:              in.Image,
		Category:           in.Category,
	}

	if sess.Guest() {
		_, existed := sess.findByItem(in.ItemID, in.ItemType)
		merged := sess.upsertLocal(line)
		return &Mutation{Line: &merged, Summary: sess.Summary(), Outcome: SyncLocalOnly, Merged: existed}, nil
	}

	stored, created, err := s.repo.Upsert(ctx, line)
	if err != nil {
		s.lg.Warn("cart add failed, degrading to local state",
			zap.String("owner_id", sess.OwnerID()),
			zap.String("item_id", in.ItemID), zap.Error(err))
		_, existed := sess.findByItem(in.ItemID, in.ItemType)
		merged := sess.upsertLocal(line)
		return &Mutation{Line: &merged, Summary: sess.Summary(), Outcome: SyncLocalOnly, Merged: existed}, nil
	}

	sess.setLine(*stored)
	return &Mutation{Line: stored, Summary: sess.Summary(), Outcome: SyncPersisted, Merged: !created}, nil
}

// UpdateQuantity sets a line's quantity to an absolute value. A quantity of
// zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sess *Session, lineID string, quantity int) (*Mutation, error) {
	if quantity <= 0 {
		return s.RemoveItem(ctx, sess, lineID)
	}

	if sess.Guest() {
		line, ok := sess.setQuantityLocal(lineID, quantity)
		if !ok {
			return nil, ErrNotFound
		}
		return &Mutation{Line: &line, Summary: sess.Summary(), Outcome: SyncLocalOnly}, nil
	}

	stored, err := s.repo.SetQuantity(ctx, lineID, quantity)
	switch {
	case err == nil:
		sess.setLine(*stored)
		return &Mutation{Line: stored, Summary: sess.Summary(), Outcome: SyncPersisted}, nil
	case errors.Is(err, ErrNotFound):
		// The line genuinely does not exist; nothing to degrade to.
		if line, ok := sess.setQuantityLocal(lineID, quantity); ok {
			return &Mutation{Line: &line, Summary: sess.Summary(), Outcome: SyncLocalOnly}, nil
		}
		return nil, ErrNotFound
	default:
		s.lg.Warn("cart update failed, degrading to local state",
			zap.String("owner_id", sess.OwnerID()),
			zap.String("line_id", lineID), zap.Error(err))
		line, ok := sess.setQuantityLocal(lineID, quantity)
		if !ok {
			return nil, ErrNotFound
		}
		return &Mutation{Line: &line, Summary: sess.Summary(), Outcome: SyncLocalOnly}, nil
	}
}

// RemoveItem deletes a line locally and in the store. Removing a line that
// does not exist is a no-op.
func (s *Service) RemoveItem(ctx context.Context, sess *Session, lineID string) (*Mutation, error) {
	outcome := SyncLocalOnly
	if !sess.Guest() {
		if err := s.repo.Delete(ctx, lineID); err != nil {
			s.lg.Warn("cart remove failed, degrading to local state",
				zap.String("owner_id", sess.OwnerID()),
				zap.String("line_id", lineID), zap.Error(err))
		} else {
			outcome = SyncPersisted
		}
	}
	sess.removeLocal(lineID)
	return &Mutation{Summary: sess.Summary(), Outcome: outcome}, nil
}

// SetQuantityByID is the session-less variant of UpdateQuantity used when
// no owner identity accompanies the request: the store is mutated directly
// and failures surface to the caller. A quantity of zero or less removes
// the line and returns a nil line.
func (s *Service) SetQuantityByID(ctx context.Context, lineID string, quantity int) (*Line, error) {
	if quantity <= 0 {
		if err := s.repo.Delete(ctx, lineID); err != nil {
			return nil, err
		}
		return nil, nil
	}
	return s.repo.SetQuantity(ctx, lineID, quantity)
}

// RemoveByID is the session-less variant of RemoveItem. Removing an absent
// line is a no-op.
func (s *Service) RemoveByID(ctx context.Context, lineID string) error {
	return s.repo.Delete(ctx, lineID)
}

// Clear deletes every line for the session's owner. Used after checkout and
// on explicit empty-cart actions.
func (s *Service) Clear(ctx context.Context, sess *Session) (*Mutation, error) {
	outcome := SyncLocalOnly
	if !sess.Guest() {
		if err := s.repo.DeleteByOwner(ctx, sess.OwnerID()); err != nil {
			s.lg.Warn("cart clear failed, degrading to local state",
				zap.String("owner_id", sess.OwnerID()), zap.Error(err))
		} else {
			outcome = SyncPersisted
		}
	}
	sess.replaceAll(nil)
	return &Mutation{Summary: sess.Summary(), Outcome: outcome}, nil
}
