package cart

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"sync"

	"toko-kelontong-pos/internal/model"
	"toko-kelontong-pos/internal/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrProductNotFound = errors.New("product not found")

// ProductLookup reads the current product row, scoped to one tenant.
type ProductLookup interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.Product, error)
}

const lockStripes = 64

// Service applies cart operations for a resolved principal. Operations on the
// same session run one at a time.
type Service struct {
	store    Store
	products ProductLookup
	log      *zap.Logger
	locks    [lockStripes]sync.Mutex
}

func NewService(store Store, products ProductLookup, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, products: products, log: log}
}

func (s *Service) lock(key string) func() {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	mu := &s.locks[h.Sum32()%lockStripes]
	mu.Lock()
	return mu.Unlock
}

func (s *Service) Get(ctx context.Context, p session.Principal) (*Cart, error) {
	if _, err := p.Tenant(); err != nil {
		return nil, err
	}
	return s.store.Load(ctx, p.SessionKey())
}

// Do loads the session's cart, runs fn on it and persists the result. When fn
// fails the stored cart is left untouched.
func (s *Service) Do(ctx context.Context, p session.Principal, fn func(*Cart) error) (*Cart, error) {
	if _, err := p.Tenant(); err != nil {
		return nil, err
	}
	key := p.SessionKey()
	unlock := s.lock(key)
	defer unlock()

	c, err := s.store.Load(ctx, key)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if c.IsEmpty() {
		err = s.store.Delete(ctx, key)
	} else {
		err = s.store.Save(ctx, key, c)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Consume runs fn on the session's cart and then drops the stored cart. Once
// fn succeeds its effect is final: a failed delete is logged, not returned.
func (s *Service) Consume(ctx context.Context, p session.Principal, fn func(*Cart) error) error {
	if _, err := p.Tenant(); err != nil {
		return err
	}
	key := p.SessionKey()
	unlock := s.lock(key)
	defer unlock()

	c, err := s.store.Load(ctx, key)
	if err != nil {
		return err
	}
	if err := fn(c); err != nil {
		return err
	}
	if err := s.store.Delete(context.WithoutCancel(ctx), key); err != nil {
		s.log.Error("cart not cleared after checkout",
			zap.String("user_id", p.UserID.String()),
			zap.Error(err))
	}
	return nil
}

// Add reads the product fresh from the caller's tenant and adds one unit.
func (s *Service) Add(ctx context.Context, p session.Principal, productID uuid.UUID) (*Cart, error) {
	tenantID, err := p.Tenant()
	if err != nil {
		return nil, err
	}
	return s.Do(ctx, p, func(c *Cart) error {
		product, err := s.products.FindByID(ctx, tenantID, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup product: %w", err)
		}
		if err := c.AddItem(*product); err != nil {
			s.log.Debug("add to cart rejected",
				zap.String("product_id", productID.String()),
				zap.Error(err))
			return err
		}
		return nil
	})
}

func (s *Service) Adjust(ctx context.Context, p session.Principal, productID uuid.UUID, delta int) (*Cart, error) {
	return s.Do(ctx, p, func(c *Cart) error {
		return c.AdjustQuantity(productID, delta)
	})
}

func (s *Service) Remove(ctx context.Context, p session.Principal, productID uuid.UUID) (*Cart, error) {
	return s.Do(ctx, p, func(c *Cart) error {
		c.RemoveItem(productID)
		return nil
	})
}

func (s *Service) Clear(ctx context.Context, p session.Principal) error {
	_, err := s.Do(ctx, p, func(c *Cart) error {
		c.Clear()
		return nil
	})
	return err
}
