package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"burger-ordering-api/metrics"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrNotFound = errors.New("cart not found")

// Store keeps carts in memory keyed by id
type Store struct {
	mu    sync.Mutex
	carts map[string]Cart
	now   func() time.Time
}

func NewStore() *Store {
	return &Store{carts: make(map[string]Cart), now: time.Now}
}

func (s *Store) Create() Cart {
	c := New(uuid.NewString())
	c.UpdatedAt = s.now()

	s.mu.Lock()
	s.carts[c.ID] = c
	n := len(s.carts)
	s.mu.Unlock()

	metrics.ActiveCarts.Set(float64(n))
	return c
}

func (s *Store) Get(id string) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	return c.clone(), nil
}

// Dispatch applies a to the cart with id and stores the result
func (s *Store) Dispatch(id string, a Action) (Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[id]
	if !ok {
		return Cart{}, ErrNotFound
	}
	next, err := Reduce(c, a)
	if err != nil {
		return c.clone(), err
	}
	next.UpdatedAt = s.now()
	s.carts[id] = next
	return next.clone(), nil
}

func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.carts, id)
	n := len(s.carts)
	s.mu.Unlock()
	metrics.ActiveCarts.Set(float64(n))
}

// Sweep drops carts untouched for longer than maxAge and returns how many were dropped
func (s *Store) Sweep(maxAge time.Duration) int {
	cutoff := s.now().Add(-maxAge)
	s.mu.Lock()
	dropped := 0
	for id, c := range s.carts {
		if c.UpdatedAt.Before(cutoff) {
			delete(s.carts, id)
			dropped++
		}
	}
	n := len(s.carts)
	s.mu.Unlock()
	metrics.ActiveCarts.Set(float64(n))
	return dropped
}

// RunSweeper sweeps every interval until ctx is done
func (s *Store) RunSweeper(ctx context.Context, interval, maxAge time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := s.Sweep(maxAge); n > 0 {
				log.WithField("dropped", n).Info("Swept stale carts")
			}
		}
	}
}
