package catalog

import (
	"errors"
	"sync"
)

var ErrNotInMenu = errors.New("item is not in the menu snapshot")

// Change is a tentatively applied availability toggle. The caller persists it
// and then calls exactly one of Commit or Rollback; later calls are no-ops.
type Change struct {
	once    sync.Once
	restore func()
}

// Commit keeps the tentative state
func (ch *Change) Commit() {
	ch.once.Do(func() {})
}

// Rollback restores the state from before the change
func (ch *Change) Rollback() {
	ch.once.Do(ch.restore)
}

// StageProduct marks product id available or not in the snapshot right away
func (c *Cache) StageProduct(id uint, available bool) (*Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := *c.snap
	next.Products = append(next.Products[:0:0], c.snap.Products...)
	idx := -1
	for i := range next.Products {
		if next.Products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotInMenu
	}
	prev := next.Products[idx].Available
	next.Products[idx].Available = available
	c.snap = &next

	return &Change{restore: func() {
		c.setProductAvailability(id, prev)
	}}, nil
}

// StageAddon marks addon id available or not in the snapshot right away
func (c *Cache) StageAddon(id uint, available bool) (*Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	next := *c.snap
	next.Addons = append(next.Addons[:0:0], c.snap.Addons...)
	idx := -1
	for i := range next.Addons {
		if next.Addons[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, ErrNotInMenu
	}
	prev := next.Addons[idx].Available
	next.Addons[idx].Available = available
	c.snap = &next

	return &Change{restore: func() {
		c.setAddonAvailability(id, prev)
	}}, nil
}

func (c *Cache) setProductAvailability(id uint, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := *c.snap
	next.Products = append(next.Products[:0:0], c.snap.Products...)
	for i := range next.Products {
		if next.Products[i].ID == id {
			next.Products[i].Available = available
		}
	}
	c.snap = &next
}

func (c *Cache) setAddonAvailability(id uint, available bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := *c.snap
	next.Addons = append(next.Addons[:0:0], c.snap.Addons...)
	for i := range next.Addons {
		if next.Addons[i].ID == id {
			next.Addons[i].Available = available
		}
	}
	c.snap = &next
}
