package client

import (
	"sort"
	"sync"
)

// CartStore is the in-memory cart: one entry per product id. All methods are
// safe for concurrent use. Mutations trigger the change callback (the syncer's
// debounce), except ReplaceAll, which exists to apply server state and must
// not echo a save.
type CartStore struct {
	mu       sync.Mutex
	items    map[string]CartItem
	onChange func()
}

func NewCartStore() *CartStore {
	return &CartStore{items: make(map[string]CartItem)}
}

func (s *CartStore) setOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

func (s *CartStore) notify() {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Add merges by product id, summing quantities for an item already present.
// Quantities below one are treated as one.
func (s *CartStore) Add(item CartItem, qty int) {
	if qty < 1 {
		qty = 1
	}
	s.mu.Lock()
	if existing, ok := s.items[item.ID]; ok {
		existing.Quantity += qty
		s.items[item.ID] = existing
	} else {
		item.Quantity = qty
		s.items[item.ID] = item
	}
	s.mu.Unlock()
	s.notify()
}

// Remove deletes the entry; removing an absent id is a no-op.
func (s *CartStore) Remove(id string) {
	s.mu.Lock()
	_, ok := s.items[id]
	if ok {
		delete(s.items, id)
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// SetQuantity updates an entry's quantity; a quantity below one removes the
// entry. Setting quantity on an absent id is a no-op.
func (s *CartStore) SetQuantity(id string, qty int) {
	s.mu.Lock()
	item, ok := s.items[id]
	if ok {
		if qty < 1 {
			delete(s.items, id)
		} else {
			item.Quantity = qty
			s.items[id] = item
		}
	}
	s.mu.Unlock()
	if ok {
		s.notify()
	}
}

// Clear empties the cart.
func (s *CartStore) Clear() {
	s.mu.Lock()
	s.items = make(map[string]CartItem)
	s.mu.Unlock()
	s.notify()
}

// ReplaceAll overwrites the cart with server state. Duplicate ids merge by
// summing quantities and entries below quantity one are dropped, so a load is
// idempotent. No change notification fires: applying server state must not
// schedule a save of that same state.
func (s *CartStore) ReplaceAll(items []CartItem) {
	next := make(map[string]CartItem, len(items))
	for _, item := range items {
		if existing, ok := next[item.ID]; ok {
			existing.Quantity += item.Quantity
			next[item.ID] = existing
			continue
		}
		next[item.ID] = item
	}
	for id, item := range next {
		if item.Quantity < 1 {
			delete(next, id)
		}
	}
	s.mu.Lock()
	s.items = next
	s.mu.Unlock()
}

// Items returns a snapshot sorted by product id.
func (s *CartStore) Items() []CartItem {
	s.mu.Lock()
	out := make([]CartItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Total is the sum of price times quantity over current entries.
func (s *CartStore) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total float64
	for _, item := range s.items {
		total += item.Price * float64(item.Quantity)
	}
	return total
}

// Len reports the number of distinct products in the cart.
func (s *CartStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
