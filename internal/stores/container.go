// Package stores holds the client-side view of the shared document: one
// reactive container per slice, optimistic mutators, and the background
// fetch-splice-save reconciliation that pushes each change to the server.
package stores

import "sync"

// Container holds one value and notifies subscribers after every change.
// Subscribers run synchronously on the goroutine that made the change.
type Container[T any] struct {
	mu     sync.Mutex
	value  T
	subs   map[int]func(T)
	nextID int
}

func NewContainer[T any](initial T) *Container[T] {
	return &Container[T]{value: initial, subs: map[int]func(T){}}
}

func (c *Container[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

func (c *Container[T]) Set(value T) {
	c.mu.Lock()
	c.value = value
	subs := c.subscribers()
	c.mu.Unlock()
	notify(subs, value)
}

// Update replaces the value with fn applied to the current one.
func (c *Container[T]) Update(fn func(T) T) T {
	next, _ := c.TryUpdate(func(v T) (T, error) { return fn(v), nil })
	return next
}

// TryUpdate is Update for reducers that can fail. On error the value is left
// unchanged and nobody is notified.
func (c *Container[T]) TryUpdate(fn func(T) (T, error)) (T, error) {
	c.mu.Lock()
	next, err := fn(c.value)
	if err != nil {
		current := c.value
		c.mu.Unlock()
		return current, err
	}
	c.value = next
	subs := c.subscribers()
	c.mu.Unlock()
	notify(subs, next)
	return next, nil
}

// Subscribe registers fn and returns a function that removes it.
func (c *Container[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subs, id)
	}
}

func (c *Container[T]) subscribers() []func(T) {
	subs := make([]func(T), 0, len(c.subs))
	for i := 0; i < c.nextID; i++ {
		if fn, ok := c.subs[i]; ok {
			subs = append(subs, fn)
		}
	}
	return subs
}

func notify[T any](subs []func(T), value T) {
	for _, fn := range subs {
		fn(value)
	}
}
