// Package expensecache keeps an in-memory copy of a user's expenses and
// categories in sync with the remote expense API.
//
// A Cache is the single writer of its state. Consumers read copies through
// Snapshot and Lookup, mutate only through FetchAll, Create, Update and
// Remove, and learn about changes through Subscribe. Operations that touch
// the expense collection run one at a time, so a full refresh never
// overwrites a mutation that is still in flight.
package expensecache

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"expensetracker/internal/client"
)

// API is the part of the remote expense API the cache depends on.
// *client.Client satisfies it.
type API interface {
	ListExpenses(ctx context.Context) ([]client.Expense, error)
	ListCategories(ctx context.Context) ([]string, error)
	CreateExpense(ctx context.Context, draft client.ExpenseDraft) (*client.Expense, error)
	UpdateExpense(ctx context.Context, id string, draft client.ExpenseDraft) (*client.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
}

var _ API = (*client.Client)(nil)

// State is a point-in-time copy of the cache.
type State struct {
	Expenses   []client.Expense
	Categories []string
	Loading    bool
	// Err is the most recent failure, nil once any later operation succeeds.
	Err *Error
}

// Cache holds the expense and category collections.
type Cache struct {
	api   API
	log   *zap.SugaredLogger
	queue *semaphore.Weighted

	mu         sync.Mutex
	expenses   []client.Expense
	categories []string
	inFlight   int
	lastErr    *Error
	subs       map[uint64]chan struct{}
	nextSub    uint64
}

// New returns an empty cache backed by api. A nil log discards output.
func New(api API, log *zap.SugaredLogger) *Cache {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Cache{
		api:        api,
		log:        log,
		queue:      semaphore.NewWeighted(1),
		expenses:   []client.Expense{},
		categories: []string{},
		subs:       make(map[uint64]chan struct{}),
	}
}

// Load performs the initial fetch of expenses and categories concurrently.
// It returns the expense fetch failure, which is also left in the error slot;
// a category failure is only logged.
func (c *Cache) Load(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		return c.fetchAll(ctx)
	})
	g.Go(func() error {
		c.FetchCategories(ctx)
		return nil
	})
	return g.Wait()
}

// FetchAll replaces the cached expenses with the server's collection,
// verbatim and in server order. On failure the cache is left as it was and
// the error is recorded, not returned.
func (c *Cache) FetchAll(ctx context.Context) {
	_ = c.fetchAll(ctx)
}

func (c *Cache) fetchAll(ctx context.Context) error {
	if !c.begin(ctx, true) {
		return ctx.Err()
	}
	defer c.queue.Release(1)

	expenses, err := c.api.ListExpenses(ctx)

	c.mu.Lock()
	defer c.endLocked()
	if err != nil {
		e := newError(FetchFailed, err)
		c.failLocked(e)
		return e
	}
	c.expenses = append(make([]client.Expense, 0, len(expenses)), expenses...)
	c.lastErr = nil
	return nil
}

// FetchCategories replaces the category list. Categories are best effort and
// stay out of the error slot: a failure is only logged and leaves the list
// unchanged, and a success does not clear an earlier expense failure.
func (c *Cache) FetchCategories(ctx context.Context) {
	c.begin(ctx, false)

	categories, err := c.api.ListCategories(ctx)

	c.mu.Lock()
	if err != nil {
		c.log.Warnw("Failed to fetch categories", "error", err)
	} else {
		c.categories = append(make([]string, 0, len(categories)), categories...)
	}
	c.endLocked()
}

// Create sends draft to the server and appends the stored record, which
// carries the server-assigned id and timestamps. Drafts are not validated
// here; the server is the judge. If ctx ends while the call is still queued
// behind another operation, ctx.Err() is returned as is, no request is made
// and the error slot is left alone.
func (c *Cache) Create(ctx context.Context, draft client.ExpenseDraft) (client.Expense, error) {
	if !c.begin(ctx, true) {
		return client.Expense{}, ctx.Err()
	}
	defer c.queue.Release(1)

	created, err := c.api.CreateExpense(ctx, draft)

	c.mu.Lock()
	defer c.endLocked()
	if err != nil {
		e := newError(CreateFailed, err)
		c.failLocked(e)
		return client.Expense{}, e
	}
	c.expenses = append(c.expenses, *created)
	c.lastErr = nil
	return *created, nil
}

// Update sends draft for id and replaces the cached record in place. If id is
// not cached, the request is still made but the collection is not touched.
// Cancellation while queued behaves as in Create.
func (c *Cache) Update(ctx context.Context, id string, draft client.ExpenseDraft) (client.Expense, error) {
	if !c.begin(ctx, true) {
		return client.Expense{}, ctx.Err()
	}
	defer c.queue.Release(1)

	updated, err := c.api.UpdateExpense(ctx, id, draft)

	c.mu.Lock()
	defer c.endLocked()
	if err != nil {
		e := newError(UpdateFailed, err)
		c.failLocked(e)
		return client.Expense{}, e
	}
	if i := c.indexLocked(id); i >= 0 {
		c.expenses[i] = *updated
	}
	c.lastErr = nil
	return *updated, nil
}

// Remove deletes id on the server and then drops it from the cache if present.
// Cancellation while queued behaves as in Create.
func (c *Cache) Remove(ctx context.Context, id string) error {
	if !c.begin(ctx, true) {
		return ctx.Err()
	}
	defer c.queue.Release(1)

	err := c.api.DeleteExpense(ctx, id)

	c.mu.Lock()
	defer c.endLocked()
	if err != nil {
		e := newError(DeleteFailed, err)
		c.failLocked(e)
		return e
	}
	if i := c.indexLocked(id); i >= 0 {
		c.expenses = append(c.expenses[:i], c.expenses[i+1:]...)
	}
	c.lastErr = nil
	return nil
}

// Lookup returns the cached record for id. It never touches the network, so
// it reports false until the initial fetch has populated the cache.
func (c *Cache) Lookup(id string) (client.Expense, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.indexLocked(id); i >= 0 {
		return c.expenses[i], true
	}
	return client.Expense{}, false
}

// Snapshot returns a copy of the current state.
func (c *Cache) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return State{
		Expenses:   append([]client.Expense(nil), c.expenses...),
		Categories: append([]string(nil), c.categories...),
		Loading:    c.inFlight > 0,
		Err:        c.lastErr,
	}
}

// Loading reports whether any operation has been started and not finished.
func (c *Cache) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight > 0
}

// Err returns the most recent failure, or nil.
func (c *Cache) Err() *Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Subscribe returns a channel that receives a value after every state
// change. Notifications coalesce: a slow reader sees at least one pending
// signal, not one per change. The returned func unsubscribes and closes the
// channel.
func (c *Cache) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch
	c.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			delete(c.subs, id)
			c.mu.Unlock()
			close(ch)
		})
	}
}

// begin marks an operation in flight and, for collection operations, waits
// for the queue. It returns false if ctx ended while waiting; the operation
// is then abandoned without touching the network.
func (c *Cache) begin(ctx context.Context, queued bool) bool {
	c.mu.Lock()
	c.inFlight++
	c.notifyLocked()
	c.mu.Unlock()

	if !queued {
		return true
	}
	if err := c.queue.Acquire(ctx, 1); err != nil {
		c.mu.Lock()
		c.endLocked()
		return false
	}
	return true
}

// endLocked finishes an operation and releases c.mu.
func (c *Cache) endLocked() {
	c.inFlight--
	c.notifyLocked()
	c.mu.Unlock()
}

func (c *Cache) failLocked(e *Error) {
	c.lastErr = e
	c.log.Errorw(e.Message, "kind", e.Kind.String(), "error", e.Err)
}

func (c *Cache) indexLocked(id string) int {
	for i := range c.expenses {
		if c.expenses[i].ID == id {
			return i
		}
	}
	return -1
}

func (c *Cache) notifyLocked() {
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
