package memory

import (
	"context"
	"sync"

	"github.com/phrazzld/studyace/internal/store"
)

// Transactor implements store.Transactor by running one unit of work at a
// time and restoring a snapshot of DB when the unit fails or panics.
type Transactor struct {
	mu    sync.Mutex
	db    *DB
	users store.UserStore
	sets  store.SetStore
}

var _ store.Transactor = (*Transactor)(nil)

// NewTransactor creates a Transactor over the stores sharing db.
func NewTransactor(db *DB, users store.UserStore, sets store.SetStore) *Transactor {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	return &Transactor{db: db, users: users, sets: sets}
}

// WithinTx implements store.Transactor.
func (t *Transactor) WithinTx(ctx context.Context, fn store.UnitOfWork) (err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	before := t.db.snapshot()
	defer func() {
		if p := recover(); p != nil {
			t.db.restore(before)
			// ALLOW-PANIC: Propagating caught panic from transaction
			panic(p)
		}
		if err != nil {
			t.db.restore(before)
		}
	}()

	return fn(ctx, store.Stores{Users: t.users, Sets: t.sets})
}
