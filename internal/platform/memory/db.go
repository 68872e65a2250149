package memory

import (
	"sync"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
)

type userRecord struct {
	user   domain.User
	ledger domain.Ledger
}

// DB is the shared state behind UserStore and SetStore, so that deleting a
// user also removes their sets.
type DB struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*userRecord
	sets  map[uuid.UUID]*domain.FlashcardSet
}

// NewDB creates an empty database.
func NewDB() *DB {
	return &DB{
		users: make(map[uuid.UUID]*userRecord),
		sets:  make(map[uuid.UUID]*domain.FlashcardSet),
	}
}

type snapshot struct {
	users map[uuid.UUID]*userRecord
	sets  map[uuid.UUID]*domain.FlashcardSet
}

func (db *DB) snapshot() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()
	s := snapshot{
		users: make(map[uuid.UUID]*userRecord, len(db.users)),
		sets:  make(map[uuid.UUID]*domain.FlashcardSet, len(db.sets)),
	}
	for id, rec := range db.users {
		s.users[id] = &userRecord{user: rec.user, ledger: cloneLedger(rec.ledger)}
	}
	for id, set := range db.sets {
		s.sets[id] = cloneSet(set)
	}
	return s
}

func (db *DB) restore(s snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.users = s.users
	db.sets = s.sets
}

func cloneLedger(l domain.Ledger) domain.Ledger {
	l.Badges = append([]string(nil), l.Badges...)
	l.Achievements = append([]string(nil), l.Achievements...)
	return l
}

func cloneSet(s *domain.FlashcardSet) *domain.FlashcardSet {
	c := *s
	c.Cards = append([]domain.Flashcard(nil), s.Cards...)
	return &c
}
