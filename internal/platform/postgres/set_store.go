package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/store"
)

// PostgresSetStore implements store.SetStore. Create and Update write the
// set row and its cards with several statements, so callers should run them
// through a store.Transactor.
type PostgresSetStore struct {
	db     store.DBTX
	logger *slog.Logger
}

var _ store.SetStore = (*PostgresSetStore)(nil)

// NewPostgresSetStore creates a PostgresSetStore.
func NewPostgresSetStore(db store.DBTX, logger *slog.Logger) *PostgresSetStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresSetStore{
		db:     db,
		logger: logger.With(slog.String("component", "set_store")),
	}
}

// WithTx implements store.SetStore.
func (s *PostgresSetStore) WithTx(tx *sql.Tx) store.SetStore {
	return &PostgresSetStore{db: tx, logger: s.logger}
}

// Create implements store.SetStore.
func (s *PostgresSetStore) Create(ctx context.Context, set *domain.FlashcardSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO flashcard_sets (id, user_id, title, is_default, is_public, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		set.ID, set.UserID, set.Title, set.IsDefault, set.IsPublic, set.CreatedAt, set.UpdatedAt)
	if err != nil {
		return MapError(err)
	}
	if err := s.insertCards(ctx, set); err != nil {
		return err
	}

	logger.FromContextOrDefault(ctx, s.logger).Debug("flashcard set created",
		slog.String("set_id", set.ID.String()),
		slog.Int("cards", len(set.Cards)))
	return nil
}

func (s *PostgresSetStore) insertCards(ctx context.Context, set *domain.FlashcardSet) error {
	for i, c := range set.Cards {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO flashcards (id, set_id, position, term, definition, tags)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			c.ID, set.ID, i, c.Term, c.Definition, c.Tags)
		if err != nil {
			return MapError(err)
		}
	}
	return nil
}

const selectSet = `SELECT id, user_id, title, is_default, is_public, created_at, updated_at FROM flashcard_sets`

// GetByID implements store.SetStore.
func (s *PostgresSetStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.FlashcardSet, error) {
	var set domain.FlashcardSet
	err := s.db.QueryRowContext(ctx, selectSet+` WHERE id = $1`, id).
		Scan(&set.ID, &set.UserID, &set.Title, &set.IsDefault, &set.IsPublic, &set.CreatedAt, &set.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrSetNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}

	cards, err := s.queryCards(ctx, `
		SELECT id, set_id, position, term, definition, tags
		FROM flashcards WHERE set_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	set.Cards = cards[id]
	return &set, nil
}

// ListByUser implements store.SetStore.
func (s *PostgresSetStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.FlashcardSet, error) {
	rows, err := s.db.QueryContext(ctx,
		selectSet+` WHERE user_id = $1 ORDER BY is_default DESC, created_at, id`, userID)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var sets []*domain.FlashcardSet
	for rows.Next() {
		var set domain.FlashcardSet
		if err := rows.Scan(&set.ID, &set.UserID, &set.Title, &set.IsDefault, &set.IsPublic,
			&set.CreatedAt, &set.UpdatedAt); err != nil {
			return nil, MapError(err)
		}
		sets = append(sets, &set)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}

	cards, err := s.queryCards(ctx, `
		SELECT c.id, c.set_id, c.position, c.term, c.definition, c.tags
		FROM flashcards c JOIN flashcard_sets fs ON fs.id = c.set_id
		WHERE fs.user_id = $1
		ORDER BY c.set_id, c.position`, userID)
	if err != nil {
		return nil, err
	}
	for _, set := range sets {
		set.Cards = cards[set.ID]
	}
	return sets, nil
}

func (s *PostgresSetStore) queryCards(ctx context.Context, query string, arg any) (map[uuid.UUID][]domain.Flashcard, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	out := make(map[uuid.UUID][]domain.Flashcard)
	for rows.Next() {
		var c domain.Flashcard
		if err := rows.Scan(&c.ID, &c.SetID, &c.Position, &c.Term, &c.Definition, &c.Tags); err != nil {
			return nil, MapError(err)
		}
		out[c.SetID] = append(out[c.SetID], c)
	}
	return out, rows.Err()
}

// Update implements store.SetStore. Owner, default flag and creation time
// are never changed.
func (s *PostgresSetStore) Update(ctx context.Context, set *domain.FlashcardSet) error {
	if err := set.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE flashcard_sets SET title = $2, is_public = $3, updated_at = $4 WHERE id = $1`,
		set.ID, set.Title, set.IsPublic, now)
	if err != nil {
		return MapError(err)
	}
	if err := CheckRowsAffected(result, store.ErrSetNotFound); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM flashcards WHERE set_id = $1`, set.ID); err != nil {
		return MapError(err)
	}
	if err := s.insertCards(ctx, set); err != nil {
		return err
	}
	set.UpdatedAt = now
	return nil
}

// Delete implements store.SetStore.
func (s *PostgresSetStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM flashcard_sets WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrSetNotFound)
}

// Stats implements store.SetStore.
func (s *PostgresSetStore) Stats(ctx context.Context, userID uuid.UUID) (gamification.SetStats, error) {
	var stats gamification.SetStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT fs.id), COUNT(c.id)
		FROM flashcard_sets fs LEFT JOIN flashcards c ON c.set_id = fs.id
		WHERE fs.user_id = $1 AND NOT fs.is_default`, userID).
		Scan(&stats.Sets, &stats.Cards)
	if err != nil {
		return gamification.SetStats{}, MapError(err)
	}
	return stats, nil
}
