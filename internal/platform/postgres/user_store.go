package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/store"
	"golang.org/x/crypto/bcrypt"
)

const usernameConstraint = "users_username_lower_idx"

// PostgresUserStore implements the store.UserStore interface
// using a PostgreSQL database as the storage backend.
type PostgresUserStore struct {
	db         store.DBTX
	logger     *slog.Logger
	bcryptCost int
}

// Ensure PostgresUserStore implements store.UserStore interface
var _ store.UserStore = (*PostgresUserStore)(nil)

// NewPostgresUserStore creates a PostgresUserStore. A bcryptCost outside
// bcrypt's accepted range falls back to bcrypt.DefaultCost.
func NewPostgresUserStore(db store.DBTX, logger *slog.Logger, bcryptCost int) *PostgresUserStore {
	if db == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &PostgresUserStore{
		db:         db,
		logger:     logger.With(slog.String("component", "user_store")),
		bcryptCost: bcryptCost,
	}
}

// WithTx implements store.UserStore.
func (s *PostgresUserStore) WithTx(tx *sql.Tx) store.UserStore {
	return &PostgresUserStore{db: tx, logger: s.logger, bcryptCost: s.bcryptCost}
}

// Create implements store.UserStore. The user row and an empty ledger are
// inserted by one statement.
func (s *PostgresUserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}
	if user.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		user.HashedPassword = string(hash)
		user.Password = ""
	}

	_, err := s.db.ExecContext(ctx, `
		WITH u AS (
			INSERT INTO users (id, username, hashed_password, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id
		)
		INSERT INTO ledgers (user_id) SELECT id FROM u`,
		user.ID, user.Username, user.HashedPassword, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		log.Debug("failed to insert user", slog.String("user_id", user.ID.String()), slog.String("error", err.Error()))
		return MapUniqueViolation(err, usernameConstraint, store.ErrUsernameExists)
	}

	log.Debug("user created", slog.String("user_id", user.ID.String()))
	return nil
}

const selectUser = `SELECT id, username, hashed_password, created_at, updated_at FROM users`

// GetByID implements store.UserStore.
func (s *PostgresUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.getUser(ctx, selectUser+` WHERE id = $1`, id)
}

// GetByUsername implements store.UserStore. Usernames compare case-insensitively.
func (s *PostgresUserStore) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return s.getUser(ctx, selectUser+` WHERE lower(username) = lower($1)`, username)
}

func (s *PostgresUserStore) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var u domain.User
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.HashedPassword, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}
	return &u, nil
}

// Update implements store.UserStore.
func (s *PostgresUserStore) Update(ctx context.Context, user *domain.User) error {
	if err := domain.ValidateUsername(user.Username); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var hash string
	if user.Password != "" {
		if err := domain.ValidatePassword(user.Password); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		b, err := bcrypt.GenerateFromPassword([]byte(user.Password), s.bcryptCost)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
		hash = string(b)
	}

	now := time.Now().UTC()
	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET username = $2,
		    hashed_password = COALESCE(NULLIF($3, ''), hashed_password),
		    updated_at = $4
		WHERE id = $1`,
		user.ID, user.Username, hash, now)
	if err != nil {
		return MapUniqueViolation(err, usernameConstraint, store.ErrUsernameExists)
	}
	if err := CheckRowsAffected(result, store.ErrUserNotFound); err != nil {
		return err
	}

	if hash != "" {
		user.HashedPassword = hash
		user.Password = ""
	}
	user.UpdatedAt = now
	return nil
}

// Delete implements store.UserStore. Sets, cards and the ledger cascade.
func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// GetLedger implements store.UserStore.
func (s *PostgresUserStore) GetLedger(ctx context.Context, id uuid.UUID) (*domain.Ledger, error) {
	var (
		l                           domain.Ledger
		lastActive, challengeDate   sql.NullTime
		badgesJSON, achievementJSON []byte
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT points, streak, last_active, badges, achievements,
		       challenge_date, challenge_goal, challenge_progress,
		       challenge_completed, challenges_completed
		FROM ledgers WHERE user_id = $1`, id).
		Scan(&l.Points, &l.Streak, &lastActive, &badgesJSON, &achievementJSON,
			&challengeDate, &l.Challenge.Goal, &l.Challenge.Progress,
			&l.Challenge.Completed, &l.ChallengesCompleted)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, MapError(err)
	}

	if lastActive.Valid {
		l.LastActive = domain.DateOf(lastActive.Time)
	}
	if challengeDate.Valid {
		l.Challenge.Date = domain.DateOf(challengeDate.Time)
	}
	if err := json.Unmarshal(badgesJSON, &l.Badges); err != nil {
		return nil, fmt.Errorf("failed to decode badges: %w", err)
	}
	if err := json.Unmarshal(achievementJSON, &l.Achievements); err != nil {
		return nil, fmt.Errorf("failed to decode achievements: %w", err)
	}
	return &l, nil
}

// SaveLedger implements store.UserStore.
func (s *PostgresUserStore) SaveLedger(ctx context.Context, id uuid.UUID, l *domain.Ledger) error {
	badges, err := json.Marshal(nonNil(l.Badges))
	if err != nil {
		return fmt.Errorf("failed to encode badges: %w", err)
	}
	achievements, err := json.Marshal(nonNil(l.Achievements))
	if err != nil {
		return fmt.Errorf("failed to encode achievements: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE ledgers
		SET points = $2, streak = $3, last_active = $4,
		    badges = $5::jsonb, achievements = $6::jsonb,
		    challenge_date = $7, challenge_goal = $8, challenge_progress = $9,
		    challenge_completed = $10, challenges_completed = $11
		WHERE user_id = $1`,
		id, l.Points, l.Streak, nullDate(l.LastActive), string(badges), string(achievements),
		nullDate(l.Challenge.Date), l.Challenge.Goal, l.Challenge.Progress,
		l.Challenge.Completed, l.ChallengesCompleted)
	if err != nil {
		return MapError(err)
	}
	return CheckRowsAffected(result, store.ErrUserNotFound)
}

// Leaderboard implements store.UserStore.
func (s *PostgresUserStore) Leaderboard(ctx context.Context) ([]store.LeaderboardRow, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.username, l.points
		FROM users u JOIN ledgers l ON l.user_id = u.id
		ORDER BY l.points DESC, u.username`)
	if err != nil {
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var out []store.LeaderboardRow
	for rows.Next() {
		var r store.LeaderboardRow
		if err := rows.Scan(&r.UserID, &r.Username, &r.Points); err != nil {
			return nil, MapError(err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullDate(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: domain.DateOf(t), Valid: true}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
