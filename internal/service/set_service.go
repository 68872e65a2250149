package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/interchange"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/store"
)

// SetServiceError is a custom error type for set service errors.
type SetServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for SetServiceError.
func (e *SetServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("set service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("set service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *SetServiceError) Unwrap() error {
	return e.Err
}

// NewSetServiceError creates a new SetServiceError.
func NewSetServiceError(operation, message string, err error) *SetServiceError {
	return &SetServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// CreateSetParams describes a new set.
type CreateSetParams struct {
	Title    string
	IsPublic bool
	Cards    []domain.CardInput
}

// UpdateSetParams describes an edit. Cards replaces the whole card list;
// a nil IsPublic keeps the current visibility.
type UpdateSetParams struct {
	Title    string
	IsPublic *bool
	Cards    []domain.CardInput
}

// SetService manages flashcard sets.
//
// Read operations take a viewer, which is uuid.Nil for anonymous callers.
// A private set looks the same as a missing one to anyone but its owner,
// so those operations return store.ErrSetNotFound.
type SetService interface {
	// CreateSet validates and saves a new set owned by userID.
	CreateSet(ctx context.Context, userID uuid.UUID, params CreateSetParams) (*domain.FlashcardSet, error)

	// GetSet returns a set the viewer may read.
	GetSet(ctx context.Context, viewer, setID uuid.UUID) (*domain.FlashcardSet, error)

	// ListSets returns the user's sets. A non-empty query moves sets whose
	// title contains it (ignoring case) to the front, keeping order otherwise.
	ListSets(ctx context.Context, userID uuid.UUID, query string) ([]*domain.FlashcardSet, error)

	// UpdateSet edits a set owned by userID.
	UpdateSet(ctx context.Context, userID, setID uuid.UUID, params UpdateSetParams) (*domain.FlashcardSet, error)

	// DeleteSet removes a set owned by userID. The default set is protected.
	DeleteSet(ctx context.Context, userID, setID uuid.UUID) error

	// SearchCards returns the set's cards whose term or definition contains query.
	SearchCards(ctx context.Context, viewer, setID uuid.UUID, query string) ([]domain.Flashcard, error)

	// Tags lists the distinct tags used in the set, sorted.
	Tags(ctx context.Context, viewer, setID uuid.UUID) ([]string, error)

	// CardsByTag returns the cards carrying tag, or every card for an empty tag.
	CardsByTag(ctx context.Context, viewer, setID uuid.UUID, tag string) ([]domain.Flashcard, error)

	// ImportSet creates a set from a deck file. title overrides the title in
	// the file; one of them must be present.
	ImportSet(
		ctx context.Context,
		userID uuid.UUID,
		title string,
		format interchange.Format,
		r io.Reader,
	) (*domain.FlashcardSet, error)

	// ExportSet writes a set owned by userID to w.
	ExportSet(ctx context.Context, userID, setID uuid.UUID, format interchange.Format, w io.Writer) (*domain.FlashcardSet, error)
}

// setServiceImpl implements the SetService interface.
type setServiceImpl struct {
	sets   store.SetStore
	tx     store.Transactor
	logger *slog.Logger
}

// Verify interface compliance at compile time
var _ SetService = (*setServiceImpl)(nil)

// NewSetService creates a new SetService. Reads use sets directly; writes go
// through tx so multi-statement SQL backends stay atomic.
func NewSetService(sets store.SetStore, tx store.Transactor, logger *slog.Logger) (SetService, error) {
	if sets == nil {
		return nil, fmt.Errorf("set store cannot be nil")
	}
	if tx == nil {
		return nil, fmt.Errorf("transactor cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &setServiceImpl{
		sets:   sets,
		tx:     tx,
		logger: logger.With(slog.String("component", "set_service")),
	}, nil
}

// CreateSet implements SetService.
func (s *setServiceImpl) CreateSet(
	ctx context.Context,
	userID uuid.UUID,
	params CreateSetParams,
) (*domain.FlashcardSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	set, err := domain.NewFlashcardSet(userID, params.Title, params.Cards)
	if err != nil {
		log.Debug("set rejected",
			slog.String("user_id", userID.String()),
			slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}
	set.IsPublic = params.IsPublic

	if err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		return st.Sets.Create(ctx, set)
	}); err != nil {
		log.Error("failed to create set",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewSetServiceError("create_set", "failed to save set", err)
	}

	log.Info("set created",
		slog.String("user_id", userID.String()),
		slog.String("set_id", set.ID.String()),
		slog.Int("card_count", len(set.Cards)))
	return set, nil
}

// GetSet implements SetService.
func (s *setServiceImpl) GetSet(ctx context.Context, viewer, setID uuid.UUID) (*domain.FlashcardSet, error) {
	return s.readable(ctx, "get_set", viewer, setID)
}

// ListSets implements SetService.
func (s *setServiceImpl) ListSets(ctx context.Context, userID uuid.UUID, query string) ([]*domain.FlashcardSet, error) {
	sets, err := s.sets.ListByUser(ctx, userID)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to list sets",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, NewSetServiceError("list_sets", "failed to list sets", err)
	}

	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return sets, nil
	}
	sort.SliceStable(sets, func(i, j int) bool {
		return strings.Contains(strings.ToLower(sets[i].Title), q) &&
			!strings.Contains(strings.ToLower(sets[j].Title), q)
	})
	return sets, nil
}

// UpdateSet implements SetService.
func (s *setServiceImpl) UpdateSet(
	ctx context.Context,
	userID, setID uuid.UUID,
	params UpdateSetParams,
) (*domain.FlashcardSet, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var updated *domain.FlashcardSet
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		set, err := s.owned(ctx, st.Sets, userID, setID)
		if err != nil {
			return err
		}

		set.Title = strings.TrimSpace(params.Title)
		if params.IsPublic != nil {
			set.IsPublic = *params.IsPublic
		}
		set.ReplaceCards(params.Cards)
		set.UpdatedAt = time.Now().UTC()
		if err := set.Validate(); err != nil {
			return fmt.Errorf("%w: %w", domain.ErrValidation, err)
		}

		if err := st.Sets.Update(ctx, set); err != nil {
			return err
		}
		updated = set
		return nil
	})
	if err != nil {
		if isExpected(err) {
			return nil, err
		}
		log.Error("failed to update set",
			slog.String("set_id", setID.String()),
			slog.String("error", err.Error()))
		return nil, NewSetServiceError("update_set", "failed to save set", err)
	}

	log.Info("set updated",
		slog.String("set_id", setID.String()),
		slog.Int("card_count", len(updated.Cards)))
	return updated, nil
}

// DeleteSet implements SetService.
func (s *setServiceImpl) DeleteSet(ctx context.Context, userID, setID uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		set, err := s.owned(ctx, st.Sets, userID, setID)
		if err != nil {
			return err
		}
		if set.IsDefault {
			return ErrDefaultSetProtected
		}
		return st.Sets.Delete(ctx, setID)
	})
	if err != nil {
		if isExpected(err) {
			return err
		}
		log.Error("failed to delete set",
			slog.String("set_id", setID.String()),
			slog.String("error", err.Error()))
		return NewSetServiceError("delete_set", "failed to delete set", err)
	}

	log.Info("set deleted", slog.String("set_id", setID.String()))
	return nil
}

// SearchCards implements SetService.
func (s *setServiceImpl) SearchCards(
	ctx context.Context,
	viewer, setID uuid.UUID,
	query string,
) ([]domain.Flashcard, error) {
	set, err := s.readable(ctx, "search_cards", viewer, setID)
	if err != nil {
		return nil, err
	}
	return nonNilCards(set.Search(query)), nil
}

// Tags implements SetService.
func (s *setServiceImpl) Tags(ctx context.Context, viewer, setID uuid.UUID) ([]string, error) {
	set, err := s.readable(ctx, "tags", viewer, setID)
	if err != nil {
		return nil, err
	}
	tags := set.Tags()
	sort.Strings(tags)
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

// CardsByTag implements SetService.
func (s *setServiceImpl) CardsByTag(
	ctx context.Context,
	viewer, setID uuid.UUID,
	tag string,
) ([]domain.Flashcard, error) {
	set, err := s.readable(ctx, "cards_by_tag", viewer, setID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(tag) == "" {
		return set.Cards, nil
	}
	return nonNilCards(set.CardsTagged(tag)), nil
}

// ImportSet implements SetService.
func (s *setServiceImpl) ImportSet(
	ctx context.Context,
	userID uuid.UUID,
	title string,
	format interchange.Format,
	r io.Reader,
) (*domain.FlashcardSet, error) {
	deck, err := interchange.Decode(format, r)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Debug("import rejected",
			slog.String("user_id", userID.String()),
			slog.String("format", string(format)),
			slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFormat, err)
	}

	if t := strings.TrimSpace(title); t != "" {
		deck.Title = t
	}
	if strings.TrimSpace(deck.Title) == "" {
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, ErrMissingTitle)
	}

	return s.CreateSet(ctx, userID, CreateSetParams{Title: deck.Title, Cards: deck.Cards})
}

// ExportSet implements SetService.
func (s *setServiceImpl) ExportSet(
	ctx context.Context,
	userID, setID uuid.UUID,
	format interchange.Format,
	w io.Writer,
) (*domain.FlashcardSet, error) {
	set, err := s.owned(ctx, s.sets, userID, setID)
	if err != nil {
		if isExpected(err) {
			return nil, err
		}
		return nil, NewSetServiceError("export_set", "failed to load set", err)
	}
	if err := interchange.Encode(format, w, interchange.FromSet(set)); err != nil {
		if errors.Is(err, interchange.ErrUnsupportedFormat) {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFormat, err)
		}
		return nil, NewSetServiceError("export_set", "failed to encode set", err)
	}
	return set, nil
}

// readable loads a set the viewer may read.
func (s *setServiceImpl) readable(ctx context.Context, op string, viewer, setID uuid.UUID) (*domain.FlashcardSet, error) {
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSetNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load set",
			slog.String("set_id", setID.String()),
			slog.String("error", err.Error()))
		return nil, NewSetServiceError(op, "failed to load set", err)
	}
	if !set.AccessibleBy(viewer) {
		return nil, store.ErrSetNotFound
	}
	return set, nil
}

// owned loads a set for modification by userID.
func (s *setServiceImpl) owned(
	ctx context.Context,
	sets store.SetStore,
	userID, setID uuid.UUID,
) (*domain.FlashcardSet, error) {
	set, err := sets.GetByID(ctx, setID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSetNotFound
		}
		return nil, err
	}
	if !set.AccessibleBy(userID) {
		return nil, store.ErrSetNotFound
	}
	if !set.OwnedBy(userID) {
		return nil, ErrNotOwned
	}
	return set, nil
}

func isExpected(err error) bool {
	return errors.Is(err, store.ErrSetNotFound) ||
		errors.Is(err, ErrNotOwned) ||
		errors.Is(err, ErrDefaultSetProtected) ||
		errors.Is(err, domain.ErrValidation)
}

func nonNilCards(cards []domain.Flashcard) []domain.Flashcard {
	if cards == nil {
		return []domain.Flashcard{}
	}
	return cards
}
