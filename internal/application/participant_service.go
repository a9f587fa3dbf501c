package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"sort"
	"strings"
	"time"

	"github.com/example/meetingverify/internal/persistence"
)

// ParticipantRepository captures the persistence operations needed by the service.
type ParticipantRepository interface {
	CreateParticipant(ctx context.Context, participant Participant) (Participant, error)
	GetParticipant(ctx context.Context, id string) (Participant, error)
	UpdateParticipant(ctx context.Context, participant Participant) (Participant, error)
	DeleteParticipant(ctx context.Context, id string) error
	ListParticipants(ctx context.Context) ([]Participant, error)
}

// ParticipantService orchestrates validation and persistence for participants.
type ParticipantService struct {
	participants ParticipantRepository
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewParticipantService constructs a participant service with the provided dependencies.
func NewParticipantService(participants ParticipantRepository, idGenerator func() string, now func() time.Time) *ParticipantService {
	return NewParticipantServiceWithLogger(participants, idGenerator, now, nil)
}

// NewParticipantServiceWithLogger constructs a participant service with a specified logger.
func NewParticipantServiceWithLogger(participants ParticipantRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ParticipantService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ParticipantService{participants: participants, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *ParticipantService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ParticipantService", operation, attrs...)
}

// CreateParticipant validates input and persists a new participant.
func (s *ParticipantService) CreateParticipant(ctx context.Context, params CreateParticipantParams) (participant Participant, err error) {
	if s == nil {
		err = fmt.Errorf("ParticipantService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateParticipant")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("participant_id", participant.ID).InfoContext(ctx, "participant created")
	}()

	vErr := validateParticipantInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	participant = Participant{
		ID:         s.idGenerator(),
		Name:       strings.TrimSpace(params.Input.Name),
		Email:      normalizeEmail(params.Input.Email),
		Department: normalizeOptionalString(params.Input.Department),
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}

	if s.participants == nil {
		return
	}

	var persisted Participant
	persisted, err = s.participants.CreateParticipant(ctx, participant)
	if err != nil {
		err = mapParticipantRepoError(err)
		return
	}

	participant = persisted
	return
}

// UpdateParticipant validates input and updates an existing participant.
func (s *ParticipantService) UpdateParticipant(ctx context.Context, params UpdateParticipantParams) (participant Participant, err error) {
	if s == nil {
		err = fmt.Errorf("ParticipantService is nil")
		return
	}
	if s.participants == nil {
		err = fmt.Errorf("participant repository not configured")
		return
	}

	logger := s.loggerWith(ctx, "UpdateParticipant", "participant_id", params.ParticipantID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update participant", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("participant_id", participant.ID).InfoContext(ctx, "participant updated")
	}()

	var existing Participant
	existing, err = s.participants.GetParticipant(ctx, params.ParticipantID)
	if err != nil {
		err = mapParticipantRepoError(err)
		return
	}

	vErr := validateParticipantInput(params.Input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	updated := existing
	updated.Name = strings.TrimSpace(params.Input.Name)
	updated.Email = normalizeEmail(params.Input.Email)
	updated.Department = normalizeOptionalString(params.Input.Department)
	updated.UpdatedAt = s.now()

	participant, err = s.participants.UpdateParticipant(ctx, updated)
	if err != nil {
		err = mapParticipantRepoError(err)
		return
	}

	return
}

// DeleteParticipant removes an existing participant.
func (s *ParticipantService) DeleteParticipant(ctx context.Context, participantID string) error {
	if s == nil {
		return fmt.Errorf("ParticipantService is nil")
	}
	if s.participants == nil {
		return fmt.Errorf("participant repository not configured")
	}

	logger := s.loggerWith(ctx, "DeleteParticipant", "participant_id", participantID)

	if err := s.participants.DeleteParticipant(ctx, participantID); err != nil {
		err = mapParticipantRepoError(err)
		logger.ErrorContext(ctx, "failed to delete participant", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "participant deleted")
	return nil
}

// ListParticipants returns the participant directory.
func (s *ParticipantService) ListParticipants(ctx context.Context) (participants []Participant, err error) {
	if s == nil {
		err = fmt.Errorf("ParticipantService is nil")
		return
	}
	if s.participants == nil {
		return nil, nil
	}

	logger := s.loggerWith(ctx, "ListParticipants")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list participants", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(participants)).InfoContext(ctx, "participants listed")
	}()

	var raw []Participant
	raw, err = s.participants.ListParticipants(ctx)
	if err != nil {
		return
	}

	participants = make([]Participant, len(raw))
	copy(participants, raw)

	sort.Slice(participants, func(i, j int) bool {
		if strings.EqualFold(participants[i].Name, participants[j].Name) {
			return participants[i].ID < participants[j].ID
		}
		return strings.ToLower(participants[i].Name) < strings.ToLower(participants[j].Name)
	})

	return
}

// MissingParticipantIDs reports which of the given ids do not resolve to a
// known participant, used by the scheduling service to validate meeting
// requests (spec §4.3 step 3).
func (s *ParticipantService) MissingParticipantIDs(ctx context.Context, ids []string) ([]string, error) {
	if s == nil || s.participants == nil {
		return nil, nil
	}
	var missing []string
	for _, id := range ids {
		if _, err := s.participants.GetParticipant(ctx, id); err != nil {
			if errors.Is(err, persistence.ErrNotFound) || errors.Is(err, ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			return nil, err
		}
	}
	return missing, nil
}

func validateParticipantInput(input ParticipantInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.Name) == "" {
		vErr.add("name", "name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		vErr.add("email", "email is required")
	} else if _, err := mail.ParseAddress(input.Email); err != nil {
		vErr.add("email", "must be a valid email address")
	}

	return vErr
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func mapParticipantRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("participant_id", "participant is referenced by live meetings")
		return vErr
	}
	return err
}
