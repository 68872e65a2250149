package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	engine "github.com/phrazzld/studyace/internal/domain/practice"
	"github.com/phrazzld/studyace/internal/service/practice"
	"github.com/stretchr/testify/mock"
)

// MockPracticeService is a testify mock of practice.Service.
type MockPracticeService struct {
	mock.Mock
}

var _ practice.Service = (*MockPracticeService)(nil)

// StartOrResume is a mock implementation of practice.Service.StartOrResume
func (m *MockPracticeService) StartOrResume(
	ctx context.Context,
	actor domain.Actor,
	setID uuid.UUID,
	d domain.Discipline,
) (*engine.Question, error) {
	args := m.Called(ctx, actor, setID, d)
	if q, ok := args.Get(0).(*engine.Question); ok {
		return q, args.Error(1)
	}
	return nil, args.Error(1)
}

// SubmitAnswer is a mock implementation of practice.Service.SubmitAnswer
func (m *MockPracticeService) SubmitAnswer(
	ctx context.Context,
	actor domain.Actor,
	setID uuid.UUID,
	d domain.Discipline,
	answer engine.Answer,
) (*practice.Outcome, error) {
	args := m.Called(ctx, actor, setID, d, answer)
	if out, ok := args.Get(0).(*practice.Outcome); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

// ChallengeStatus is a mock implementation of practice.Service.ChallengeStatus
func (m *MockPracticeService) ChallengeStatus(ctx context.Context, actor domain.Actor) (domain.DailyChallenge, error) {
	args := m.Called(ctx, actor)
	c, _ := args.Get(0).(domain.DailyChallenge)
	return c, args.Error(1)
}
