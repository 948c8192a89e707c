package audit

import (
	"context"
	"testing"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockAuditRepository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveAuditLog(ctx context.Context, log domain.AuditLog) error {
	args := m.Called(ctx, log)
	return args.Error(0)
}

func (m *MockAuditRepository) ListAuditLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]domain.AuditLog), args.Error(1)
}

func TestAuditService_Log(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	svc := NewAuditService(mockRepo)

	ctx := context.Background()

	// Without a request id the entry falls back to the system marker
	mockRepo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(l domain.AuditLog) bool {
		return l.Action == domain.ActionInfo && l.Target == "target" && l.RequestID == "system"
	})).Return(nil)

	err := svc.Log(ctx, domain.ActionInfo, "target", "details")
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestAuditService_LogWithRequestContext(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	svc := NewAuditService(mockRepo)

	ctx := context.WithValue(context.Background(), domain.RequestIDKey, "req-123")
	ctx = context.WithValue(ctx, domain.ClientAddrKey, "10.0.0.9")

	mockRepo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(l domain.AuditLog) bool {
		return l.Action == domain.ActionLookup && l.RequestID == "req-123" && l.IPAddress == "10.0.0.9"
	})).Return(nil)

	err := svc.Log(ctx, domain.ActionLookup, "CVE-2024-0001", "lookup completed")
	assert.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestAuditService_LogRejectsUnknownAction(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	svc := NewAuditService(mockRepo)

	err := svc.Log(context.Background(), domain.AuditAction("NOT_A_THING"), "t", "d")
	assert.ErrorIs(t, err, domain.ErrInvalidAction)
	mockRepo.AssertNotCalled(t, "SaveAuditLog")
}

func TestAuditService_GetLogs(t *testing.T) {
	mockRepo := new(MockAuditRepository)
	svc := NewAuditService(mockRepo)

	logs := []domain.AuditLog{{ID: 1, Action: domain.ActionLookup}}
	mockRepo.On("ListAuditLogs", mock.Anything, 10).Return(logs, nil)

	res, err := svc.GetLogs(context.Background(), 10)
	assert.NoError(t, err)
	assert.Len(t, res, 1)
	assert.Equal(t, domain.ActionLookup, res[0].Action)
}
