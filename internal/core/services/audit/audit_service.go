package audit

import (
	"context"

	"github.com/lcalzada-xor/vulnscope/internal/core/domain"
	"github.com/lcalzada-xor/vulnscope/internal/core/ports"
)

type AuditService struct {
	repo ports.AuditRepository
}

func NewAuditService(repo ports.AuditRepository) *AuditService {
	return &AuditService{repo: repo}
}

// Ensure compliance
var _ ports.AuditService = (*AuditService)(nil)

func (s *AuditService) Log(ctx context.Context, action domain.AuditAction, target, details string) error {
	requestID := "system"
	if id, ok := ctx.Value(domain.RequestIDKey).(string); ok && id != "" {
		requestID = id
	}

	ip := ""
	if addr, ok := ctx.Value(domain.ClientAddrKey).(string); ok {
		ip = addr
	}

	// Use Domain Factory to ensure business rules
	entry, err := domain.NewAuditLog(requestID, action, target, details, ip)
	if err != nil {
		return err
	}

	return s.repo.SaveAuditLog(ctx, *entry)
}

func (s *AuditService) GetLogs(ctx context.Context, limit int) ([]domain.AuditLog, error) {
	return s.repo.ListAuditLogs(ctx, limit)
}
