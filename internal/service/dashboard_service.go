package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/AshiqAbdulkhader/FSAD-version2/internal/models"
	"github.com/AshiqAbdulkhader/FSAD-version2/internal/repository"
	appErrors "github.com/AshiqAbdulkhader/FSAD-version2/pkg/errors"
)

const dashboardStatsCacheKey = "dash:stats"

type dashboardRepository interface {
	CountEquipment(ctx context.Context) (int, error)
	CountUsers(ctx context.Context) (int, error)
	CountPendingRequests(ctx context.Context) (int, error)
	CountActiveBorrowings(ctx context.Context) (int, error)
	EquipmentByCategory(ctx context.Context) ([]repository.StatusCount, error)
	RequestsByStatus(ctx context.Context) ([]repository.StatusCount, error)
}

// DashboardService composes the admin dashboard aggregates. Read-only
// projections over storage; restricted to admins at the route and re-checked
// here.
type DashboardService struct {
	repo     dashboardRepository
	cache    *CacheService
	logger   *zap.Logger
	cacheTTL time.Duration
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(repo dashboardRepository, cache *CacheService, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = 5 * time.Minute
	}
	return &DashboardService{repo: repo, cache: cache, logger: logger, cacheTTL: cacheTTL}
}

// Stats returns the aggregate counts, indicating whether the cache served them.
func (s *DashboardService) Stats(ctx context.Context, actor *models.JWTClaims) (*models.DashboardStats, bool, error) {
	if actor == nil {
		return nil, false, appErrors.Clone(appErrors.ErrUnauthorized, "")
	}
	if actor.Role != models.RoleAdmin {
		return nil, false, appErrors.Clone(appErrors.ErrForbidden, "admin role required")
	}

	if s.cache != nil {
		var cached models.DashboardStats
		hit, err := s.cache.Get(ctx, dashboardStatsCacheKey, &cached)
		if err == nil && hit {
			return &cached, true, nil
		}
	}

	stats, err := s.compose(ctx)
	if err != nil {
		return nil, false, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardStatsCacheKey, stats, s.cacheTTL); err != nil {
			s.logger.Warn("dashboard cache write failed", zap.Error(err))
		}
	}

	return stats, false, nil
}

func (s *DashboardService) compose(ctx context.Context) (*models.DashboardStats, error) {
	totalEquipment, err := s.repo.CountEquipment(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count equipment")
	}
	totalUsers, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count users")
	}
	pending, err := s.repo.CountPendingRequests(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count pending requests")
	}
	active, err := s.repo.CountActiveBorrowings(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count active borrowings")
	}
	byCategory, err := s.repo.EquipmentByCategory(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group equipment")
	}
	byStatus, err := s.repo.RequestsByStatus(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to group requests")
	}

	return &models.DashboardStats{
		TotalEquipment:      totalEquipment,
		TotalUsers:          totalUsers,
		PendingRequests:     pending,
		ActiveBorrowings:    active,
		EquipmentByCategory: toCountMap(byCategory),
		RequestsByStatus:    toCountMap(byStatus),
	}, nil
}

func toCountMap(rows []repository.StatusCount) map[string]int {
	result := make(map[string]int, len(rows))
	for _, row := range rows {
		result[row.Label] = row.Count
	}
	return result
}
