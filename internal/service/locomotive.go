package service

import (
	"context"

	"go.uber.org/zap"

	"CrewWatch/internal/model"
	"CrewWatch/internal/repository"
)

// LocomotiveService 机车登记表查询，登记本身由班次创建时 find-or-create 完成
type LocomotiveService interface {
	List(ctx context.Context, page, limit int) ([]model.Locomotive, int64, error)
}

type locomotiveService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewLocomotiveService 创建 LocomotiveService
func NewLocomotiveService(repos *repository.Repositories, logger *zap.Logger) LocomotiveService {
	return &locomotiveService{repos: repos, logger: logger}
}

func (s *locomotiveService) List(ctx context.Context, page, limit int) ([]model.Locomotive, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repos.Locomotive.List(ctx, (page-1)*limit, limit)
}
