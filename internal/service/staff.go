package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"CrewWatch/internal/model"
	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/repository"
	pkgerrors "CrewWatch/pkg/errors"
	"CrewWatch/utils"
)

// StaffService 乘务员档案管理
type StaffService interface {
	Create(ctx context.Context, req *dto.CreateStaffRequest) (*model.Staff, error)
	Get(ctx context.Context, id int64) (*model.Staff, error)
	List(ctx context.Context, query *dto.ListStaffQuery) ([]model.Staff, int64, error)
}

type staffService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewStaffService 创建 StaffService
func NewStaffService(repos *repository.Repositories, logger *zap.Logger) StaffService {
	return &staffService{repos: repos, logger: logger}
}

func (s *staffService) Create(ctx context.Context, req *dto.CreateStaffRequest) (*model.Staff, error) {
	if req.Phone != "" && !utils.ValidatePhone(req.Phone) {
		return nil, pkgerrors.InvalidPhone
	}

	staff := &model.Staff{
		EmployeeID:  req.EmployeeID,
		Name:        req.Name,
		StaffType:   model.StaffType(req.StaffType),
		Phone:       req.Phone,
		Email:       req.Email,
		HomeStation: req.HomeStation,
		Status:      model.StaffStatusAvailable,
	}
	if err := s.repos.Staff.Create(ctx, staff); err != nil {
		return nil, err
	}

	s.logger.Info("staff created",
		zap.Int64("staff_id", staff.ID),
		zap.String("employee_id", staff.EmployeeID),
		zap.String("staff_type", string(staff.StaffType)))
	return staff, nil
}

func (s *staffService) Get(ctx context.Context, id int64) (*model.Staff, error) {
	staff, err := s.repos.Staff.GetByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.StaffNotFound
		}
		return nil, err
	}
	return staff, nil
}

func (s *staffService) List(ctx context.Context, query *dto.ListStaffQuery) ([]model.Staff, int64, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	return s.repos.Staff.List(ctx,
		model.StaffType(query.StaffType),
		model.StaffStatus(query.Status),
		(page-1)*limit, limit)
}
