package service

import (
	"context"
	"strconv"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"CrewWatch/internal/model"
	"CrewWatch/internal/model/dto"
	"CrewWatch/internal/repository"
	pkgerrors "CrewWatch/pkg/errors"
	"CrewWatch/pkg/token"
	"CrewWatch/utils"
)

// TokenStore refresh token 的服务端存储，登出与失效靠删 key 实现
type TokenStore interface {
	Set(ctx context.Context, userID, refreshToken string) error
	Validate(ctx context.Context, userID, refreshToken string) bool
	Delete(ctx context.Context, userID string) error
}

// AuthService 操作员注册登录
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error)
	Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context, userID int64) error
}

type authService struct {
	repos  *repository.Repositories
	tokens TokenStore
	clock  Clock
	logger *zap.Logger
}

// NewAuthService 创建 AuthService，tokens 可为 nil（不校验服务端存储）
func NewAuthService(repos *repository.Repositories, tokens TokenStore, clock Clock, logger *zap.Logger) AuthService {
	return &authService{
		repos:  repos,
		tokens: tokens,
		clock:  clock,
		logger: logger,
	}
}

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*model.User, error) {
	_, err := s.repos.User.GetByEmployeeID(ctx, req.EmployeeID)
	if err == nil {
		return nil, pkgerrors.EmployeeIDTaken
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		EmployeeID:   req.EmployeeID,
		Name:         req.Name,
		Email:        req.Email,
		Phone:        req.Phone,
		PasswordHash: hash,
		Role:         model.UserRoleUser,
		Status:       model.UserStatusActive,
		Division:     req.Division,
		Designation:  req.Designation,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.Int64("user_id", user.ID),
		zap.String("employee_id", user.EmployeeID))
	return user, nil
}

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.repos.User.GetByEmployeeID(ctx, req.EmployeeID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.InvalidCredentials
		}
		return nil, err
	}
	if !utils.CheckPassword(req.Password, user.PasswordHash) {
		return nil, pkgerrors.InvalidCredentials
	}
	if user.Status != model.UserStatusActive {
		return nil, pkgerrors.Unauthorized
	}

	uid := strconv.FormatInt(user.ID, 10)
	access, refresh, expiresIn, err := token.GenerateTokenPair(uid)
	if err != nil {
		return nil, err
	}

	if s.tokens != nil {
		if err := s.tokens.Set(ctx, uid, refresh); err != nil {
			s.logger.Warn("store refresh token failed", zap.String("user_id", uid), zap.Error(err))
		}
	}

	if err := s.repos.User.UpdateLastLogin(ctx, user.ID, s.clock.Now()); err != nil {
		s.logger.Warn("update last login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}

	return &dto.LoginResponse{
		TokenResponse: dto.TokenResponse{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    expiresIn,
		},
		User: dto.UserView{
			ID:          user.ID,
			EmployeeID:  user.EmployeeID,
			Name:        user.Name,
			Email:       user.Email,
			Role:        string(user.Role),
			Division:    user.Division,
			Designation: user.Designation,
		},
	}, nil
}

func (s *authService) Refresh(ctx context.Context, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	uid, err := token.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return nil, pkgerrors.Unauthorized
	}

	if s.tokens != nil && !s.tokens.Validate(ctx, uid, req.RefreshToken) {
		return nil, pkgerrors.Unauthorized
	}

	userID, err := strconv.ParseInt(uid, 10, 64)
	if err != nil {
		return nil, pkgerrors.InvalidUserID
	}
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.Unauthorized
		}
		return nil, err
	}
	if user.Status != model.UserStatusActive {
		return nil, pkgerrors.Unauthorized
	}

	access, refresh, expiresIn, err := token.GenerateTokenPair(uid)
	if err != nil {
		return nil, err
	}
	if s.tokens != nil {
		if err := s.tokens.Set(ctx, uid, refresh); err != nil {
			s.logger.Warn("store refresh token failed", zap.String("user_id", uid), zap.Error(err))
		}
	}

	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    expiresIn,
	}, nil
}

func (s *authService) Logout(ctx context.Context, userID int64) error {
	if s.tokens == nil {
		return nil
	}
	return s.tokens.Delete(ctx, strconv.FormatInt(userID, 10))
}
