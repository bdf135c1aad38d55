package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/minitweet/minitweet/internal/config"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/internal/repository"
	"github.com/minitweet/minitweet/pkg/logger"
	"github.com/minitweet/minitweet/pkg/queue"
	"golang.org/x/crypto/bcrypt"
)

type UserService struct {
	userRepo   *repository.UserRepository
	producer   EventPublisher
	logger     *logger.Logger
	bcryptCost int
	// 用户不存在时也做一次比较, 登录耗时不暴露用户名是否存在
	dummyHash []byte
}

func NewUserService(userRepo *repository.UserRepository, producer EventPublisher, authCfg *config.AuthConfig, logger *logger.Logger) (*UserService, error) {
	cost := authCfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	dummyHash, err := bcrypt.GenerateFromPassword([]byte("minitweet-dummy-password"), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare password hasher: %w", err)
	}

	return &UserService{
		userRepo:   userRepo,
		producer:   producer,
		logger:     logger,
		bcryptCost: cost,
		dummyHash:  dummyHash,
	}, nil
}

// Register 用户名和邮箱同时被占用时两个错误都会返回
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	if err := s.checkAvailable(ctx, username, email); err != nil {
		return nil, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, models.NewValidationError("password", "This password is too long. It must contain at most 72 bytes.")
		}
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashedPassword),
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsDuplicateKey(err) {
			// 并发注册时由唯一索引兜底, 重新检查是哪一个字段冲突
			if err := s.checkAvailable(ctx, username, email); err != nil {
				return nil, err
			}
			return nil, models.ErrDuplicateUsername
		}
		return nil, err
	}

	publishEvent(ctx, s.producer, s.logger, user.ID.String(), queue.EventUserCreated, queue.UserEventData{
		UserID:   user.ID.String(),
		Username: user.Username,
	})

	s.logger.WithField("user_id", user.ID).Info("User registered successfully")
	return user, nil
}

func (s *UserService) checkAvailable(ctx context.Context, username, email string) error {
	var errs []error

	existing, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil {
		errs = append(errs, models.ErrDuplicateUsername)
	}

	existing, err = s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil {
		errs = append(errs, models.ErrDuplicateEmail)
	}

	return errors.Join(errs...)
}

func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, models.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.ErrInvalidCredentials
	}

	s.logger.WithField("user_id", user.ID).Info("User authenticated")
	return user, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.ErrUserNotFound
	}
	return user, nil
}
