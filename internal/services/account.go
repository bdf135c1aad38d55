package services

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/minitweet/minitweet/internal/auth"
	"github.com/minitweet/minitweet/internal/models"
	"github.com/minitweet/minitweet/pkg/logger"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

type SignUpRequest struct {
	Username             string `json:"username" validate:"required,max=150,username"`
	Email                string `json:"email" validate:"required,max=254,email"`
	Password             string `json:"password" validate:"required"`
	PasswordConfirmation string `json:"password_confirmation" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Session 登录成功后返回给客户端
type Session struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
}

type AccountService struct {
	users    *UserService
	tokens   *auth.TokenManager
	revoker  *auth.Revoker
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAccountService(users *UserService, tokens *auth.TokenManager, revoker *auth.Revoker, logger *logger.Logger) *AccountService {
	return &AccountService{
		users:    users,
		tokens:   tokens,
		revoker:  revoker,
		validate: newValidator(),
		logger:   logger,
	}
}

func newValidator() *validator.Validate {
	v := validator.New()
	// 错误里使用 JSON 字段名
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// SignUp 校验全部字段后注册并直接登录
func (s *AccountService) SignUp(ctx context.Context, req *SignUpRequest) (*Session, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = normalizeEmail(req.Email)

	if err := s.validateSignUp(req); err != nil {
		return nil, err
	}

	user, err := s.users.Register(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	return s.newSession(user)
}

// normalizeEmail 只把域名部分转为小写, 本地部分大小写敏感
func normalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at+1] + strings.ToLower(email[at+1:])
}

func (s *AccountService) validateSignUp(req *SignUpRequest) error {
	verr := &models.ValidationError{}
	if err := s.validate.Struct(req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return fmt.Errorf("failed to validate sign up request: %w", err)
		}
		for _, fe := range fieldErrs {
			verr.Add(fe.Field(), fieldMessage(fe))
		}
	}

	if req.Password != "" && req.PasswordConfirmation != "" {
		if req.Password != req.PasswordConfirmation {
			verr.Add("password_confirmation", "The two password fields didn't match.")
		} else {
			for _, problem := range passwordProblems(req.Password, req.Username, req.Email) {
				verr.Add("password", problem)
			}
		}
	}

	return verr.OrNil()
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "max":
		return fmt.Sprintf("Ensure this value has at most %s characters.", fe.Param())
	case "email":
		return "Enter a valid email address."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "This value is invalid."
	}
}

func (s *AccountService) Login(ctx context.Context, req *LoginRequest) (*Session, error) {
	verr := &models.ValidationError{}
	if strings.TrimSpace(req.Username) == "" {
		verr.Add("username", "This field is required.")
	}
	if req.Password == "" {
		verr.Add("password", "This field is required.")
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	user, err := s.users.Authenticate(ctx, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		return nil, err
	}

	return s.newSession(user)
}

// Logout 吊销当前令牌
func (s *AccountService) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return models.ErrUnauthenticated
	}
	if err := s.revoker.Revoke(ctx, claims); err != nil {
		return err
	}

	s.logger.WithField("user_id", claims.Subject).Info("User logged out")
	return nil
}

func (s *AccountService) newSession(user *models.User) (*Session, error) {
	token, claims, err := s.tokens.Generate(user.ID, user.Username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	return &Session{
		User:      user,
		Token:     token,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
