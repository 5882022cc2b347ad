package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"muttonhub-backend/internal/database"
	"muttonhub-backend/internal/models"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const minPasswordLen = 6

var (
	ErrInvalidSecurityCode = errors.New("invalid security code")
	ErrInvalidCredentials  = errors.New("invalid login credentials")
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidSignUp       = errors.New("invalid sign-up request")
	ErrUserNotFound        = errors.New("user not found")
)

type UserStore interface {
	RoleStore
	CreateUser(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	TouchSignIn(ctx context.Context, id uint, at time.Time) error
	CreateRole(ctx context.Context, a *models.UserRoleAssignment) error
}

type SignUpInput struct {
	Email        string
	Password     string
	SecurityCode string
	Role         models.Role
}

type Session struct {
	User *models.User
	Role models.Role
}

type Service struct {
	users        UserStore
	roles        *RoleResolver
	secret       string
	securityCode string
	log          *zap.Logger
}

func NewService(users UserStore, roles *RoleResolver, jwtSecret, securityCode string, log *zap.Logger) *Service {
	return &Service{
		users:        users,
		roles:        roles,
		secret:       jwtSecret,
		securityCode: securityCode,
		log:          log,
	}
}

// SignUp checks the shared registration code before touching the store.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	if subtle.ConstantTimeCompare([]byte(in.SecurityCode), []byte(s.securityCode)) != 1 {
		return nil, ErrInvalidSecurityCode
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidSignUp)
	}
	if len(in.Password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", ErrInvalidSignUp, minPasswordLen)
	}
	role := in.Role
	if role == "" {
		role = models.RoleAccountant
	}
	if !role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidSignUp, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	if err := s.users.CreateUser(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	// account exists either way; a missing role row is covered by the resolver
	if err := s.users.CreateRole(ctx, &models.UserRoleAssignment{UserID: user.ID, Role: role}); err != nil {
		s.log.Error("create user role failed", zap.Uint("user_id", user.ID), zap.Error(err))
	}

	return &Session{User: user, Role: role}, nil
}

// SignIn verifies the password and returns a signed token plus the session.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	role, err := s.roles.Resolve(ctx, user.ID)
	if err != nil {
		return "", nil, err
	}

	now := time.Now()
	if err := s.users.TouchSignIn(ctx, user.ID, now); err != nil {
		s.log.Warn("update last sign-in failed", zap.Uint("user_id", user.ID), zap.Error(err))
	} else {
		user.LastSignInAt = &now
	}

	token, err := GenerateToken(s.secret, user, role)
	if err != nil {
		return "", nil, fmt.Errorf("sign token: %w", err)
	}
	return token, &Session{User: user, Role: role}, nil
}

// Session re-reads the user and resolves the current role.
func (s *Service) Session(ctx context.Context, userID uint) (*Session, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	role, err := s.roles.Resolve(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Role: role}, nil
}

type GormUserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) CreateUser(ctx context.Context, u *models.User) error {
	return s.db.WithContext(ctx).Create(u).Error
}

func (s *GormUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormUserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (s *GormUserStore) TouchSignIn(ctx context.Context, id uint, at time.Time) error {
	return s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("last_sign_in_at", at).Error
}

func (s *GormUserStore) CreateRole(ctx context.Context, a *models.UserRoleAssignment) error {
	return s.db.WithContext(ctx).Create(a).Error
}

func (s *GormUserStore) GetRole(ctx context.Context, userID uint) (models.Role, error) {
	var a models.UserRoleAssignment
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&a).Error; err != nil {
		return "", err
	}
	return a.Role, nil
}
