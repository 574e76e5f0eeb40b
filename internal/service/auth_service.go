package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/vigilo-labs/vigil-backend/internal/config"
	"github.com/vigilo-labs/vigil-backend/internal/mailer"
	"github.com/vigilo-labs/vigil-backend/internal/model"
	"github.com/vigilo-labs/vigil-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// Common auth errors.
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrSessionAlreadyActive = errors.New("another session is already active")
	ErrUserExists           = errors.New("account already exists")
	ErrInvalidOTP           = errors.New("invalid or expired verification code")
	ErrResetTokenInvalid    = errors.New("invalid or expired reset token")
	ErrMailFailed           = errors.New("failed to send email")
)

const (
	pendingRegistrationTTL = 10 * time.Minute
	resetTokenTTL          = time.Hour
)

// Role mirrors model.Role for token claims.
type Role = model.Role

const (
	RoleStudent   = model.RoleStudent
	RoleProfessor = model.RoleProfessor
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	Role   Role   `json:"role"`
	UserID int    `json:"user_id"`
	Email  string `json:"email"`
}

// AuthService handles registration, login and JWT lifecycle. The
// single-session guarantee lives on the users row: login is a
// compare-and-set on the login flag, so two concurrent logins cannot
// both succeed.
type AuthService struct {
	cfg   *config.Config
	rdb   *redis.Client
	users *repository.UserRepository
	mail  *mailer.Mailer
	log   zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, rdb *redis.Client, users *repository.UserRepository, mail *mailer.Mailer, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:   cfg,
		rdb:   rdb,
		users: users,
		mail:  mail,
		log:   log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// pendingRegistration is the staged account held in Redis until the
// emailed OTP is confirmed. No users row exists before that.
type pendingRegistration struct {
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"password_hash"`
	Role         model.Role `json:"role"`
	FaceImage    string     `json:"face_image,omitempty"`
	OTP          string     `json:"otp"`
}

// Register stages a new account and emails a verification code.
func (s *AuthService) Register(ctx context.Context, req *model.RegisterRequest) error {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return fmt.Errorf("check existing account: %w", err)
	}
	if exists {
		return ErrUserExists
	}

	hash, err := s.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	otp, err := generateOTP()
	if err != nil {
		return fmt.Errorf("generate otp: %w", err)
	}

	pending := pendingRegistration{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.Role(req.Role),
		FaceImage:    req.FaceImage,
		OTP:          otp,
	}
	data, err := json.Marshal(pending)
	if err != nil {
		return err
	}

	key := config.CacheKey.PendingRegistrationKey(req.Email)
	if err := s.rdb.Set(ctx, key, data, pendingRegistrationTTL).Err(); err != nil {
		return fmt.Errorf("stage registration: %w", err)
	}

	if err := s.mail.SendOTP(req.Email, otp); err != nil {
		s.log.Error().Err(err).Str("email", req.Email).Msg("Failed to send OTP email")
		return ErrMailFailed
	}
	return nil
}

// VerifyOTP confirms a staged registration and creates the account.
func (s *AuthService) VerifyOTP(ctx context.Context, email, otp string) (*model.User, error) {
	key := config.CacheKey.PendingRegistrationKey(email)
	data, err := s.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrInvalidOTP
		}
		return nil, fmt.Errorf("load staged registration: %w", err)
	}

	var pending pendingRegistration
	if err := json.Unmarshal([]byte(data), &pending); err != nil {
		return nil, fmt.Errorf("parse staged registration: %w", err)
	}
	if pending.OTP != otp {
		return nil, ErrInvalidOTP
	}

	user := &model.User{
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Role:         pending.Role,
		FaceImage:    pending.FaceImage,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	_ = s.rdb.Del(ctx, key).Err()
	return user, nil
}

// Login checks credentials, acquires the single-session login flag and
// issues a JWT. A second login without force fails with
// ErrSessionAlreadyActive; force evicts the previous session.
func (s *AuthService) Login(ctx context.Context, email, password string, force bool) (string, *model.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("load account: %w", err)
	}

	if err := s.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	acquired, err := s.users.AcquireLogin(ctx, user.ID, force)
	if err != nil {
		return "", nil, fmt.Errorf("acquire login: %w", err)
	}
	if !acquired {
		return "", nil, ErrSessionAlreadyActive
	}

	token, err := s.GenerateToken(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// Logout releases the login flag so the account can log in again.
func (s *AuthService) Logout(ctx context.Context, userID int) error {
	return s.users.ReleaseLogin(ctx, userID)
}

// ForgotPassword stores a reset token and emails it. An unknown email
// is treated as success so the endpoint does not leak which accounts
// exist.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("load account: %w", err)
	}

	token, err := generateResetToken()
	if err != nil {
		return fmt.Errorf("generate reset token: %w", err)
	}
	if err := s.users.SetResetToken(ctx, user.ID, token, time.Now().Add(resetTokenTTL)); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	if err := s.mail.SendResetLink(email, token); err != nil {
		s.log.Error().Err(err).Str("email", email).Msg("Failed to send reset email")
		return ErrMailFailed
	}
	return nil
}

// ChangePassword swaps the password for a logged-in account after
// checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, userID int, oldPassword, newPassword string) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load account: %w", err)
	}
	if err := s.CheckPassword(user.PasswordHash, oldPassword); err != nil {
		return ErrInvalidCredentials
	}

	hash, err := s.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, userID, hash)
}

// Me returns the current account row.
func (s *AuthService) Me(ctx context.Context, userID int) (*model.User, error) {
	return s.users.GetByID(ctx, userID)
}

// ResetPassword completes a reset flow.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	hash, err := s.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	ok, err := s.users.ResetPassword(ctx, token, hash, time.Now())
	if err != nil {
		return fmt.Errorf("reset password: %w", err)
	}
	if !ok {
		return ErrResetTokenInvalid
	}
	return nil
}

// GenerateToken creates a JWT for an account.
func (s *AuthService) GenerateToken(user *model.User) (string, error) {
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		Role:   user.Role,
		UserID: user.ID,
		Email:  user.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}

func generateResetToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
