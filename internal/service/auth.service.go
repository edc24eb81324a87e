package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	"sommy-store/internal/apperr"
	"sommy-store/internal/domain"
	"sommy-store/internal/repo"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenTTL      = 7 * 24 * time.Hour
	resetTokenTTL = time.Hour
)

type Credentials struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type AuthService interface {
	Register(ctx context.Context, creds Credentials) (*AuthResult, error)
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	// Recover generates a reset link for the account. Mail delivery is out of
	// scope; the link comes back to the caller.
	Recover(ctx context.Context, identifier string) (string, error)
	ResetPassword(ctx context.Context, token, password string) error
	AdminLogin(ctx context.Context, email, password string) (*AuthResult, error)
	AdminRegister(ctx context.Context, creds Credentials) (*AuthResult, error)
}

type authService struct {
	users       repo.UserRepo
	resets      repo.PasswordResetRepo
	jwtSecret   []byte
	frontendURL string
	log         *slog.Logger
}

func NewAuthService(
	users repo.UserRepo,
	resets repo.PasswordResetRepo,
	jwtSecret, frontendURL string,
	log *slog.Logger,
) AuthService {
	return &authService{
		users:       users,
		resets:      resets,
		jwtSecret:   []byte(jwtSecret),
		frontendURL: frontendURL,
		log:         log,
	}
}

func (s *authService) Register(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return s.register(ctx, creds, false)
}

func (s *authService) AdminRegister(ctx context.Context, creds Credentials) (*AuthResult, error) {
	return s.register(ctx, creds, true)
}

func (s *authService) register(ctx context.Context, creds Credentials, isAdmin bool) (*AuthResult, error) {
	if creds.Email == "" || creds.Password == "" {
		return nil, apperr.Validation("Missing email or password")
	}

	phone := normalizePhone(creds.Phone)
	if existing, err := s.users.FindByEmail(ctx, creds.Email); err != nil {
		return nil, apperr.Store(err)
	} else if existing != nil {
		return nil, apperr.Validation("Email or phone already in use")
	}
	if phone != "" {
		if existing, err := s.users.FindByPhone(ctx, phone); err != nil {
			return nil, apperr.Store(err)
		} else if existing != nil {
			return nil, apperr.Validation("Email or phone already in use")
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Store(err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Name:         creds.Name,
		Email:        creds.Email,
		Phone:        phone,
		PasswordHash: string(hash),
		IsAdmin:      isAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperr.Store(err)
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

// Login accepts either an explicit email or an identifier that may be an
// email or a phone number.
func (s *authService) Login(ctx context.Context, creds Credentials) (*AuthResult, error) {
	var (
		user *domain.User
		err  error
	)
	switch {
	case creds.Email != "":
		user, err = s.users.FindByEmail(ctx, creds.Email)
	case strings.Contains(creds.Identifier, "@"):
		user, err = s.users.FindByEmail(ctx, creds.Identifier)
	case creds.Identifier != "":
		user, err = s.users.FindByPhone(ctx, normalizePhone(creds.Identifier))
	}
	if err != nil {
		return nil, apperr.Store(err)
	}
	if user == nil {
		return nil, apperr.Validation("Invalid credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		return nil, apperr.Validation("Invalid credentials")
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &AuthResult{Token: token, User: user}, nil
}

func (s *authService) AdminLogin(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("Missing email or password")
	}

	admin, err := s.users.FindAdminByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Store(err)
	}
	if admin == nil {
		return nil, apperr.Validation("Invalid admin credentials")
	}
	if bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)) != nil {
		return nil, apperr.Validation("Invalid admin credentials")
	}

	token, err := s.issueToken(admin)
	if err != nil {
		return nil, apperr.Store(err)
	}
	return &AuthResult{Token: token, User: admin}, nil
}

func (s *authService) Recover(ctx context.Context, identifier string) (string, error) {
	if identifier == "" {
		return "", apperr.Validation("Missing identifier")
	}

	user, err := s.users.FindByEmail(ctx, identifier)
	if err != nil {
		return "", apperr.Store(err)
	}
	if user == nil {
		return "", apperr.NotFound("No account found")
	}

	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", apperr.Store(err)
	}
	token := hex.EncodeToString(buf)

	reset := &domain.PasswordReset{
		Email:   user.Email,
		Token:   token,
		Expires: time.Now().Add(resetTokenTTL),
	}
	if err := s.resets.Replace(ctx, reset); err != nil {
		return "", apperr.Store(err)
	}

	link := strings.TrimSuffix(s.frontendURL, "/") + "/reset/" + token
	s.log.Info("password reset link generated", "email", user.Email)
	return link, nil
}

func (s *authService) ResetPassword(ctx context.Context, token, password string) error {
	if token == "" || password == "" {
		return apperr.Validation("Missing token or password")
	}

	entry, err := s.resets.FindByToken(ctx, token)
	if err != nil {
		return apperr.Store(err)
	}
	if entry == nil {
		return apperr.Validation("Invalid or expired token")
	}
	if time.Now().After(entry.Expires) {
		if err := s.resets.DeleteByToken(ctx, token); err != nil {
			s.log.Warn("failed to delete expired reset token", "error", err)
		}
		return apperr.Validation("Token expired")
	}

	user, err := s.users.FindByEmail(ctx, entry.Email)
	if err != nil {
		return apperr.Store(err)
	}
	if user == nil {
		return apperr.NotFound("User not found")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return apperr.Store(err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, string(hash)); err != nil {
		return apperr.Store(err)
	}
	if err := s.resets.DeleteByToken(ctx, token); err != nil {
		s.log.Warn("failed to delete used reset token", "error", err)
	}
	return nil
}

func (s *authService) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"sub": user.ID.String(),
		"exp": time.Now().Add(tokenTTL).Unix(),
	}
	if user.IsAdmin {
		claims["role"] = "admin"
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

func normalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
