package user

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

var (
	ErrValidation         = errors.New("invalid user data")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Issuer mints an access token for an authenticated user.
type Issuer interface {
	Issue(userID int64, role string) (string, error)
}

type Service struct {
	repo   Repository
	tokens Issuer
}

func NewService(repo Repository, tokens Issuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates an account. Self-registration may pick CUSTOMER or
// MERCHANT; ADMIN accounts are provisioned directly in the database.
func (s *Service) Register(ctx context.Context, in RegisterRequest) (*User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if name == "" || email == "" || in.Password == "" {
		return nil, fmt.Errorf("%w: name, email and password are required", ErrValidation)
	}
	role := RoleCustomer
	if in.Role != "" {
		role = Role(strings.ToUpper(in.Role))
		if role != RoleCustomer && role != RoleMerchant {
			return nil, fmt.Errorf("%w: role %q cannot be self-assigned", ErrValidation, in.Role)
		}
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("[user] registered id=%d role=%s", u.ID, u.Role)
	return u, nil
}

// Login checks the credentials and returns a signed token. Unknown emails and
// wrong passwords produce the same error.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.repo.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, ErrNotFound) {
		return "", ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}
	return s.tokens.Issue(u.ID, string(u.Role))
}

func (s *Service) Get(ctx context.Context, id int64) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ok, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	log.Printf("[user] soft deleted id=%d", id)
	return nil
}
