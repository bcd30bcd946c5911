package user

import (
	"context"
	"fmt"
	"io"
	"log"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	log.SetOutput(io.Discard)
}

type memRepo struct {
	mu    sync.Mutex
	next  int64
	users map[int64]*User
}

func newMemRepo() *memRepo { return &memRepo{users: map[int64]*User{}} }

func (m *memRepo) Create(_ context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email && !x.IsDeleted {
			return ErrAlreadyExist
		}
	}
	m.next++
	u.ID = m.next
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id int64) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsDeleted {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email && !u.IsDeleted {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) SoftDelete(_ context.Context, id int64) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok || u.IsDeleted {
		return false, nil
	}
	u.IsDeleted = true
	return true, nil
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(id int64, role string) (string, error) {
	return fmt.Sprintf("token-%d-%s", id, role), nil
}

func TestRegisterAndLogin(t *testing.T) {
	svc := NewService(newMemRepo(), fakeIssuer{})
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: "Ana", Email: " Ana@Shop.io ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, RoleCustomer, u.Role)
	assert.Equal(t, "ana@shop.io", u.Email)
	assert.NotEqual(t, "password1", u.PasswordHash)
	assert.True(t, CheckPassword(u.PasswordHash, "password1"))

	tok, err := svc.Login(ctx, "ana@shop.io", "password1")
	require.NoError(t, err)
	assert.Equal(t, fmt.Sprintf("token-%d-CUSTOMER", u.ID), tok)

	_, err = svc.Login(ctx, "ana@shop.io", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@shop.io", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Roles(t *testing.T) {
	svc := NewService(newMemRepo(), fakeIssuer{})
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: "M", Email: "m@shop.io", Password: "password1", Role: "merchant"})
	require.NoError(t, err)
	assert.Equal(t, RoleMerchant, u.Role)

	_, err = svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@shop.io", Password: "password1", Role: "ADMIN"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := NewService(newMemRepo(), fakeIssuer{})
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@shop.io", Password: "password1"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{Name: "B", Email: "A@shop.io", Password: "password2"})
	assert.ErrorIs(t, err, ErrAlreadyExist)
}

func TestDelete(t *testing.T) {
	svc := NewService(newMemRepo(), fakeIssuer{})
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterRequest{Name: "A", Email: "a@shop.io", Password: "password1"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, u.ID), ErrNotFound)

	_, err = svc.Login(ctx, "a@shop.io", "password1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
