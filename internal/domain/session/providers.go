package session

import (
	"context"
	"fmt"
	"strings"

	"aquadash/internal/remote"

	"golang.org/x/crypto/bcrypt"
)

// Provider resolves credentials to a user. Login tries providers in order until one succeeds.
type Provider interface {
	Name() string
	Authenticate(ctx context.Context, email, password string) (*User, error)
}

// RemoteAuth is the subset of remote.AuthService used by RemoteProvider.
type RemoteAuth interface {
	Login(ctx context.Context, email, password string) (*remote.LoginResult, error)
}

// RemoteProvider authenticates against the box-office API. The API does not return a role,
// so every remote user gets Role (and, for admins, the configured park).
type RemoteProvider struct {
	auth          RemoteAuth
	Role          Role
	WaterParkID   string
	WaterParkName string
}

func NewRemoteProvider(auth RemoteAuth, role Role) *RemoteProvider {
	return &RemoteProvider{auth: auth, Role: role}
}

func (p *RemoteProvider) Name() string { return "remote" }

func (p *RemoteProvider) Authenticate(ctx context.Context, email, password string) (*User, error) {
	res, err := p.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	name := res.Name
	if name == "" {
		name = email
	}
	u := &User{
		ID:    "remote:" + normalizeEmail(email),
		Email: normalizeEmail(email),
		Name:  name,
		Role:  p.Role,
	}
	if p.Role == RoleAdmin {
		u.WaterParkID = p.WaterParkID
		u.WaterParkName = p.WaterParkName
	}
	return u, nil
}

// DemoAccount is one entry of the offline credential table.
type DemoAccount struct {
	Email    string
	Password string
	User     User
}

// DefaultDemoAccounts are the four accounts available without a backend.
var DefaultDemoAccounts = []DemoAccount{
	{
		Email:    "superadmin@aquadash.com",
		Password: "super123",
		User:     User{ID: "demo-superadmin", Name: "Super Administrador", Role: RoleSuperAdmin},
	},
	{
		Email:    "admin@aquadash.com",
		Password: "admin123",
		User:     User{ID: "demo-admin-1", Name: "Administrador Aqua Paradise", Role: RoleAdmin, WaterParkID: "1", WaterParkName: "Aqua Paradise"},
	},
	{
		Email:    "admin.olas@aquadash.com",
		Password: "olas123",
		User:     User{ID: "demo-admin-2", Name: "Administrador Olas del Sol", Role: RoleAdmin, WaterParkID: "2", WaterParkName: "Olas del Sol"},
	},
	{
		Email:    "admin.cascada@aquadash.com",
		Password: "cascada123",
		User:     User{ID: "demo-admin-3", Name: "Administrador Cascada Azul", Role: RoleAdmin, WaterParkID: "3", WaterParkName: "Cascada Azul"},
	},
}

type demoEntry struct {
	hash []byte
	user User
}

// DemoProvider checks credentials against a fixed table held as bcrypt hashes.
type DemoProvider struct {
	accounts map[string]demoEntry
}

func NewDemoProvider(accounts []DemoAccount) (*DemoProvider, error) {
	p := &DemoProvider{accounts: make(map[string]demoEntry, len(accounts))}
	for _, a := range accounts {
		hash, err := bcrypt.GenerateFromPassword([]byte(a.Password), bcrypt.MinCost)
		if err != nil {
			return nil, fmt.Errorf("hash demo password for %s: %w", a.Email, err)
		}
		u := a.User
		u.Email = normalizeEmail(a.Email)
		p.accounts[u.Email] = demoEntry{hash: hash, user: u}
	}
	return p, nil
}

func (p *DemoProvider) Name() string { return "demo" }

func (p *DemoProvider) Authenticate(_ context.Context, email, password string) (*User, error) {
	entry, ok := p.accounts[normalizeEmail(email)]
	if !ok {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(entry.hash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	u := entry.user
	return &u, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
