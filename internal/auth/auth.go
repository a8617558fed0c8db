package auth

import (
	"context"
	"time"

	"github.com/frahmantamala/workforce-presence/internal"
	userDatamodel "github.com/frahmantamala/workforce-presence/internal/core/datamodel/user"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleSecurity   = "security"
	RoleProcess    = "process"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// User is the authenticated caller as seen by handlers and the scan dispatcher.
type User struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	Name      string  `json:"name"`
	Role      string  `json:"role"`
	ProcessID *string `json:"processId,omitempty"`
}

func (u *User) HasRole(roles ...string) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginResult struct {
	AuthTokens
	User *User `json:"user"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID    string `json:"user_id"`
	Role      string `json:"role,omitempty"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
	Now                func() time.Time
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

// WithUser stores the caller for handlers and mirrors its id and role for the service layer.
func WithUser(ctx context.Context, u *User) context.Context {
	ctx = context.WithValue(ctx, ContextUserKey, u)
	return internal.ContextWithUser(ctx, u.ID, u.Role)
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:        u.ID,
		Username:  u.Username,
		Name:      u.Name,
		Role:      u.Role,
		ProcessID: u.ProcessID,
	}
}

func VerifyPassword(hashedPassword, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
}

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
