package commands

import (
	"context"

	"arequita-backend/internal/domain/admin"
	"arequita-backend/internal/pkg/errs"
	"arequita-backend/internal/pkg/jwt"
	"arequita-backend/internal/pkg/password"
	"arequita-backend/internal/usecase/shared"
)

var ErrInvalidCredentials = errs.New("usuario o contraseña incorrectos")

type AdminUserRepository interface {
	FindByUsername(ctx context.Context, db shared.DBTX, username string) (*admin.User, error)
}

type AuthCommands struct {
	db    shared.DBTX
	users AdminUserRepository
	jwt   *jwt.Service
	audit AuditSink
}

func NewAuthCommands(db shared.DBTX, users AdminUserRepository, jwtSvc *jwt.Service, audit AuditSink) *AuthCommands {
	return &AuthCommands{db: db, users: users, jwt: jwtSvc, audit: audit}
}

// Login verifies credentials and issues a signed token. Unknown user and
// wrong password collapse into the same error.
func (a *AuthCommands) Login(ctx context.Context, username, plain string) (string, error) {
	user, err := a.users.FindByUsername(ctx, a.db, username)
	if err != nil {
		return "", err
	}
	if user == nil || !user.IsActive() {
		return "", ErrInvalidCredentials
	}
	if err := password.Compare(user.PasswordHash(), plain); err != nil {
		return "", ErrInvalidCredentials
	}
	token, err := a.jwt.GenerateToken(user.ID(), user.Username())
	if err != nil {
		return "", errs.Wrap(err, "generate token")
	}
	a.audit.Record(ctx, "auth.login", "ingreso al panel", user.Username())
	return token, nil
}
