package db

import (
	"context"
	"database/sql"

	"github.com/vahire/vahire/internal/server/refreshtokens"
	"github.com/vahire/vahire/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
}
