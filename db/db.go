package db

import (
	"embed"

	"github.com/jmoiron/sqlx"
)

type Store interface {
	ApplyMigrations(migrations embed.FS) error
	Conn() *sqlx.DB
	Close() error
}
