package db

import (
	"embed"
	"log/slog"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

var _ Store = (*SqliteStore)(nil)

type SqliteStore struct {
	DB *sqlx.DB
}

func NewSqliteStore(dsn string) (*SqliteStore, error) {
	db, err := sqlx.Connect("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer and every new connection to :memory: is a
	// fresh database
	db.SetMaxOpenConns(1)
	slog.Debug("Initialised DB connection", slog.String("dsn", dsn))
	return &SqliteStore{
		DB: db,
	}, nil
}

func (s *SqliteStore) ApplyMigrations(migrations embed.FS) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect(string(goose.DialectSQLite3)); err != nil {
		return err
	}

	if err := goose.Up(s.DB.DB, "."); err != nil {
		return err
	}

	return nil
}

func (s *SqliteStore) Conn() *sqlx.DB {
	return s.DB
}

func (s *SqliteStore) Close() error {
	return s.DB.Close()
}
