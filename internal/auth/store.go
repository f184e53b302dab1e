package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

// Supported store drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

func init() {
	// modernc registers itself as "sqlite", which sqlx does not know
	sqlx.BindDriver(DriverSQLite, sqlx.QUESTION)
}

const schema = `CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at    TEXT NOT NULL
)`

// User is a stored account
type User struct {
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

type userRow struct {
	Username     string `db:"username"`
	PasswordHash string `db:"password_hash"`
	CreatedAt    string `db:"created_at"`
}

// Store looks up and registers users
type Store interface {
	Ping(ctx context.Context) error
	Lookup(ctx context.Context, username string) (User, error)
	AddUser(ctx context.Context, username, password string) error
}

// SQLStore keeps users in a SQL table with bcrypt password hashes
type SQLStore struct {
	db     *sqlx.DB
	cost   int
	logger *slog.Logger
}

// OpenStore connects to the database and creates the users table
func OpenStore(ctx context.Context, driver, dsn string, logger *slog.Logger) (*SQLStore, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported store driver %q", driver)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	if driver == DriverSQLite {
		// one connection keeps in-memory databases shared
		db.SetMaxOpenConns(1)
	}

	store := NewSQLStore(db, logger)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// NewSQLStore wraps an open database
func NewSQLStore(db *sqlx.DB, logger *slog.Logger) *SQLStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLStore{db: db, cost: bcrypt.DefaultCost, logger: logger}
}

// SetHashCost changes the bcrypt cost used by AddUser
func (s *SQLStore) SetHashCost(cost int) {
	s.cost = cost
}

// Migrate creates the users table if needed
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%w: create schema: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Ping checks the connection
func (s *SQLStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// Lookup returns the stored user or ErrUserNotFound
func (s *SQLStore) Lookup(ctx context.Context, username string) (User, error) {
	const query = `SELECT username, password_hash, created_at FROM users WHERE username = ?`

	var row userRow
	err := s.db.GetContext(ctx, &row, s.db.Rebind(query), username)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("failed to look up user: %w", err)
	}

	created, _ := time.Parse(time.RFC3339, row.CreatedAt)
	return User{
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		CreatedAt:    created,
	}, nil
}

// AddUser hashes password and stores the user
func (s *SQLStore) AddUser(ctx context.Context, username, password string) error {
	if err := validateCredentials(Credentials{Username: username, Password: password}); err != nil {
		return err
	}

	if _, err := s.Lookup(ctx, username); err == nil {
		return fmt.Errorf("%w: %s", ErrUserExists, username)
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	const query = `INSERT INTO users (username, password_hash, created_at) VALUES (?, ?, ?)`
	_, err = s.db.ExecContext(ctx, s.db.Rebind(query),
		username, string(hash), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}

	s.logger.Info("User added", slog.String("username", username))
	return nil
}

// Seed adds every user that is not stored yet
func (s *SQLStore) Seed(ctx context.Context, users map[string]string) error {
	for name, password := range users {
		err := s.AddUser(ctx, name, password)
		if err != nil && !errors.Is(err, ErrUserExists) {
			return fmt.Errorf("failed to seed user %s: %w", name, err)
		}
	}
	return nil
}

// Close releases the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
