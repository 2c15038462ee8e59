package identity

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/KYoiRyi/coLAN/internal/pkg/logx"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// PostgresRepo is the pgx-backed Repo implementation.
type PostgresRepo struct {
	pool *pgxpool.Pool
}

// NewPostgresRepo opens a connection pool, runs pending migrations, and
// returns the repository.
func NewPostgresRepo(dsn string) (*PostgresRepo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}

	config.MaxConns = 25
	config.MinConns = 5
	config.MaxConnLifetime = 30 * time.Minute
	config.MaxConnIdleTime = 5 * time.Minute
	config.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	sqlDB := stdlib.OpenDB(*pool.Config().ConnConfig)
	defer sqlDB.Close()

	if err := runMigrations(sqlDB); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresRepo{pool: pool}, nil
}

// runMigrations applies all pending migrations from the embedded file system.
func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	logx.Info("Identity database migrations applied.")
	return nil
}

// Close releases the connection pool.
func (p *PostgresRepo) Close() {
	p.pool.Close()
}

// isUniqueViolation checks for a PostgreSQL unique constraint violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

const identityColumns = `id, username, COALESCE(email, ''), COALESCE(password_hash, ''), access_token, is_temporary, COALESCE(device_id, ''), last_login, created_at`

func scanIdentity(row pgx.Row) (*Identity, error) {
	ident := &Identity{}
	err := row.Scan(
		&ident.ID, &ident.Username, &ident.Email, &ident.PasswordHash,
		&ident.AccessToken, &ident.IsTemporary, &ident.DeviceID,
		&ident.LastLogin, &ident.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return ident, nil
}

// nullable maps empty strings to SQL NULL so partial unique indexes behave.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func (p *PostgresRepo) Create(ctx context.Context, ident *Identity) error {
	query := `
		INSERT INTO identities (id, username, email, password_hash, access_token, is_temporary, device_id, last_login, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := p.pool.Exec(ctx, query,
		ident.ID, ident.Username, nullable(ident.Email), nullable(ident.PasswordHash),
		ident.AccessToken, ident.IsTemporary, nullable(ident.DeviceID),
		ident.LastLogin, ident.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

func (p *PostgresRepo) GetByUsername(ctx context.Context, username string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE username = $1`
	return scanIdentity(p.pool.QueryRow(ctx, query, username))
}

func (p *PostgresRepo) GetByEmail(ctx context.Context, email string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE LOWER(email) = LOWER($1)`
	return scanIdentity(p.pool.QueryRow(ctx, query, email))
}

func (p *PostgresRepo) GetByToken(ctx context.Context, token string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE access_token = $1`
	return scanIdentity(p.pool.QueryRow(ctx, query, token))
}

func (p *PostgresRepo) GetByID(ctx context.Context, id string) (*Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM identities WHERE id = $1`
	return scanIdentity(p.pool.QueryRow(ctx, query, id))
}

func (p *PostgresRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	tag, err := p.pool.Exec(ctx, `UPDATE identities SET last_login = $1 WHERE id = $2`, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresRepo) UpdateLogin(ctx context.Context, id, accessToken string, at time.Time) error {
	query := `UPDATE identities SET access_token = $1, last_login = $2 WHERE id = $3`
	tag, err := p.pool.Exec(ctx, query, accessToken, at, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *PostgresRepo) MakePermanent(ctx context.Context, id, email, passwordHash, accessToken string) (*Identity, error) {
	query := `
		UPDATE identities
		SET email = $1, password_hash = $2, access_token = $3, is_temporary = FALSE, device_id = NULL
		WHERE id = $4
		RETURNING ` + identityColumns

	ident, err := scanIdentity(p.pool.QueryRow(ctx, query, email, passwordHash, accessToken, id))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return ident, nil
}

func (p *PostgresRepo) Delete(ctx context.Context, id string) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM identities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
