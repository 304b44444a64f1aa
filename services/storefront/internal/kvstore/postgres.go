package kvstore

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/iflis7/iyuc-store/pkg/database"
	apperrors "github.com/iflis7/iyuc-store/pkg/errors"
)

//go:embed migrations/*.up.sql
var migrationFiles embed.FS

// PgxConn is what Postgres needs from a pool; *pgxpool.Pool and pgxmock
// pools both satisfy it.
type PgxConn interface {
	database.Conn
	Ping(ctx context.Context) error
}

const (
	getStmt = `SELECT value FROM kv_entries
		WHERE key = $1 AND (expires_at IS NULL OR expires_at > NOW())`
	setStmt = `INSERT INTO kv_entries (key, value, expires_at, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO UPDATE
		SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = NOW()`
	deleteStmt = `DELETE FROM kv_entries WHERE key = $1`
	purgeStmt  = `DELETE FROM kv_entries WHERE expires_at IS NOT NULL AND expires_at <= NOW()`
)

// Postgres implements Store on a kv_entries table.
type Postgres struct {
	conn   PgxConn
	ttl    time.Duration
	tracer database.QueryTracer
	now    func() time.Time
}

// NewPostgres creates a Postgres-backed store. Call Migrate before first use.
func NewPostgres(conn PgxConn, ttl time.Duration, logger *slog.Logger) *Postgres {
	return &Postgres{
		conn: conn,
		ttl:  ttl,
		tracer: database.QueryTracer{
			SlowThreshold: 200 * time.Millisecond,
			Logger:        logger,
		},
		now: time.Now,
	}
}

// Migrate creates the kv_entries table.
func (p *Postgres) Migrate(ctx context.Context, logger *slog.Logger) error {
	sub, err := fsSub()
	if err != nil {
		return err
	}
	return database.RunMigrations(ctx, p.conn, sub, logger)
}

func (p *Postgres) Get(ctx context.Context, key string) (val string, err error) {
	ctx, done := p.tracer.Trace(ctx, "kv.get", getStmt)
	defer func() { done(err) }()

	if err := p.conn.QueryRow(ctx, getStmt, key).Scan(&val); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NotFound("key", key)
		}
		return "", fmt.Errorf("postgres get %s: %w", key, err)
	}
	return val, nil
}

func (p *Postgres) Set(ctx context.Context, key, value string) (err error) {
	ctx, done := p.tracer.Trace(ctx, "kv.set", setStmt)
	defer func() { done(err) }()

	var expiresAt *time.Time
	if p.ttl > 0 {
		t := p.now().Add(p.ttl).UTC()
		expiresAt = &t
	}
	if _, err := p.conn.Exec(ctx, setStmt, key, value, expiresAt); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (p *Postgres) Delete(ctx context.Context, key string) (err error) {
	ctx, done := p.tracer.Trace(ctx, "kv.delete", deleteStmt)
	defer func() { done(err) }()

	if _, err := p.conn.Exec(ctx, deleteStmt, key); err != nil {
		return fmt.Errorf("postgres delete %s: %w", key, err)
	}
	return nil
}

// PurgeExpired removes expired rows and reports how many were deleted.
func (p *Postgres) PurgeExpired(ctx context.Context) (n int64, err error) {
	ctx, done := p.tracer.Trace(ctx, "kv.purge", purgeStmt)
	defer func() { done(err) }()

	tag, err := p.conn.Exec(ctx, purgeStmt)
	if err != nil {
		return 0, fmt.Errorf("postgres purge expired: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.conn.Ping(ctx)
}

func fsSub() (fs.FS, error) {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded migrations: %w", err)
	}
	return sub, nil
}
