// Package postgres provides a PostgreSQL storage backend. Metadata and
// user profiles are stored as jsonb, content and thumbnail blobs as bytea.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tendant/simple-vault/pkg/simplevault"
)

const backendName = "postgres"

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Backend implements simplevault.StorageBackend using PostgreSQL.
type Backend struct {
	db   DBTX
	pool *pgxpool.Pool
}

// New creates a new PostgreSQL backend on top of an existing connection or transaction.
// DeleteResource falls back to sequential deletes when no pool is available.
func New(db DBTX) *Backend {
	return &Backend{db: db}
}

// NewWithPool creates a new PostgreSQL backend with a connection pool.
func NewWithPool(pool *pgxpool.Pool) *Backend {
	return &Backend{db: pool, pool: pool}
}

func (b *Backend) Name() string { return backendName }

func (b *Backend) ListResourceIDs(ctx context.Context, user string, resourceType simplevault.ResourceType) ([]string, error) {
	query := `
        SELECT resource_id FROM vault_resource
        WHERE user_id = $1 AND resource_type = $2`

	rows, err := b.db.Query(ctx, query, user, string(resourceType))
	if err != nil {
		return nil, b.storageErr("list_resource_ids", user, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, b.storageErr("list_resource_ids", user, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, b.storageErr("list_resource_ids", user, err)
	}
	return ids, nil
}

func (b *Backend) LoadMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (*simplevault.ResourceMeta, error) {
	query := `
        SELECT meta FROM vault_resource
        WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3`

	var raw []byte
	err := b.db.QueryRow(ctx, query, user, string(resourceType), resourceID).Scan(&raw)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, b.storageErr("load_metadata", resourceID, err)
	}

	var meta simplevault.ResourceMeta
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, b.storageErr("load_metadata", resourceID, err)
	}
	return &meta, nil
}

func (b *Backend) SaveMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, meta *simplevault.ResourceMeta) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return b.storageErr("save_metadata", resourceID, err)
	}

	query := `
        INSERT INTO vault_resource (user_id, resource_type, resource_id, meta)
        VALUES ($1, $2, $3, $4)
        ON CONFLICT (user_id, resource_type, resource_id)
        DO UPDATE SET meta = EXCLUDED.meta`

	if _, err := b.db.Exec(ctx, query, user, string(resourceType), resourceID, raw); err != nil {
		return b.storageErr("save_metadata", resourceID, err)
	}
	return nil
}

func (b *Backend) DeleteMetadata(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) error {
	query := `
        DELETE FROM vault_resource
        WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3`

	if _, err := b.db.Exec(ctx, query, user, string(resourceType), resourceID); err != nil {
		return b.storageErr("delete_metadata", resourceID, err)
	}
	return nil
}

func (b *Backend) LoadContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int) ([]byte, error) {
	query := `
        SELECT data FROM vault_content
        WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3 AND content_id = $4`

	var data []byte
	err := b.db.QueryRow(ctx, query, user, string(resourceType), resourceID, contentID).Scan(&data)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, b.storageErr("load_content", resourceID, err)
	}
	return data, nil
}

func (b *Backend) SaveContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int, data []byte) error {
	query := `
        INSERT INTO vault_content (user_id, resource_type, resource_id, content_id, data)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id, resource_type, resource_id, content_id)
        DO UPDATE SET data = EXCLUDED.data`

	if _, err := b.db.Exec(ctx, query, user, string(resourceType), resourceID, contentID, data); err != nil {
		return b.storageErr("save_content", resourceID, err)
	}
	return nil
}

func (b *Backend) DeleteContent(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, contentID int) error {
	query := `
        DELETE FROM vault_content
        WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3 AND content_id = $4`

	if _, err := b.db.Exec(ctx, query, user, string(resourceType), resourceID, contentID); err != nil {
		return b.storageErr("delete_content", resourceID, err)
	}
	return nil
}

func (b *Backend) LoadThumbnail(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) ([]byte, error) {
	query := `
        SELECT data FROM vault_thumbnail
        WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3 AND size = $4`

	var data []byte
	err := b.db.QueryRow(ctx, query, user, string(resourceType), resourceID, string(size)).Scan(&data)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, b.storageErr("load_thumbnail", resourceID, err)
	}
	return data, nil
}

func (b *Backend) SaveThumbnail(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize, data []byte) error {
	query := `
        INSERT INTO vault_thumbnail (user_id, resource_type, resource_id, size, data)
        VALUES ($1, $2, $3, $4, $5)
        ON CONFLICT (user_id, resource_type, resource_id, size)
        DO UPDATE SET data = EXCLUDED.data`

	if _, err := b.db.Exec(ctx, query, user, string(resourceType), resourceID, string(size), data); err != nil {
		return b.storageErr("save_thumbnail", resourceID, err)
	}
	return nil
}

func (b *Backend) ThumbnailExists(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string, size simplevault.ThumbnailSize) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1 FROM vault_thumbnail
            WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3 AND size = $4
        )`

	var exists bool
	err := b.db.QueryRow(ctx, query, user, string(resourceType), resourceID, string(size)).Scan(&exists)
	if err != nil {
		return false, b.storageErr("thumbnail_exists", resourceID, err)
	}
	return exists, nil
}

func (b *Backend) DeleteResource(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (bool, error) {
	if b.pool != nil {
		return b.deleteResourceTx(ctx, user, resourceType, resourceID)
	}
	return b.deleteResourceOn(ctx, b.db, user, resourceType, resourceID)
}

func (b *Backend) deleteResourceTx(ctx context.Context, user string, resourceType simplevault.ResourceType, resourceID string) (bool, error) {
	tx, err := b.pool.Begin(ctx)
	if err != nil {
		return false, b.storageErr("delete_resource", resourceID, err)
	}
	defer tx.Rollback(ctx)

	removed, err := b.deleteResourceOn(ctx, tx, user, resourceType, resourceID)
	if err != nil {
		return false, err
	}
	if err := tx.Commit(ctx); err != nil {
		return false, b.storageErr("delete_resource", resourceID, err)
	}
	return removed, nil
}

func (b *Backend) deleteResourceOn(ctx context.Context, db DBTX, user string, resourceType simplevault.ResourceType, resourceID string) (bool, error) {
	args := []interface{}{user, string(resourceType), resourceID}

	tag, err := db.Exec(ctx, `
        DELETE FROM vault_resource
        WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3`, args...)
	if err != nil {
		return false, b.storageErr("delete_resource", resourceID, err)
	}
	removed := tag.RowsAffected() > 0

	for _, query := range []string{
		`DELETE FROM vault_content WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3`,
		`DELETE FROM vault_thumbnail WHERE user_id = $1 AND resource_type = $2 AND resource_id = $3`,
	} {
		tag, err := db.Exec(ctx, query, args...)
		if err != nil {
			return false, b.storageErr("delete_resource", resourceID, err)
		}
		if tag.RowsAffected() > 0 {
			removed = true
		}
	}
	return removed, nil
}

func (b *Backend) LoadUserProfile(ctx context.Context, user string) (*simplevault.UserProfile, error) {
	query := `SELECT profile FROM vault_user_profile WHERE user_id = $1`

	var raw []byte
	err := b.db.QueryRow(ctx, query, user).Scan(&raw)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, b.storageErr("load_user_profile", user, err)
	}

	var profile simplevault.UserProfile
	if err := json.Unmarshal(raw, &profile); err != nil {
		return nil, b.storageErr("load_user_profile", user, err)
	}
	return &profile, nil
}

func (b *Backend) SaveUserProfile(ctx context.Context, user string, profile *simplevault.UserProfile) error {
	raw, err := json.Marshal(profile)
	if err != nil {
		return b.storageErr("save_user_profile", user, err)
	}

	query := `
        INSERT INTO vault_user_profile (user_id, profile)
        VALUES ($1, $2)
        ON CONFLICT (user_id)
        DO UPDATE SET profile = EXCLUDED.profile`

	if _, err := b.db.Exec(ctx, query, user, raw); err != nil {
		return b.storageErr("save_user_profile", user, err)
	}
	return nil
}

// Migrate creates the backend's tables if they do not exist.
func (b *Backend) Migrate(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS vault_resource (
            user_id       TEXT  NOT NULL,
            resource_type TEXT  NOT NULL,
            resource_id   TEXT  NOT NULL,
            meta          JSONB NOT NULL,
            PRIMARY KEY (user_id, resource_type, resource_id)
        )`,
		`CREATE TABLE IF NOT EXISTS vault_content (
            user_id       TEXT  NOT NULL,
            resource_type TEXT  NOT NULL,
            resource_id   TEXT  NOT NULL,
            content_id    INT   NOT NULL,
            data          BYTEA NOT NULL,
            PRIMARY KEY (user_id, resource_type, resource_id, content_id)
        )`,
		`CREATE TABLE IF NOT EXISTS vault_thumbnail (
            user_id       TEXT  NOT NULL,
            resource_type TEXT  NOT NULL,
            resource_id   TEXT  NOT NULL,
            size          TEXT  NOT NULL,
            data          BYTEA NOT NULL,
            PRIMARY KEY (user_id, resource_type, resource_id, size)
        )`,
		`CREATE TABLE IF NOT EXISTS vault_user_profile (
            user_id TEXT  NOT NULL PRIMARY KEY,
            profile JSONB NOT NULL
        )`,
	}
	for _, stmt := range statements {
		if _, err := b.db.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows)
}

func (b *Backend) storageErr(op, key string, err error) error {
	return &simplevault.StorageError{
		Backend: backendName,
		Key:     key,
		Op:      op,
		Err:     err,
	}
}
