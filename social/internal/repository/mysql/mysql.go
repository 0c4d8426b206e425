package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/exmosaul/queteparece/social/internal/repository"
	"github.com/exmosaul/queteparece/social/pkg/model"
)

const txAttempts = 3

// Repository defines a MySQL-based user repository. Each user is a JSON
// document in a single column; SELECT ... FOR UPDATE provides the
// transactional read-modify-write primitive.
type Repository struct {
	db *sql.DB
}

// New creates a new MySQL-based repository.
func New(dsn string) (*Repository, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

// Get retrieves a user by id.
func (r *Repository) Get(ctx context.Context, uid string) (*model.User, error) {
	var doc []byte
	row := r.db.QueryRowContext(ctx, "SELECT doc FROM users WHERE uid = ?", uid)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decodeUser(doc)
}

// Put stores a user document under its uid, overwriting any existing one.
func (r *Repository) Put(ctx context.Context, user *model.User) error {
	doc, err := json.Marshal(user)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		"INSERT INTO users (uid, doc) VALUES (?, ?) ON DUPLICATE KEY UPDATE doc = VALUES(doc)",
		user.UID, doc)
	return err
}

// Update applies fn to the user document inside a transaction, retrying on
// lock conflicts before surfacing repository.ErrConflict.
func (r *Repository) Update(ctx context.Context, uid string, fn func(*model.User) error) error {
	return r.withRetry(ctx, func(tx *sql.Tx) error {
		u, err := lockUser(ctx, tx, uid)
		if err != nil {
			return err
		}
		if err := fn(u); err != nil {
			return err
		}
		return writeUser(ctx, tx, u)
	})
}

// UpdatePair applies fn to two user documents inside one transaction. Rows
// are locked in canonical uid order so concurrent pair updates cannot
// deadlock each other.
func (r *Repository) UpdatePair(ctx context.Context, uidA, uidB string, fn func(a, b *model.User) error) error {
	first, second := uidA, uidB
	if second < first {
		first, second = second, first
	}
	return r.withRetry(ctx, func(tx *sql.Tx) error {
		locked := map[string]*model.User{}
		for _, uid := range []string{first, second} {
			u, err := lockUser(ctx, tx, uid)
			if err != nil {
				return err
			}
			locked[uid] = u
		}
		if err := fn(locked[uidA], locked[uidB]); err != nil {
			return err
		}
		for _, u := range []*model.User{locked[uidA], locked[uidB]} {
			if err := writeUser(ctx, tx, u); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *Repository) withRetry(ctx context.Context, fn func(tx *sql.Tx) error) error {
	var err error
	for attempt := 0; attempt < txAttempts; attempt++ {
		err = r.inTx(ctx, fn)
		if !isLockConflict(err) {
			return err
		}
	}
	return fmt.Errorf("update lost to concurrent writers: %w", repository.ErrConflict)
}

func (r *Repository) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit()
}

func lockUser(ctx context.Context, tx *sql.Tx, uid string) (*model.User, error) {
	var doc []byte
	row := tx.QueryRowContext(ctx, "SELECT doc FROM users WHERE uid = ? FOR UPDATE", uid)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return decodeUser(doc)
}

func writeUser(ctx context.Context, tx *sql.Tx, u *model.User) error {
	doc, err := json.Marshal(u)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, "UPDATE users SET doc = ? WHERE uid = ?", doc, u.UID)
	return err
}

func decodeUser(doc []byte) (*model.User, error) {
	var u model.User
	if err := json.Unmarshal(doc, &u); err != nil {
		return nil, fmt.Errorf("corrupt user document: %w", err)
	}
	return &u, nil
}

// isLockConflict reports whether err is a MySQL deadlock (1213) or lock wait
// timeout (1205).
func isLockConflict(err error) bool {
	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return false
	}
	return mysqlErr.Number == 1213 || mysqlErr.Number == 1205
}
