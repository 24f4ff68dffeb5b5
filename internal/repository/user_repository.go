package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/GabeGiancarlo/rideshare-app/internal/model"
	"github.com/GabeGiancarlo/rideshare-app/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userCols = "user_id,username,password_hash,email,phone_number,full_name,created_at"

// Create inserts a user with a bcrypt-hashed password and returns its ID.
func (r *UserRepo) Create(ctx context.Context, username, password, email, phone, fullName string, cost int) (uint64, error) {
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	return r.createTx(ctx, r.DB, username, hash, email, phone, fullName)
}

// execer lets the same insert run on the pool or inside a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *UserRepo) createTx(ctx context.Context, ex execer, username, hash, email, phone, fullName string) (uint64, error) {
	res, err := ex.ExecContext(ctx,
		"INSERT INTO users (username, password_hash, email, phone_number, full_name, created_at) VALUES (?,?,?,?,?,?)",
		username, hash, email, nullString(phone), fullName, time.Now().UTC())
	if err != nil {
		if isDuplicate(err) {
			return 0, ErrUsernameExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE username=? LIMIT 1", strings.TrimSpace(username)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE user_id=? LIMIT 1", id))
}

// Authenticate verifies the username/password pair against the stored
// bcrypt hash.  It returns ErrNotFound for an unknown username and for
// a wrong password alike, so callers cannot probe for valid accounts.
func (r *UserRepo) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return model.User{}, err
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (r *UserRepo) scanOne(row *sql.Row) (model.User, error) {
	var u model.User
	var phone sql.NullString
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &phone, &u.FullName, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return model.User{}, ErrNotFound
	}
	if err != nil {
		return model.User{}, err
	}
	if phone.Valid {
		p := phone.String
		u.PhoneNumber = &p
	}
	return u, nil
}

// nullString converts an empty string to a SQL NULL.
func nullString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
