package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"partsCatalog/internal/db"
	"partsCatalog/models"
)

type UserRepository struct {
	db *db.DB
}

func NewUserRepository(d *db.DB) *UserRepository {
	return &UserRepository{db: d}
}

const userColumns = `id, user_type, username, email, password, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	var role int64
	if err := row.Scan(&u.ID, &role, &u.Username, &u.Email, &u.PasswordHash, &u.CreatedAt); err != nil {
		return nil, err
	}
	u.Role = models.Role(role)
	return &u, nil
}

// Create inserts a new user. Role defaults to regular when unset.
// Returns ErrConflict when the username or email is already taken.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if u == nil {
		return nil, errors.New("user is nil")
	}
	if u.Role == 0 {
		u.Role = models.RoleRegular
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	taken, err := r.usernameOrEmailTaken(ctx, u.Username, u.Email)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, conflict("user", errors.New("username or email taken"))
	}

	var id int64
	err = r.db.QueryRowContext(ctx, r.db.Rebind(`INSERT INTO users (user_type, username, email, password) VALUES (?, ?, ?, ?) RETURNING id`),
		int64(u.Role), u.Username, u.Email, u.PasswordHash).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, conflict("user", err)
		}
		return nil, err
	}
	created, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, ErrIntegrity
	}
	return created, nil
}

func (r *UserRepository) usernameOrEmailTaken(ctx context.Context, username, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, r.db.Rebind(`SELECT COUNT(*) FROM users WHERE username = ? OR email = ?`), username, email).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByEmail looks a user up by email. Tokens carry the email as subject.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
}

// getOne returns nil, nil when no row matches.
func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, r.db.Rebind(query), arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, r.db.Rebind(`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes a user; their ownership rows cascade.
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM users WHERE id = ?`), id)
	if err != nil {
		return err
	}
	return rowsAffected(res, "user")
}

// UpdateRole sets the role of the user with the given id.
func (r *UserRepository) UpdateRole(ctx context.Context, id int64, role models.Role) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET user_type = ? WHERE id = ?`), int64(role), id)
	if err != nil {
		return err
	}
	return rowsAffected(res, "user")
}

// UpdateRoleByEmail sets the role for the given email.
// Intended for administrative flows (CLI promotion) and tests.
func (r *UserRepository) UpdateRoleByEmail(ctx context.Context, email string, role models.Role) error {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`UPDATE users SET user_type = ? WHERE email = ?`), int64(role), email)
	if err != nil {
		return err
	}
	return rowsAffected(res, "user")
}

// ListRoles returns the rows of the user_types lookup table.
func (r *UserRepository) ListRoles(ctx context.Context) ([]models.UserType, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM user_types ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []models.UserType{}
	for rows.Next() {
		var t models.UserType
		var id int64
		if err := rows.Scan(&id, &t.Name); err != nil {
			return nil, err
		}
		t.ID = models.Role(id)
		out = append(out, t)
	}
	return out, rows.Err()
}
