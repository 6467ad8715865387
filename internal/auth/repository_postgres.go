package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, username, password, name, role, phone, status, created_at`

func scanUser(row pgx.Row) (*User, error) {
	user := &User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Password, &user.Name,
		&user.Role, &user.Phone, &user.Status, &user.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *PostgresRepository) Save(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (username, password, name, role, phone, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`
	return r.db.QueryRow(ctx, query,
		user.Username, user.Password, user.Name, user.Role, user.Phone, user.Status,
	).Scan(&user.ID, &user.CreatedAt)
}

func (r *PostgresRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return scanUser(r.db.QueryRow(ctx, query, username))
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *PostgresRepository) List(ctx context.Context) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func (r *PostgresRepository) ListByRole(ctx context.Context, role string) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE role = $1 AND status = 1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, role)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectUsers(rows)
}

func collectUsers(rows pgx.Rows) ([]User, error) {
	var users []User
	for rows.Next() {
		var user User
		err := rows.Scan(
			&user.ID, &user.Username, &user.Password, &user.Name,
			&user.Role, &user.Phone, &user.Status, &user.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

func (r *PostgresRepository) Update(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, role = $3, phone = $4, status = $5
		WHERE id = $1
	`
	_, err := r.db.Exec(ctx, query, user.ID, user.Name, user.Role, user.Phone, user.Status)
	return err
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id int, hashed string) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET password = $2 WHERE id = $1`, id, hashed)
	return err
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) LogOperation(ctx context.Context, log OperationLog) error {
	query := `
		INSERT INTO operation_logs (user_id, action, details, ip_address)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.db.Exec(ctx, query, log.UserID, log.Action, log.Detail, log.IP)
	return err
}
