package postgres

import (
	"context"
	"database/sql"

	"eventbooking/internal/domain"
)

type roleRepository struct {
	db *sql.DB
}

// NewRoleRepository returns a RoleRepository over the roles and user_roles tables.
func NewRoleRepository(db *sql.DB) domain.RoleRepository {
	return &roleRepository{db: db}
}

func (r *roleRepository) GetByCode(ctx context.Context, code string) (*domain.Role, error) {
	var role domain.Role
	err := r.db.QueryRowContext(ctx, `SELECT id, code FROM roles WHERE code = $1`, code).
		Scan(&role.ID, &role.Code)
	if err != nil {
		return nil, mapErr(err)
	}
	return &role, nil
}

func (r *roleRepository) CodesByUserID(ctx context.Context, userID string) ([]string, error) {
	const query = `
		SELECT r.code
		FROM user_roles ur
		JOIN roles r ON r.id = ur.role_id
		WHERE ur.user_id = $1
		ORDER BY r.code
	`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, mapErr(err)
	}
	defer rows.Close()

	codes := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}
