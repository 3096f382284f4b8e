package employee

import (
	"context"
	"database/sql"
	"fmt"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) GetByEmail(ctx context.Context, email string) (*Employee, error) {
	e := &Employee{}
	var name sql.NullString
	var storeID sql.NullInt64
	err := r.db.QueryRowContext(ctx, `
		SELECT employee_id, name, email, password, role, store_id
		FROM employees WHERE email=$1`, email).
		Scan(&e.EmployeeID, &name, &e.Email, &e.PasswordHash, &e.Role, &storeID)
	if err != nil {
		return nil, err
	}
	e.Name = name.String
	if storeID.Valid {
		e.StoreID = &storeID.Int64
	}
	return e, nil
}

func (r *postgresRepo) Create(ctx context.Context, e *Employee) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO employees (name, email, password, role, store_id)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING employee_id`,
		e.Name, e.Email, e.PasswordHash, e.Role, e.StoreID).
		Scan(&e.EmployeeID)
}

func (r *postgresRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM employees WHERE email=$1)`, email).Scan(&exists)
	return exists, err
}

func (r *postgresRepo) List(ctx context.Context, filter ListFilter) ([]*Employee, error) {
	query := `SELECT employee_id, name, email, role, store_id FROM employees`
	var where []string
	var args []interface{}
	p := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.SalesOnly {
		where = append(where, `role = 'sales'`)
	}
	if filter.StoreID != nil {
		where = append(where, `store_id = `+p(*filter.StoreID))
	}
	if filter.Query != "" {
		v := p("%" + filter.Query + "%")
		where = append(where, `(name ILIKE `+v+` OR email ILIKE `+v+`)`)
	}
	for i, w := range where {
		if i == 0 {
			query += ` WHERE ` + w
		} else {
			query += ` AND ` + w
		}
	}
	query += ` ORDER BY name NULLS LAST, email ASC LIMIT 200`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Employee
	for rows.Next() {
		e := &Employee{}
		var name sql.NullString
		var storeID sql.NullInt64
		if err := rows.Scan(&e.EmployeeID, &name, &e.Email, &e.Role, &storeID); err != nil {
			return nil, err
		}
		e.Name = name.String
		if storeID.Valid {
			e.StoreID = &storeID.Int64
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *postgresRepo) ListStores(ctx context.Context) ([]*Store, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT store_id, name FROM stores ORDER BY name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*Store
	for rows.Next() {
		s := &Store{}
		if err := rows.Scan(&s.StoreID, &s.Name); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
