package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

type Student struct {
	ID        string
	Name      string
	Email     string
	Grade     int
	CreatedAt time.Time
}

type StudentRepo struct {
	db *sql.DB
}

var studentColumns = []string{"id", "name", "email", "grade", "created_at"}

// Create registers a student. Emails are stored lower-cased and must be unique.
func (r *StudentRepo) Create(ctx context.Context, name, email string, grade int) (*Student, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" {
		return nil, fmt.Errorf("create student: name and email are required")
	}

	st := &Student{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Grade:     grade,
		CreatedAt: time.Now().UTC(),
	}
	q, args := entsql.Dialect(dialect.SQLite).
		Insert("students").
		Columns(studentColumns...).
		Values(st.ID, st.Name, st.Email, st.Grade, st.CreatedAt).
		Query()
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("create student: email %q already registered", email)
		}
		return nil, unavailable("create student", err)
	}
	return st, nil
}

func (r *StudentRepo) Get(ctx context.Context, id string) (*Student, error) {
	return r.one(ctx, entsql.EQ("id", id))
}

// ByEmail looks a student up by email, case-insensitively.
func (r *StudentRepo) ByEmail(ctx context.Context, email string) (*Student, error) {
	return r.one(ctx, entsql.EQ("email", strings.ToLower(strings.TrimSpace(email))))
}

// UpdateGrade changes a student's grade, the only mutable field.
func (r *StudentRepo) UpdateGrade(ctx context.Context, id string, grade int) error {
	q, args := entsql.Dialect(dialect.SQLite).
		Update("students").
		Set("grade", grade).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return unavailable("update grade", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *StudentRepo) List(ctx context.Context) ([]Student, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(studentColumns...).
		From(entsql.Table("students")).
		OrderBy("name").
		Query()
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, unavailable("list students", err)
	}
	defer rows.Close()

	var out []Student
	for rows.Next() {
		var st Student
		if err := rows.Scan(&st.ID, &st.Name, &st.Email, &st.Grade, &st.CreatedAt); err != nil {
			return nil, unavailable("scan student", err)
		}
		out = append(out, st)
	}
	return out, unavailable("list students", rows.Err())
}

func (r *StudentRepo) one(ctx context.Context, p *entsql.Predicate) (*Student, error) {
	q, args := entsql.Dialect(dialect.SQLite).
		Select(studentColumns...).
		From(entsql.Table("students")).
		Where(p).
		Query()

	var st Student
	err := r.db.QueryRowContext(ctx, q, args...).Scan(&st.ID, &st.Name, &st.Email, &st.Grade, &st.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("get student", err)
	}
	return &st, nil
}
