package credstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Users persists user records. Generic CRUD comes from the embedded
// repository, email lookups are custom queries.
type Users struct {
	repository.Repository[*UserRecord]
	db *bun.DB
}

var _ repository.Repository[*UserRecord] = (*Users)(nil)

// NewUsers creates a repository over db
func NewUsers(db *bun.DB) *Users {
	repo := repository.NewRepository[*UserRecord](db, repository.ModelHandlers[*UserRecord]{
		NewRecord: func() *UserRecord { return &UserRecord{} },
		GetID: func(r *UserRecord) uuid.UUID {
			if r == nil {
				return uuid.Nil
			}
			return r.ID
		},
		SetID: func(r *UserRecord, id uuid.UUID) {
			if r != nil {
				r.ID = id
			}
		},
	})

	return &Users{
		Repository: repo,
		db:         db,
	}
}

// EnsureSchema creates the users table when missing
func (r *Users) EnsureSchema(ctx context.Context) error {
	_, err := r.db.NewCreateTable().
		Model((*UserRecord)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create users table")
	}
	return nil
}

// Create inserts rec, the email must not be registered yet
func (r *Users) Create(ctx context.Context, rec *UserRecord, criteria ...repository.InsertCriteria) (*UserRecord, error) {
	rec.Email = normalizeEmail(rec.Email)

	exists, err := r.db.NewSelect().
		Model((*UserRecord)(nil)).
		Where("?TableAlias.email = ?", rec.Email).
		Exists(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up email")
	}
	if exists {
		return nil, ErrEmailTaken
	}

	created, err := r.Repository.Create(ctx, rec, criteria...)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create user")
	}
	return created, nil
}

// GetByEmail finds a user by email, case insensitive
func (r *Users) GetByEmail(ctx context.Context, email string) (*UserRecord, error) {
	rec := &UserRecord{}
	err := r.db.NewSelect().
		Model(rec).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFoundOr(err, "failed to get user by email")
	}
	return rec, nil
}

// GetByID finds a user by id
func (r *Users) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*UserRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	rec, err := r.Repository.GetByID(ctx, id, criteria...)
	if err != nil {
		return nil, notFoundOr(err, "failed to get user by id")
	}
	return rec, nil
}

// UpdateColumns writes the given columns of rec
func (r *Users) UpdateColumns(ctx context.Context, rec *UserRecord, columns ...string) error {
	criteria := []repository.UpdateCriteria{
		repository.UpdateByID(rec.ID.String()),
	}
	if len(columns) > 0 {
		criteria = append(criteria, func(q *bun.UpdateQuery) *bun.UpdateQuery {
			return q.Column(columns...)
		})
	}

	if _, err := r.Repository.Update(ctx, rec, criteria...); err != nil {
		return notFoundOr(err, "failed to update user")
	}
	return nil
}

func notFoundOr(err error, msg string) error {
	if repository.IsRecordNotFound(err) || errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return goerrors.Wrap(err, goerrors.CategoryInternal, msg)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
