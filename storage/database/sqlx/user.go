package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/nacos/core"
	"github.com/trezcool/nacos/core/user"
)

const userTable = "users"

var userColumns = []string{
	"id", "name", "username", "email", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login",
}

type userRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (row userRow) user() user.User {
	roles := []string(row.Roles)
	if roles == nil {
		roles = []string{}
	}
	return user.User{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		IsActive:     row.IsActive,
		Roles:        roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
		LastLogin:    row.LastLogin.Time.UTC(),
	}
}

// values returns the column values of usr, ordered as userColumns.
func userValues(usr user.User) []interface{} {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	return []interface{}{
		usr.ID,
		null.NewString(usr.Name, usr.Name != ""),
		null.NewString(usr.Username, usr.Username != ""),
		null.NewString(usr.Email, usr.Email != ""),
		usr.IsActive,
		pq.Array(roles),
		null.NewBytes(usr.PasswordHash, usr.PasswordHash != nil),
		usr.CreatedAt.UTC(),
		usr.UpdatedAt.UTC(),
		null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

type userRepository struct {
	db sqlx.ExtContext
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db sqlx.ExtContext) user.Repository {
	return &userRepository{db: db}
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo *userRepository) trapNoRowsErr(err error, msg string) error {
	if errors.Cause(err) == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo *userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers ...user.User) error {
	or := sq.Or{}
	if username != "" {
		or = append(or, sq.Eq{"username": username})
	}
	if email != "" {
		or = append(or, sq.Eq{"email": email})
	}
	if len(or) == 0 {
		return nil
	}

	qb := psq.Select("username", "email").From(userTable).Where(or).Limit(1)
	ids := make([]string, 0, len(excludedUsers))
	for _, u := range excludedUsers {
		ids = append(ids, u.ID)
	}
	if ids = validIDs(ids); len(ids) > 0 {
		qb = qb.Where(sq.NotEq{"id": ids})
	}
	query, args, err := qb.ToSql()
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var found struct {
		Username null.String `db:"username"`
		Email    null.String `db:"email"`
	}
	if err = sqlx.GetContext(ctx, repo.db, &found, query, args...); err != nil {
		if err == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking user uniqueness")
	}
	if username != "" && found.Username.String == username {
		return user.ErrUsernameExists
	}
	return user.ErrEmailExists
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	usr.ID = uuid.New().String()
	query, args, err := psq.Insert(userTable).Columns(userColumns...).Values(userValues(usr)...).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building insert query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo *userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	qb := psq.Select(userColumns...).From(userTable)

	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		if filter.Search != "" {
			val := "%" + filter.Search + "%"
			qb = qb.Where(sq.Or{sq.ILike{"name": val}, sq.ILike{"username": val}, sq.ILike{"email": val}})
		}
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			or := make(sq.Or, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				or = append(or, sq.Expr("EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE ?)", role+"%"))
			}
			qb = qb.Where(or)
		}
		if filter.IsActive != nil {
			qb = qb.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			qb = qb.Where(sq.GtOrEq{"created_at": filter.CreatedFrom.UTC()})
		}
		if !filter.CreatedTo.IsZero() {
			qb = qb.Where(sq.LtOrEq{"created_at": filter.CreatedTo.UTC()})
		}
	}

	if len(ordering) == 0 {
		qb = qb.OrderBy("created_at ASC")
	}
	for _, ord := range ordering {
		qb = qb.OrderBy(ord.String())
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building users query")
	}
	var rows []userRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}

	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.user())
	}
	return users, nil
}

func (repo *userRepository) GetUser(ctx context.Context, filter user.GetFilter) (user.User, error) {
	qb := psq.Select(userColumns...).From(userTable).Limit(1)

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		qb = qb.Where(sq.Eq{"id": filter.ID})
	case filter.Username != "":
		qb = qb.Where(sq.Eq{"username": filter.Username})
	case filter.Email != "":
		qb = qb.Where(sq.Eq{"email": filter.Email})
	case filter.UsernameOrEmail != "":
		qb = qb.Where(sq.Or{sq.Eq{"username": filter.UsernameOrEmail}, sq.Eq{"email": filter.UsernameOrEmail}})
	default:
		return user.User{}, user.ErrNotFound
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building user query")
	}
	var row userRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "getting user")
	}
	return row.user(), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User) (user.User, error) {
	vals := userValues(usr)
	set := make(map[string]interface{}, len(userColumns)-1)
	for i, col := range userColumns {
		if col == "id" || col == "created_at" {
			continue
		}
		set[col] = vals[i]
	}

	query, args, err := psq.Update(userTable).SetMap(set).Where(sq.Eq{"id": usr.ID}).ToSql()
	if err != nil {
		return user.User{}, errors.Wrap(err, "building update query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.User{}, user.ErrNotFound
	}
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...string) (int, error) {
	ids = validIDs(ids)
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := psq.Delete(userTable).Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	return int(n), nil
}
