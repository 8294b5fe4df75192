package store

import (
	"context"
	"strings"
	"time"

	"github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
	"github.com/lib/pq"

	"pivotdash/errors"
	"pivotdash/model"
	"pivotdash/utils/db"
	"pivotdash/utils/db/tx"
)

// users 테이블 정의 (스키마는 migrations 참고)
type usersTable struct {
	postgres.Table
	ID           postgres.ColumnString
	Email        postgres.ColumnString
	PasswordHash postgres.ColumnString
	Salt         postgres.ColumnString
	CreatedAt    postgres.ColumnTimestampz

	AllColumns postgres.ColumnList
}

func newUsersTable() usersTable {
	var (
		idColumn           = postgres.StringColumn("id")
		emailColumn        = postgres.StringColumn("email")
		passwordHashColumn = postgres.StringColumn("password_hash")
		saltColumn         = postgres.StringColumn("salt")
		createdAtColumn    = postgres.TimestampzColumn("created_at")
		allColumns         = postgres.ColumnList{idColumn, emailColumn, passwordHashColumn, saltColumn, createdAtColumn}
	)
	return usersTable{
		Table:        postgres.NewTable("public", "users", "", allColumns...),
		ID:           idColumn,
		Email:        emailColumn,
		PasswordHash: passwordHashColumn,
		Salt:         saltColumn,
		CreatedAt:    createdAtColumn,
		AllColumns:   allColumns,
	}
}

var users = newUsersTable()

type userRecord struct {
	ID           string    `alias:"users.id"`
	Email        string    `alias:"users.email"`
	PasswordHash string    `alias:"users.password_hash"`
	Salt         string    `alias:"users.salt"`
	CreatedAt    time.Time `alias:"users.created_at"`
}

// PostgresUserStore persists accounts with go-jet over lib/pq.
type PostgresUserStore struct {
	database *db.Database
	tx       tx.TxExtension
}

func NewPostgresUserStore(database *db.Database) *PostgresUserStore {
	return &PostgresUserStore{
		database: database,
		tx:       tx.TxExtension{Postgresql: database},
	}
}

func (s *PostgresUserStore) Create(ctx context.Context, user model.User) error {
	err, _ := db.Transaction(func(ctx context.Context) (error, struct{}) {
		stmt := users.INSERT(users.AllColumns).
			VALUES(user.ID, strings.ToLower(user.Email), user.PasswordHash, user.Salt, user.CreatedAt)

		_, execErr := stmt.ExecContext(ctx, s.tx.GetTx(ctx))
		if execErr != nil {
			if pqErr, ok := execErr.(*pq.Error); ok && pqErr.Code == "23505" {
				return errors.NewConflict(errors.ErrDuplicateEmail), struct{}{}
			}
			return execErr, struct{}{}
		}
		return nil, struct{}{}
	}).Run(ctx, s.database.DbForJet)
	return err
}

func (s *PostgresUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	stmt := postgres.SELECT(users.AllColumns).
		FROM(users).
		WHERE(users.Email.EQ(postgres.String(strings.ToLower(email)))).
		LIMIT(1)

	var record userRecord
	err := stmt.QueryContext(ctx, s.tx.GetTx(ctx), &record)
	if err != nil {
		if err == qrm.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return &model.User{
		ID:           record.ID,
		Email:        record.Email,
		PasswordHash: record.PasswordHash,
		Salt:         record.Salt,
		CreatedAt:    record.CreatedAt,
	}, nil
}
