package db

import (
	"context"
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/idrissbado/taskhub/internal/db/migrations"
)

// Migrate brings the schema up to date using the embedded migrations.
// goose needs a database/sql handle, so it opens its own short-lived
// connection through the pgx stdlib driver.
func Migrate(ctx context.Context, dbURL string) error {
	sqldb, err := sql.Open("pgx", dbURL)

	if err != nil {
		return err
	}

	defer sqldb.Close()

	goose.SetBaseFS(migrations.FS)

	if err := goose.SetDialect("pgx"); err != nil {
		return err
	}

	return goose.UpContext(ctx, sqldb, ".")
}
