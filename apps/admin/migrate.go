package main

import (
	"context"

	"github.com/pkg/errors"

	"github.com/teamunity/lms/storage/database"
)

var (
	gooseRunFunc = database.RunMigrations // mockable

	errNoSQLDatabase = errors.New("migrations need a SQL database driver (sqlx or gorm)")
)

func (cli *commandLine) migrate(args []string) error {
	if cli.stack.SQL == nil {
		return errNoSQLDatabase
	}
	return gooseRunFunc(context.Background(), args[0], cli.stack.SQL, args[1:]...)
}
