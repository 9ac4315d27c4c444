package main

import (
	"context"

	"github.com/mwalimu/darasa/storage/database"
)

// seed creates the SQLite schema and loads the sample people, skipping the
// load when the table already has rows.
func (cli *commandLine) seed() error {
	db, err := database.Open(cli.conf)
	if err != nil {
		return err
	}
	defer db.Close()
	return database.Seed(context.Background(), db)
}
