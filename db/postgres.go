package db

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// Connect opens the laboratory's postgres database. The pool is sized for a
// handful of dictionary readers; the build path never touches the database.
func Connect(databaseURL string) (*sql.DB, error) {
	dbConn, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetMaxIdleConns(5)
	dbConn.SetConnMaxLifetime(5 * time.Minute)
	return dbConn, dbConn.Ping()
}
