// Package database owns the MySQL connection shared by the update handlers,
// the notifier worker and the staff API, plus the idempotent schema
// bootstrap.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Pool sizing for a single-binary deployment: chat traffic is bursty rather
// than sustained, and everything in the process shares this one pool.
const (
	maxOpenConns    = 15
	maxIdleConns    = 5
	connMaxLifetime = time.Hour
)

// dsn builds the MySQL connection string. parseTime maps DATETIME columns
// to time.Time; loc=UTC keeps ticket timestamps comparable between the
// queue views, the report exporter and the event bus payloads.
func dsn(user, pass, host, port, name string) string {
	cred := user
	if pass != "" {
		cred += ":" + pass
	}
	return fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC",
		cred, host, port, name)
}

// Open connects to MySQL and verifies the connection. A bot that cannot
// reach its store fails at boot, not on the first ticket.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	db, err := sql.Open("mysql", dsn(user, pass, host, port, name))
	if err != nil {
		return nil, fmt.Errorf("open mysql: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping mysql: %w", err)
	}
	return db, nil
}
