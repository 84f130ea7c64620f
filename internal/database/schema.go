package database

import (
	"context"
	"database/sql"
	"fmt"
)

// The bot ships as a single binary, so the schema is bootstrapped on start
// with idempotent DDL instead of a migration tool. Statement order matters:
// residents references users, tickets references residents.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		chat_id BIGINT NOT NULL PRIMARY KEY,
		full_name VARCHAR(255) NOT NULL DEFAULT '',
		role ENUM('visitor','resident','agent','admin') NOT NULL DEFAULT 'visitor',
		sub_type ENUM('none','resident','buyer') NOT NULL DEFAULT 'none',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS residents (
		resident_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		chat_id BIGINT NOT NULL,
		full_name VARCHAR(255) NOT NULL,
		address VARCHAR(255) NOT NULL,
		phone VARCHAR(32) NOT NULL,
		registered_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_residents_chat (chat_id),
		CONSTRAINT fk_residents_user FOREIGN KEY (chat_id)
			REFERENCES users (chat_id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS tickets (
		ticket_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		resident_id BIGINT UNSIGNED NOT NULL,
		description TEXT NOT NULL,
		urgency ENUM('normal','urgent') NOT NULL DEFAULT 'normal',
		status ENUM('open','completed') NOT NULL DEFAULT 'open',
		media_ref VARCHAR(255) NULL,
		solution TEXT NULL,
		closed_by BIGINT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		completed_at DATETIME NULL,
		KEY idx_tickets_status_created (status, created_at),
		CONSTRAINT fk_tickets_resident FOREIGN KEY (resident_id)
			REFERENCES residents (resident_id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS ticket_logs (
		log_id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
		ticket_id BIGINT UNSIGNED NOT NULL,
		action ENUM('created','completed') NOT NULL,
		actor_id BIGINT NOT NULL,
		detail TEXT NOT NULL,
		action_time DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_logs_ticket (ticket_id),
		CONSTRAINT fk_logs_ticket FOREIGN KEY (ticket_id)
			REFERENCES tickets (ticket_id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
