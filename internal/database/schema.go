package database

import (
	"context"
	"database/sql"
)

// schemaStatements are applied in order at startup. Statements are
// idempotent so a restart against an already-provisioned database is a
// no-op.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id         VARCHAR(64)  NOT NULL,
		email           VARCHAR(255) NOT NULL,
		first_name      VARCHAR(255) NULL,
		last_name       VARCHAR(255) NULL,
		name            VARCHAR(255) NULL,
		image_url       VARCHAR(1024) NULL,
		role            ENUM('ADMIN','MANAGER','STAFF') NOT NULL DEFAULT 'STAFF',
		last_sign_in_at DATETIME NULL,
		created_at      DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (user_id),
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS products (
		product_id     VARCHAR(64)  NOT NULL,
		name           VARCHAR(255) NOT NULL,
		price          DECIMAL(10,2) NOT NULL,
		rating         DECIMAL(3,2) NULL,
		stock_quantity INT NOT NULL DEFAULT 0,
		PRIMARY KEY (product_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS expenses (
		expense_id VARCHAR(64)  NOT NULL,
		category   VARCHAR(255) NOT NULL,
		amount     DECIMAL(10,2) NOT NULL,
		timestamp  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (expense_id),
		KEY idx_expenses_category (category)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates the application tables when they do not exist yet.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
