package db

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// item_hash / recent はJSON配列を文字列で保持する（既存データと互換）
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		member_id     BIGINT AUTO_INCREMENT PRIMARY KEY,
		login_id      VARCHAR(64)  NOT NULL,
		password_hash VARCHAR(255) NOT NULL,
		nickname      VARCHAR(64)  NOT NULL DEFAULT '',
		recent        TEXT NULL,
		created_at    DATETIME(6)  NOT NULL,
		UNIQUE KEY uq_members_login_id (login_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS items (
		item_id       BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_name     VARCHAR(255) NOT NULL,
		price         BIGINT       NOT NULL DEFAULT 0,
		item_image    VARCHAR(1024) NOT NULL DEFAULT '',
		item_contents TEXT         NOT NULL,
		item_place    VARCHAR(255) NOT NULL DEFAULT '',
		item_hash     TEXT         NOT NULL,
		time          VARCHAR(255) NOT NULL DEFAULT '',
		contract_time VARCHAR(255) NOT NULL DEFAULT '',
		kakao         VARCHAR(255) NOT NULL DEFAULT '',
		click         INT          NOT NULL DEFAULT 0,
		created_at    DATETIME(6)  NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS contracts (
		contract_id      BIGINT AUTO_INCREMENT PRIMARY KEY,
		item_id          BIGINT NOT NULL,
		lend_member_id   BIGINT NULL,
		borrow_member_id BIGINT NULL,
		category         ENUM('LEND','BORROW') NOT NULL,
		status           VARCHAR(20) NOT NULL DEFAULT 'NONE',
		ask_time         DATETIME(6) NOT NULL,
		UNIQUE KEY uq_contracts_item_id (item_id),
		CONSTRAINT fk_contracts_item   FOREIGN KEY (item_id) REFERENCES items (item_id),
		CONSTRAINT fk_contracts_lend   FOREIGN KEY (lend_member_id) REFERENCES members (member_id),
		CONSTRAINT fk_contracts_borrow FOREIGN KEY (borrow_member_id) REFERENCES members (member_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS borrow_requests (
		request_id   BIGINT AUTO_INCREMENT PRIMARY KEY,
		request_ulid CHAR(26) NOT NULL,
		contract_id  BIGINT   NOT NULL,
		requester_id BIGINT   NOT NULL,
		requested_at DATETIME(6) NOT NULL,
		UNIQUE KEY uq_borrow_requests_ulid (request_ulid),
		CONSTRAINT fk_borrow_requests_contract FOREIGN KEY (contract_id) REFERENCES contracts (contract_id) ON DELETE CASCADE,
		CONSTRAINT fk_borrow_requests_member   FOREIGN KEY (requester_id) REFERENCES members (member_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS members (
		member_id     INTEGER PRIMARY KEY,
		login_id      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		nickname      TEXT NOT NULL DEFAULT '',
		recent        TEXT,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS items (
		item_id       INTEGER PRIMARY KEY,
		item_name     TEXT NOT NULL,
		price         INTEGER NOT NULL DEFAULT 0,
		item_image    TEXT NOT NULL DEFAULT '',
		item_contents TEXT NOT NULL,
		item_place    TEXT NOT NULL DEFAULT '',
		item_hash     TEXT NOT NULL,
		time          TEXT NOT NULL DEFAULT '',
		contract_time TEXT NOT NULL DEFAULT '',
		kakao         TEXT NOT NULL DEFAULT '',
		click         INTEGER NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contracts (
		contract_id      INTEGER PRIMARY KEY,
		item_id          INTEGER NOT NULL UNIQUE REFERENCES items(item_id),
		lend_member_id   INTEGER REFERENCES members(member_id),
		borrow_member_id INTEGER REFERENCES members(member_id),
		category         TEXT NOT NULL CHECK (category IN ('LEND', 'BORROW')),
		status           TEXT NOT NULL DEFAULT 'NONE',
		ask_time         DATETIME NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS borrow_requests (
		request_id   INTEGER PRIMARY KEY,
		request_ulid TEXT NOT NULL UNIQUE,
		contract_id  INTEGER NOT NULL REFERENCES contracts(contract_id) ON DELETE CASCADE,
		requester_id INTEGER NOT NULL REFERENCES members(member_id),
		requested_at DATETIME NOT NULL
	)`,
}

// EnsureSchema: 接続先ドライバに合わせてテーブルがなければ作る
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	stmts := mysqlSchema
	if db.DriverName() == "sqlite" {
		stmts = sqliteSchema
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}
