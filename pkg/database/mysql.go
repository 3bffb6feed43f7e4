package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/onurcolak/whatsapp-relay/environments"
	"github.com/onurcolak/whatsapp-relay/pkg/logger"
)

// dataSourceName builds the driver DSN. clientFoundRows makes RowsAffected
// count matched rows, so an update that changes nothing is not mistaken for
// a missing row.
func dataSourceName(cfg environments.DatabaseConfig) string {
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4&collation=utf8mb4_unicode_ci&clientFoundRows=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)
}

func NewMySQLDB(cfg environments.DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", dataSourceName(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Infof("Connected to MySQL database")
	return db, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS chats (
		short_id VARCHAR(20) PRIMARY KEY,
		last_updated DATETIME(3) NOT NULL
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS chat_messages (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		chat_id VARCHAR(20) NOT NULL,
		direction VARCHAR(10) NOT NULL,
		text TEXT NOT NULL,
		timestamp DATETIME(3) NOT NULL,
		is_read BOOLEAN NOT NULL DEFAULT FALSE,
		type VARCHAR(20) NOT NULL DEFAULT 'text',
		INDEX idx_chat_messages_chat_ts (chat_id, timestamp)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS registrations (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL DEFAULT '',
		phone_number VARCHAR(20) NOT NULL,
		image_urls JSON NULL,
		verification_status VARCHAR(30) NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		INDEX idx_registrations_phone (phone_number)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,

	`CREATE TABLE IF NOT EXISTS delivery_errors (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		report_id VARCHAR(128) NOT NULL,
		recipient_id VARCHAR(32) NOT NULL,
		status VARCHAR(20) NOT NULL,
		error_code INT NOT NULL DEFAULT 0,
		error_title VARCHAR(255) NOT NULL DEFAULT '',
		error_details TEXT,
		conversation_origin VARCHAR(50) NOT NULL DEFAULT '',
		occurred_at DATETIME NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		INDEX idx_delivery_errors_recipient (recipient_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`,
}

func RunMigrations(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	logger.Infof("Database migrations completed")

	return nil
}

// SeedTestData inserts sample registrations so the image pipeline has
// records to attach uploads to in development.
func SeedTestData(db *sqlx.DB) error {
	var count int

	err := db.Get(&count, "SELECT COUNT(*) FROM registrations")
	if err != nil {
		return err
	}

	if count > 0 {
		logger.Infof("Database already has %d registrations, skipping seed", count)
		return nil
	}

	testRegistrations := []struct {
		name        string
		phoneNumber string
	}{
		{"Asha Verma", "9876543210"},
		{"Ravi Kumar", "9123456780"},
		{"Meera Iyer", "9988776655"},
		{"John Doe", "5551234567"},
	}

	for _, reg := range testRegistrations {
		_, err := db.Exec(
			"INSERT INTO registrations (name, phone_number, image_urls) VALUES (?, ?, JSON_ARRAY())",
			reg.name, reg.phoneNumber,
		)
		if err != nil {
			return fmt.Errorf("failed to seed test data: %w", err)
		}
	}

	logger.Infof("Seeded %d test registrations", len(testRegistrations))
	return nil
}
