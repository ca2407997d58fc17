package database

import (
	"context"
	"database/sql"
)

// statements creates every table the application needs.  All statements are
// idempotent so EnsureSchema can run on every startup.  The PRIMARY KEY on
// occupied_seats (show_id, seat_label) is what makes seat booking safe under
// concurrency: two transactions inserting the same seat for the same show
// cannot both commit.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id            BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name          VARCHAR(191) NOT NULL,
		email         VARCHAR(191) NOT NULL,
		password_hash VARCHAR(191) NOT NULL,
		role          ENUM('user','admin') NOT NULL DEFAULT 'user',
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		UNIQUE KEY uq_users_email (email)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id         BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id    BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id),
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS movies (
		id            VARCHAR(32) PRIMARY KEY,
		title         VARCHAR(255) NOT NULL,
		overview      TEXT,
		poster_path   VARCHAR(255),
		backdrop_path VARCHAR(255),
		genres        JSON,
		casts         JSON,
		release_date  VARCHAR(10),
		original_language VARCHAR(8),
		tagline       VARCHAR(255),
		vote_average  DOUBLE NOT NULL DEFAULT 0,
		runtime       INT UNSIGNED NOT NULL DEFAULT 0,
		created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS shows (
		id             BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		movie_id       VARCHAR(32) NOT NULL,
		show_datetime  DATETIME NOT NULL,
		show_price     DOUBLE NOT NULL,
		created_at     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_shows_movie_time (movie_id, show_datetime),
		CONSTRAINT fk_shows_movie FOREIGN KEY (movie_id) REFERENCES movies (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS bookings (
		id           BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id      BIGINT UNSIGNED NOT NULL,
		show_id      BIGINT UNSIGNED NOT NULL,
		amount       DOUBLE NOT NULL,
		booked_seats JSON NOT NULL,
		is_paid      TINYINT(1) NOT NULL DEFAULT 0,
		payment_link VARCHAR(1024),
		created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_bookings_user (user_id),
		KEY idx_bookings_show (show_id),
		CONSTRAINT fk_bookings_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_bookings_show FOREIGN KEY (show_id) REFERENCES shows (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS occupied_seats (
		show_id    BIGINT UNSIGNED NOT NULL,
		seat_label VARCHAR(8) NOT NULL,
		user_id    BIGINT UNSIGNED NOT NULL,
		booking_id BIGINT UNSIGNED NOT NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (show_id, seat_label),
		KEY idx_occupied_booking (booking_id),
		CONSTRAINT fk_occupied_show FOREIGN KEY (show_id) REFERENCES shows (id),
		CONSTRAINT fk_occupied_booking FOREIGN KEY (booking_id) REFERENCES bookings (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_favorites (
		user_id  BIGINT UNSIGNED NOT NULL,
		movie_id VARCHAR(32) NOT NULL,
		PRIMARY KEY (user_id, movie_id),
		CONSTRAINT fk_fav_user FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// EnsureSchema creates any missing tables.  It is safe to call on every
// startup.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
