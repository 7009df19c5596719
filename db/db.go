package db

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
)

func InitDatabase() (*pgxpool.Pool, error) {

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file loaded: %v", err)
	}
	host := os.Getenv("DATABASE_HOST")
	port := os.Getenv("DATABASE_PORT")
	user := os.Getenv("DATABASE_USER")
	password := os.Getenv("DATABASE_PASSWORD")
	database_name := os.Getenv("DATABASE_NAME")

	config, err := pgxpool.ParseConfig(" host=" + host + " port=" + port + " user=" + user + " password=" + password + " database=" + database_name)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %v", err)
	}

	conn, err := pgxpool.ConnectConfig(context.Background(), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	// Create tables
	sqlQueries := []string{
		`CREATE EXTENSION IF NOT EXISTS "uuid-ossp"`,

		`CREATE TABLE IF NOT EXISTS users (
			user_id uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			hashed_password VARCHAR(100) NOT NULL,
			image VARCHAR(255) NOT NULL DEFAULT '',
			phone VARCHAR(50) NOT NULL DEFAULT '000000000',
			gender VARCHAR(50) NOT NULL DEFAULT 'Not Selected',
			dob VARCHAR(50) NOT NULL DEFAULT 'Not Selected',
			address_line1 VARCHAR(255) NOT NULL DEFAULT '',
			address_line2 VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS doctors (
			doctor_id uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
			name VARCHAR(100) NOT NULL,
			email VARCHAR(100) NOT NULL UNIQUE,
			hashed_password VARCHAR(100) NOT NULL,
			image VARCHAR(255) NOT NULL DEFAULT '',
			speciality VARCHAR(100) NOT NULL,
			degree VARCHAR(100) NOT NULL,
			experience VARCHAR(50) NOT NULL,
			about TEXT NOT NULL DEFAULT '',
			fees INTEGER NOT NULL,
			available BOOLEAN NOT NULL DEFAULT TRUE,
			address_line1 VARCHAR(255) NOT NULL DEFAULT '',
			address_line2 VARCHAR(255) NOT NULL DEFAULT '',
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,

		// One row per reserved slot. The primary key is what keeps two
		// concurrent bookings of the same slot from both succeeding: the
		// second ON CONFLICT DO NOTHING insert writes zero rows and its
		// booking transaction is rolled back. Rows are never deleted,
		// cancelling an appointment does not free its slot.
		`CREATE TABLE IF NOT EXISTS booked_slots (
			doctor_id uuid REFERENCES doctors(doctor_id),
			slot_date VARCHAR(20) NOT NULL,
			slot_time VARCHAR(20) NOT NULL,
			PRIMARY KEY (doctor_id, slot_date, slot_time)
		)`,

		`CREATE TABLE IF NOT EXISTS appointments (
			appointment_id uuid PRIMARY KEY DEFAULT uuid_generate_v4(),
			seq BIGSERIAL,
			doctor_id uuid REFERENCES doctors(doctor_id),
			user_id uuid REFERENCES users(user_id),
			slot_date VARCHAR(20) NOT NULL,
			slot_time VARCHAR(20) NOT NULL,
			amount INTEGER NOT NULL,
			cancelled BOOLEAN NOT NULL DEFAULT FALSE,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			payment BOOLEAN NOT NULL DEFAULT FALSE,
			reminder_sent BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT NOW()
		)`,
	}

	for _, query := range sqlQueries {
		_, err = conn.Exec(context.Background(), query)
		if err != nil {
			return nil, fmt.Errorf("failed to create table: %v", err)
		}
	}

	return conn, nil
}
