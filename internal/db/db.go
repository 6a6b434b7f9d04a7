package db

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"snacket-be/internal/config"

	_ "github.com/lib/pq"
)

// Pool sizing: checkout and callback traffic is bursty but short-lived, so a
// modest pool with idle recycling covers it.
const (
	maxOpenConns    = 25
	maxIdleConns    = 10
	connMaxIdleTime = 5 * time.Minute
)

func InitDB(cfg *config.Config) *sql.DB {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable connect_timeout=5",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		log.Fatalf("cannot open database: %v", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err = db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}

	log.Println("database connection established")
	return db
}
