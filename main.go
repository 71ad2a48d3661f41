package main

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ajmarin/concentration/internal/httpserver"
	"github.com/ajmarin/concentration/internal/reminder"
	"github.com/ajmarin/concentration/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(getEnv("SQLITE_PATH", "./data/concentration.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply migrations")
	}

	st := store.NewSQLite(db)
	srv := httpserver.New(st)

	var mailer reminder.Mailer
	smtp, err := reminder.NewSMTPFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure SMTP")
	}
	if smtp != nil {
		mailer = smtp
	} else {
		log.Warn().Msg("SMTP_HOST not set, reminder emails are logged only")
		mailer = reminder.LogMailer{}
	}
	interval := time.Duration(envInt("REMINDER_INTERVAL_HOURS", 24)) * time.Hour
	sched, err := reminder.New(st, mailer, interval).Start()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start reminder scheduler")
	}
	defer func() { _ = sched.Shutdown() }()

	port := getEnv("PORT", "5180")
	log.Info().Str("port", port).Msg("starting concentration server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
