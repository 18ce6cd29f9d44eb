package main

import (
	"context"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/hangman/internal/game"
	"github.com/robalobadob/hangman/internal/httpserver"
	"github.com/robalobadob/hangman/internal/notify"
	"github.com/robalobadob/hangman/internal/store"
	"github.com/robalobadob/hangman/internal/words"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	bank, err := words.FromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word lists")
	}
	log.Info().Interface("words", bank.Stats()).Msg("word lists ready")

	st := openStore()

	db, err := openDB(getEnv("DB_PATH", "./data/hangman.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("open database")
	}
	defer db.Close()
	if err := migrate(db); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	srv := httpserver.New(httpserver.Options{
		Engine:         game.NewEngine(bank),
		Words:          bank,
		Store:          st,
		DB:             db,
		Hub:            notify.NewHub(nil),
		RateLimitRPS:   getEnvInt("RATE_LIMIT_RPS", 5),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 10),
	})
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Msg("starting hangman server")
	if err := srv.Start(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

// openStore picks the live-game backend from STORE_BACKEND.
func openStore() store.Store {
	switch backend := getEnv("STORE_BACKEND", "memory"); backend {
	case "memory":
		return store.NewMemoryStore()
	case "redis":
		ttl, err := time.ParseDuration(getEnv("STORE_TTL", "24h"))
		if err != nil {
			log.Fatal().Err(err).Msg("parse STORE_TTL")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		rs, err := store.OpenRedis(ctx, getEnv("REDIS_URL", "redis://localhost:6379/0"), ttl)
		if err != nil {
			log.Fatal().Err(err).Msg("connect redis")
		}
		log.Info().Dur("ttl", ttl).Msg("using redis store")
		return rs
	default:
		log.Fatal().Str("backend", backend).Msg("unknown STORE_BACKEND")
		return nil
	}
}

func getEnv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getEnvInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil {
		return def
	}
	return n
}
