// main.go
//
// Entry point for the search-and-rescue game server.
//   - Loads .env (development) and sets the log level.
//   - Loads the scenario (SCENARIO_FILE or the embedded default).
//   - Opens and migrates the SQLite history database.
//   - Serves the HTTP API on PORT.

package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/searchrescue/internal/httpserver"
	"github.com/robalobadob/searchrescue/internal/records"
	"github.com/robalobadob/searchrescue/internal/scenario"
	"github.com/robalobadob/searchrescue/internal/store"
)

func main() {
	_ = godotenv.Load()
	if lvl, err := zerolog.ParseLevel(getEnv("LOG_LEVEL", "info")); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	if err := scenario.Init(); err != nil {
		log.Fatal().Err(err).Msg("failed to load scenario")
	}
	_, cfg := scenario.Current()

	db, err := records.Open(getEnv("DB_PATH", "./data/rescue.db"))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := records.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}

	srv := httpserver.New(store.NewMemoryStore(), records.NewRepo(db), cfg)
	port := getEnv("PORT", "5175")
	log.Info().Str("port", port).Str("scenario", cfg.Name).Msg("starting searchrescue server")
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
