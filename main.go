package main

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pokesimon/apps/go-server/internal/catalog"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/config"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/game"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/httpserver"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/random"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/store"
	"github.com/robalobadob/pokesimon/apps/go-server/internal/team"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	sessions := store.NewMemoryStore()
	if cfg.DBPath != "" {
		db, err := openDB(cfg.DBPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
		}
		defer db.Close()
		sessions = store.NewSQLiteStore(db)
	}

	cat := catalog.NewHTTPClient(cfg.CatalogBaseURL,
		catalog.WithTimeout(cfg.CatalogTimeout),
		catalog.WithTries(cfg.CatalogTries),
	)
	src := random.Crypto()
	engine := game.NewEngine(sessions, cfg.Rules(),
		game.WithTeamSelector(team.NewSelector(cat, src, cfg.IDRange())),
		game.WithCatalog(cat),
		game.WithSource(src),
	)

	srv := httpserver.New(engine, cfg.ClientOrigin)
	log.Info().Str("port", cfg.Port).Bool("sqlite", cfg.DBPath != "").Msg("starting go-server")
	if err := srv.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
