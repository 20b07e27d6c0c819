// Package server parses game server command flags and composes the process
// entrypoint.
package server

import (
	"context"
	"flag"
	"fmt"
	"time"

	entrypoint "github.com/stakahashi/shiritori.space/internal/platform/cmd"
	app "github.com/stakahashi/shiritori.space/internal/server"
)

// Config holds game server command configuration.
type Config struct {
	HTTPAddr      string        `env:"SHIRITORI_SPACE_HTTP_ADDR"           envDefault:":3000"`
	MaxLobbies    int           `env:"SHIRITORI_SPACE_MAX_LOBBIES"         envDefault:"4"`
	MaxPlayers    int           `env:"SHIRITORI_SPACE_MAX_PLAYERS"         envDefault:"10"`
	LobbyIdle     time.Duration `env:"SHIRITORI_SPACE_LOBBY_IDLE_TIMEOUT"  envDefault:"20s"`
	PlayerGrace   time.Duration `env:"SHIRITORI_SPACE_PLAYER_GRACE"        envDefault:"5s"`
	JishoBaseURL  string        `env:"SHIRITORI_SPACE_JISHO_BASE_URL"`
	DictCachePath string        `env:"SHIRITORI_SPACE_DICT_CACHE_PATH"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP listen address")
	fs.IntVar(&cfg.MaxLobbies, "max-lobbies", cfg.MaxLobbies, "maximum live lobbies")
	fs.IntVar(&cfg.MaxPlayers, "max-players", cfg.MaxPlayers, "maximum players per lobby")
	fs.DurationVar(&cfg.LobbyIdle, "lobby-idle", cfg.LobbyIdle, "empty lobby eviction window")
	fs.DurationVar(&cfg.PlayerGrace, "player-grace", cfg.PlayerGrace, "disconnected player eviction window")
	fs.StringVar(&cfg.JishoBaseURL, "jisho-base-url", cfg.JishoBaseURL, "dictionary API base URL")
	fs.StringVar(&cfg.DictCachePath, "dict-cache-path", cfg.DictCachePath, "dictionary verdict cache database path")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run builds the game server and serves until the context ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceServer, func(context.Context) error {
		if err := app.Run(ctx, app.Config{
			HTTPAddr:      cfg.HTTPAddr,
			MaxLobbies:    cfg.MaxLobbies,
			MaxPlayers:    cfg.MaxPlayers,
			LobbyIdle:     cfg.LobbyIdle,
			PlayerGrace:   cfg.PlayerGrace,
			JishoBaseURL:  cfg.JishoBaseURL,
			DictCachePath: cfg.DictCachePath,
		}); err != nil {
			return fmt.Errorf("serve game: %w", err)
		}
		return nil
	})
}
