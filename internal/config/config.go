package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	TelegramBot TelegramBot
	ESPNAPI     ESPNAPI
	Draft       Draft
	Server      Server
}

type TelegramBot struct {
	Token  string `envconfig:"TELEGRAM_TOKEN" required:"true"`
	ChatID int64  `envconfig:"CHAT_ID" required:"true"`
}

type ESPNAPI struct {
	Year     string `envconfig:"YEAR" required:"true"`
	LeagueID string `envconfig:"LEAGUE_ID" required:"true"`
	SWID     string `envconfig:"SWID" required:"true"`
	ESPNS2   string `envconfig:"ESPN_S2" required:"true"`
	TeamID   int    `envconfig:"TEAM_ID" required:"true"`
}

// Draft tunes how the live board is planned.
type Draft struct {
	StarterWeight   float64       `envconfig:"STARTER_WEIGHT" default:"1.2"`
	ReserveWeight   float64       `envconfig:"RESERVE_WEIGHT" default:"0.9"`
	MaxFlexStarters int           `envconfig:"MAX_FLEX_STARTERS" default:"-1"`
	PlayerPoolSize  int           `envconfig:"PLAYER_POOL_SIZE" default:"300"`
	PollInterval    time.Duration `envconfig:"POLL_INTERVAL" default:"30s"`
	SolverNodeLimit int           `envconfig:"SOLVER_NODE_LIMIT" default:"200000"`
}

type Server struct {
	HealthAddr string `envconfig:"HEALTH_ADDR" default:":80"`
	Timezone   string `envconfig:"TIMEZONE" default:"America/Chicago"`
}

func New() (*Config, error) {
	var c Config
	err := envconfig.Process("", &c)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
