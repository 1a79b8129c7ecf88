package bootstrap

import (
	"time"

	"github.com/spf13/viper"
)

// Config carries every runtime switch as an explicit value handed to the
// constructors; there are no process-wide flags.
type Config struct {
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	MongoUri      string        `mapstructure:"MONGO_URI"`
	MongoDatabase string        `mapstructure:"MONGO_DATABASE"`
	RedisUrl      string        `mapstructure:"REDIS_URL"`
	AuthMode      string        `mapstructure:"AUTH_MODE"` // "session" or "header"
	GameTimeout   time.Duration `mapstructure:"GAME_TIMEOUT"`
	TicketTimeout time.Duration `mapstructure:"TICKET_TIMEOUT"`
	LockTTL       time.Duration `mapstructure:"LOCK_TTL"`
	BoardRows     int           `mapstructure:"BOARD_ROWS"`
	BoardCols     int           `mapstructure:"BOARD_COLS"`
	BoardConnect  int           `mapstructure:"BOARD_CONNECT"`
}

func Setup(cfgPath string) (*Config, error) {
	viper.SetConfigFile(cfgPath)
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", ":8080")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "akabo")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("AUTH_MODE", "session")
	viper.SetDefault("GAME_TIMEOUT", "120s")
	viper.SetDefault("TICKET_TIMEOUT", "30s")
	viper.SetDefault("LOCK_TTL", "5s")
	viper.SetDefault("BOARD_ROWS", 6)
	viper.SetDefault("BOARD_COLS", 7)
	viper.SetDefault("BOARD_CONNECT", 4)

	// Missing .env is fine, defaults and the environment cover it.
	_ = viper.ReadInConfig()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
