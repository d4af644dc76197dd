package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultHost            = "0.0.0.0"
	defaultPort            = 1780
	defaultMaxConnections  = 1000
	defaultRoom            = "lobby"
	defaultRedisAddr       = "localhost:6379"
	defaultTargetScore     = 200
	defaultMaxPlayers      = 8
	defaultRoomIdleTimeout = 30 // minutes
	defaultLogLevel        = "info"
)

// Config is the server configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Redis  RedisConfig  `yaml:"redis"`
	Game   GameConfig   `yaml:"game"`
	Log    LogConfig    `yaml:"log"`
}

// ServerConfig configures the WebSocket server
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	MaxConnections int    `yaml:"max_connections"`
	DefaultRoom    string `yaml:"default_room"` // used when /ws is opened without ?room=
}

// Addr returns host:port
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// RedisConfig configures the optional results store
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// GameConfig holds the per-room rules
type GameConfig struct {
	TargetScore     int `yaml:"target_score"`
	MaxPlayers      int `yaml:"max_players"`       // 0 means unlimited
	RoomIdleTimeout int `yaml:"room_idle_timeout"` // minutes without connections before a room is removed
}

// RoomIdleTimeoutDuration returns the idle timeout as a duration
func (c *GameConfig) RoomIdleTimeoutDuration() time.Duration {
	return time.Duration(c.RoomIdleTimeout) * time.Minute
}

// LogConfig configures the zap logger
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// Load reads a YAML config file and fills in defaults
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return &cfg, nil
}

// Default returns the built-in configuration
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = defaultHost
	}
	if c.Server.Port == 0 {
		c.Server.Port = defaultPort
	}
	if c.Server.MaxConnections == 0 {
		c.Server.MaxConnections = defaultMaxConnections
	}
	if c.Server.DefaultRoom == "" {
		c.Server.DefaultRoom = defaultRoom
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaultRedisAddr
	}
	if c.Game.TargetScore <= 0 {
		c.Game.TargetScore = defaultTargetScore
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = defaultMaxPlayers
	}
	if c.Game.RoomIdleTimeout == 0 {
		c.Game.RoomIdleTimeout = defaultRoomIdleTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = defaultLogLevel
	}
}

// LoadDotEnv loads variables from a .env file into the process environment.
// A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides config values from FLIP7_* environment variables
func (c *Config) ApplyEnv() error {
	strs := map[string]*string{
		"FLIP7_HOST":           &c.Server.Host,
		"FLIP7_DEFAULT_ROOM":   &c.Server.DefaultRoom,
		"FLIP7_REDIS_ADDR":     &c.Redis.Addr,
		"FLIP7_REDIS_PASSWORD": &c.Redis.Password,
		"FLIP7_LOG_LEVEL":      &c.Log.Level,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}

	ints := map[string]*int{
		"FLIP7_PORT":              &c.Server.Port,
		"FLIP7_MAX_CONNECTIONS":   &c.Server.MaxConnections,
		"FLIP7_REDIS_DB":          &c.Redis.DB,
		"FLIP7_TARGET_SCORE":      &c.Game.TargetScore,
		"FLIP7_MAX_PLAYERS":       &c.Game.MaxPlayers,
		"FLIP7_ROOM_IDLE_TIMEOUT": &c.Game.RoomIdleTimeout,
	}
	for key, dst := range ints {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
	}

	bools := map[string]*bool{
		"FLIP7_REDIS_ENABLED":   &c.Redis.Enabled,
		"FLIP7_LOG_DEVELOPMENT": &c.Log.Development,
	}
	for key, dst := range bools {
		v, ok := os.LookupEnv(key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = b
	}

	return c.Validate()
}

// Validate rejects values the server cannot run with
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port %d out of range", c.Server.Port))
	}
	if c.Server.MaxConnections < 1 {
		errs = append(errs, fmt.Errorf("server.max_connections must be at least 1, got %d", c.Server.MaxConnections))
	}
	if c.Game.TargetScore < 1 {
		errs = append(errs, fmt.Errorf("game.target_score must be at least 1, got %d", c.Game.TargetScore))
	}
	if c.Game.MaxPlayers < 0 {
		errs = append(errs, fmt.Errorf("game.max_players must not be negative, got %d", c.Game.MaxPlayers))
	}
	if c.Game.RoomIdleTimeout < 1 {
		errs = append(errs, fmt.Errorf("game.room_idle_timeout must be at least 1, got %d", c.Game.RoomIdleTimeout))
	}
	return errors.Join(errs...)
}
