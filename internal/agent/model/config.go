package model

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/noteapp-chat/server/internal/core"
	pkgredis "github.com/noteapp-chat/server/pkg/redis"
)

// AppConfig is everything the chat service reads from the environment.
type AppConfig struct {
	Environment core.Environment `envconfig:"ENVIRONMENT" default:"development"`
	LogLevel    string           `envconfig:"LOG_LEVEL"`

	LLM        LLMConfig
	NoteApp    NoteAppConfig
	Turn       TurnConfig
	History    HistoryConfig
	Casual     CasualConfig
	Checkpoint CheckpointConfig
	Audit      AuditConfig
	Redis      pkgredis.Config
}

type LLMConfig struct {
	APIKey      string        `envconfig:"GEMINI_API_KEY"`
	BaseURL     string        `envconfig:"GEMINI_BASE_URL"`
	Model       string        `envconfig:"CHAT_MODEL" default:"gemini-2.5-flash" validate:"required"`
	MaxTokens   int           `envconfig:"CHAT_MAX_TOKENS" default:"2000" validate:"gt=0"`
	Temperature float32       `envconfig:"CHAT_TEMPERATURE" default:"0.3" validate:"gte=0,lte=2"`
	Timeout     time.Duration `envconfig:"LLM_TIMEOUT" default:"60s" validate:"gt=0"`
}

type NoteAppConfig struct {
	BaseURL string        `envconfig:"NOTEAPP_BACKEND_URL" default:"http://localhost:5000" validate:"required,url"`
	Timeout time.Duration `envconfig:"NOTEAPP_TIMEOUT" default:"15s" validate:"gt=0"`
}

// TurnConfig holds the anti-runaway limits and relevance floors of one turn.
type TurnConfig struct {
	MaxIterations  int     `envconfig:"TURN_MAX_ITERATIONS" default:"5" validate:"gte=1"`
	MaxFetches     int     `envconfig:"TURN_MAX_FETCHES" default:"2" validate:"gte=1"`
	InitialFloor   float64 `envconfig:"TURN_INITIAL_FLOOR" default:"0.0" validate:"gte=-1,lte=1"`
	RefetchFloor   float64 `envconfig:"TURN_REFETCH_FLOOR" default:"0.01" validate:"gte=-1,lte=1"`
	ContinueFloor  float64 `envconfig:"TURN_CONTINUE_FLOOR" default:"0.1" validate:"gte=-1,lte=1"`
	TypoCorrection bool    `envconfig:"TURN_TYPO_CORRECTION" default:"true"`
	MaxConcurrent  int64   `envconfig:"TURN_MAX_CONCURRENT" default:"16" validate:"gte=1"`
}

type HistoryConfig struct {
	MaxRecent       int `envconfig:"HISTORY_MAX_RECENT" default:"10" validate:"gte=1"`
	MaxTokens       int `envconfig:"HISTORY_MAX_TOKENS" default:"2000" validate:"gt=0"`
	SummaryTrigger  int `envconfig:"HISTORY_SUMMARY_TRIGGER" default:"20" validate:"gte=1"`
	ResponseReserve int `envconfig:"HISTORY_RESPONSE_RESERVE" default:"500" validate:"gte=0"`
}

type CasualConfig struct {
	TemplateRatio float64 `envconfig:"CASUAL_TEMPLATE_RATIO" default:"0.7" validate:"gte=0,lte=1"`
}

type CheckpointConfig struct {
	Backend      string        `envconfig:"CHECKPOINT_BACKEND" default:"memory" validate:"oneof=memory redis none"`
	TTL          time.Duration `envconfig:"CHECKPOINT_TTL" default:"24h"`
	CarryFetched bool          `envconfig:"CHECKPOINT_CARRY_FETCHED" default:"false"`
}

type AuditConfig struct {
	Enabled bool   `envconfig:"AUDIT_ENABLED" default:"false"`
	Path    string `envconfig:"AUDIT_PATH" default:"noteapp-chat-audit.db"`
}

// DefaultTurnConfig mirrors the envconfig defaults for callers that build
// the graph without going through LoadConfig.
func DefaultTurnConfig() TurnConfig {
	return TurnConfig{
		MaxIterations:  5,
		MaxFetches:     2,
		InitialFloor:   0.0,
		RefetchFloor:   0.01,
		ContinueFloor:  0.1,
		TypoCorrection: true,
		MaxConcurrent:  16,
	}
}

func DefaultHistoryConfig() HistoryConfig {
	return HistoryConfig{MaxRecent: 10, MaxTokens: 2000, SummaryTrigger: 20, ResponseReserve: 500}
}

// LoadConfig reads envFile (when it exists) and then the process environment.
func LoadConfig(envFile string) (*AppConfig, error) {
	if envFile != "" {
		// a missing .env is normal outside local runs
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	var cfg AppConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process environment config: %w", err)
	}
	cfg.NoteApp.BaseURL = strings.TrimRight(cfg.NoteApp.BaseURL, "/")
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints and the cross-field rules envconfig can't express.
func (c *AppConfig) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Checkpoint.Backend == "redis" && c.Redis.URL == "" {
		return fmt.Errorf("invalid config: REDIS_URL is required when CHECKPOINT_BACKEND=redis")
	}
	if c.Audit.Enabled && strings.TrimSpace(c.Audit.Path) == "" {
		return fmt.Errorf("invalid config: AUDIT_PATH is required when AUDIT_ENABLED=true")
	}
	if c.Turn.ContinueFloor < c.Turn.InitialFloor {
		return fmt.Errorf("invalid config: TURN_CONTINUE_FLOOR must not be below TURN_INITIAL_FLOOR")
	}
	return nil
}
