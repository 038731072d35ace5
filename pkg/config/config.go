package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env     string
	Port    int
	BaseURL string

	Audio     AudioConfig
	Synthesis SynthesisConfig
	Schedules SchedulesConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Auth      AuthConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
}

// AudioConfig locates the clip directory, the fixed jingle assets and the
// ffmpeg binary used for mixing.
type AudioConfig struct {
	ClipDir        string
	IntroPath      string
	OutroPath      string
	FFmpegPath     string
	TimeoutSeconds int
}

// SynthesisConfig describes the external speech-synthesis command and the
// worker pool that runs pipeline jobs.
type SynthesisConfig struct {
	Command        string
	ScriptPath     string
	TimeoutSeconds int
	Workers        int
	QueueSize      int
}

// SchedulesConfig tunes schedule evaluation.
type SchedulesConfig struct {
	Timezone      string
	DueCacheTTL   time.Duration
	EnableCaching bool
}

type DatabaseConfig struct {
	Enabled      bool
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// AuthConfig carries the single-installation access code. The value may be a
// bcrypt hash; plain values are compared in constant time.
type AuthConfig struct {
	AccessCode string
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.BaseURL = strings.TrimRight(v.GetString("BASE_URL"), "/")

	cfg.Audio = AudioConfig{
		ClipDir:        v.GetString("AUDIO_CLIP_DIR"),
		IntroPath:      v.GetString("AUDIO_INTRO_PATH"),
		OutroPath:      v.GetString("AUDIO_OUTRO_PATH"),
		FFmpegPath:     v.GetString("AUDIO_FFMPEG_PATH"),
		TimeoutSeconds: v.GetInt("AUDIO_MIX_TIMEOUT"),
	}

	cfg.Synthesis = SynthesisConfig{
		Command:        v.GetString("SYNTHESIS_COMMAND"),
		ScriptPath:     v.GetString("SYNTHESIS_SCRIPT_PATH"),
		TimeoutSeconds: v.GetInt("SYNTHESIS_TIMEOUT"),
		Workers:        v.GetInt("SYNTHESIS_WORKERS"),
		QueueSize:      v.GetInt("SYNTHESIS_QUEUE_SIZE"),
	}

	cfg.Schedules = SchedulesConfig{
		Timezone:      v.GetString("SCHEDULES_TIMEZONE"),
		DueCacheTTL:   parseDuration(v.GetString("SCHEDULES_DUE_CACHE_TTL"), 30*time.Second),
		EnableCaching: v.GetBool("SCHEDULES_ENABLE_DUE_CACHE"),
	}

	cfg.Database = DatabaseConfig{
		Enabled:      v.GetBool("ENABLE_POSTGRES"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Auth = AuthConfig{
		AccessCode: v.GetString("ACCESS_CODE"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8000)
	v.SetDefault("BASE_URL", "http://localhost:8000")

	v.SetDefault("AUDIO_CLIP_DIR", "./temp")
	v.SetDefault("AUDIO_INTRO_PATH", "./bell-intro.mp3")
	v.SetDefault("AUDIO_OUTRO_PATH", "./bell-outro.mp3")
	v.SetDefault("AUDIO_FFMPEG_PATH", "ffmpeg")
	v.SetDefault("AUDIO_MIX_TIMEOUT", 60)

	v.SetDefault("SYNTHESIS_COMMAND", "python3")
	v.SetDefault("SYNTHESIS_SCRIPT_PATH", "./tts_engine.py")
	v.SetDefault("SYNTHESIS_TIMEOUT", 120)
	v.SetDefault("SYNTHESIS_WORKERS", 2)
	v.SetDefault("SYNTHESIS_QUEUE_SIZE", 8)

	v.SetDefault("SCHEDULES_TIMEZONE", "")
	v.SetDefault("SCHEDULES_ENABLE_DUE_CACHE", false)

	v.SetDefault("ENABLE_POSTGRES", false)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSL_MODE", "disable")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)

	v.SetDefault("ACCESS_CODE", "asleb2026")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
