package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig     `yaml:"server"`
	Log         LogConfig        `yaml:"log"`
	Sheet       SheetConfig      `yaml:"sheet"`
	Budget      BudgetConfig     `yaml:"budget"`
	Copy        CopyConfig       `yaml:"copy"`
	Preferences PreferenceConfig `yaml:"preferences"`
	Storage     StorageConfig    `yaml:"storage"`
	Database    DatabaseConfig   `yaml:"database"`
	Events      EventsConfig     `yaml:"events"`
	Snapshot    SnapshotConfig   `yaml:"snapshot"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port           int      `yaml:"port"`
	Host           string   `yaml:"host"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// LogConfig holds logger settings
type LogConfig struct {
	Level         string `yaml:"level"`
	RedactSecrets *bool  `yaml:"redact_secrets"`
}

// Redact reports whether secret redaction is on. Defaults to true.
func (c LogConfig) Redact() bool {
	return c.RedactSecrets == nil || *c.RedactSecrets
}

// SheetConfig describes where the meter CSV is fetched from.
// CSVURL may be an http(s) URL, an s3://bucket/key URL or a local path.
// When CSVURL is empty it is built from SheetID.
type SheetConfig struct {
	SheetID        string `yaml:"sheet_id"`
	CSVURL         string `yaml:"csv_url"`
	AccessToken    string `yaml:"access_token"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
	AWSRegion      string `yaml:"aws_region"`
	AWSAccessKey   string `yaml:"aws_access_key"`
	AWSSecretKey   string `yaml:"aws_secret_key"`
}

// URL returns the effective CSV location
func (c SheetConfig) URL() string {
	if c.CSVURL != "" {
		return c.CSVURL
	}
	if c.SheetID == "" {
		return ""
	}
	return "https://docs.google.com/spreadsheets/d/" + c.SheetID + "/export?format=csv"
}

// Timeout returns the configured fetch timeout as a duration
func (c SheetConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// BudgetConfig holds the dashboard constants. All of them are overridable.
type BudgetConfig struct {
	Limit           float64 `yaml:"limit"`
	Currency        string  `yaml:"currency"`
	DayStartHour    int     `yaml:"day_start_hour"`
	DayEndHour      int     `yaml:"day_end_hour"`
	RecentWindow    int     `yaml:"recent_window"`
	SampleThreshold int     `yaml:"sample_threshold"`
	SampleStep      int     `yaml:"sample_step"`
	TotalMode       string  `yaml:"total_mode"` // "last_paid" or "cost_sum"
	Timezone        string  `yaml:"timezone"`
}

// Location resolves Timezone, falling back to UTC when it cannot be loaded.
func (c BudgetConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// CopyConfig holds Liquid templates for display strings. Empty fields use
// the built-in Thai copy.
type CopyConfig struct {
	ProgressText string `yaml:"progress_text"`
	LastUpdate   string `yaml:"last_update"`
	NoRoomData   string `yaml:"no_room_data"`
	AllRooms     string `yaml:"all_rooms"`
	RoomOption   string `yaml:"room_option"`
	DayLegend    string `yaml:"day_legend"`
	NightLegend  string `yaml:"night_legend"`
	BudgetLine   string `yaml:"budget_line"`
	FetchError   string `yaml:"fetch_error"`
	EmptyError   string `yaml:"empty_error"`
}

// PreferenceConfig selects the backend for the selected-room preference
type PreferenceConfig struct {
	Type          string `yaml:"type"` // "memory", "redis", "dynamodb"
	RedisURL      string `yaml:"redis_url"`
	DynamoDBTable string `yaml:"dynamodb_table"`
	AWSRegion     string `yaml:"aws_region"`
	AWSProfile    string `yaml:"aws_profile"`
	Owner         string `yaml:"owner"`
}

// StorageConfig holds snapshot storage configuration
type StorageConfig struct {
	Type       string `yaml:"type"` // "local" or "aws"
	LocalPath  string `yaml:"local_path"`
	S3Bucket   string `yaml:"s3_bucket"`
	S3Prefix   string `yaml:"s3_prefix"`
	AWSRegion  string `yaml:"aws_region"`
	AWSProfile string `yaml:"aws_profile"` // Empty string uses default credential chain (IAM role on ECS)
}

// GetAWSProfile returns the AWS profile, with environment variable override
func (c StorageConfig) GetAWSProfile() string {
	if envProfile := os.Getenv("AWS_PROFILE_OVERRIDE"); envProfile != "" {
		if envProfile == "none" || envProfile == "iam" {
			return ""
		}
		return envProfile
	}
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return ""
	}
	return c.AWSProfile
}

// DatabaseConfig holds the ingestion history database
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "postgres" or "sqlite3"
	URL    string `yaml:"url"`
}

// Enabled reports whether ingestion history should be recorded
func (c DatabaseConfig) Enabled() bool {
	return c.URL != ""
}

// EventsConfig holds Kafka settings for ingestion events
type EventsConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// SnapshotConfig holds settings for cmd/snapshot
type SnapshotConfig struct {
	IntervalMinutes int      `yaml:"interval_minutes"`
	Rooms           []string `yaml:"rooms"` // empty means "all" plus every room found
	LockTTLSeconds  int      `yaml:"lock_ttl_seconds"`
}

// Interval returns the snapshot interval as a duration
func (c SnapshotConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMinutes) * time.Minute
}

// LockTTL returns the distributed lock TTL as a duration
func (c SnapshotConfig) LockTTL() time.Duration {
	return time.Duration(c.LockTTLSeconds) * time.Second
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if len(cfg.Server.AllowedOrigins) == 0 {
		cfg.Server.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:8080"}
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Sheet.TimeoutSeconds == 0 {
		cfg.Sheet.TimeoutSeconds = 30
	}
	if cfg.Sheet.AWSRegion == "" {
		cfg.Sheet.AWSRegion = "ap-southeast-1"
	}
	if cfg.Budget.Limit == 0 {
		cfg.Budget.Limit = 1500
	}
	if cfg.Budget.Currency == "" {
		cfg.Budget.Currency = "฿"
	}
	if cfg.Budget.DayStartHour == 0 && cfg.Budget.DayEndHour == 0 {
		cfg.Budget.DayStartHour = 9
		cfg.Budget.DayEndHour = 22
	}
	if cfg.Budget.RecentWindow == 0 {
		cfg.Budget.RecentWindow = 20
	}
	if cfg.Budget.SampleThreshold == 0 {
		cfg.Budget.SampleThreshold = 50
	}
	if cfg.Budget.SampleStep == 0 {
		cfg.Budget.SampleStep = 5
	}
	if cfg.Budget.TotalMode == "" {
		cfg.Budget.TotalMode = "last_paid"
	}
	if cfg.Budget.Timezone == "" {
		cfg.Budget.Timezone = "Asia/Bangkok"
	}
	if cfg.Preferences.Type == "" {
		cfg.Preferences.Type = "memory"
	}
	if cfg.Preferences.Owner == "" {
		cfg.Preferences.Owner = "default"
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "local"
	}
	if cfg.Storage.LocalPath == "" {
		cfg.Storage.LocalPath = "./data/snapshots"
	}
	if cfg.Storage.S3Prefix == "" {
		cfg.Storage.S3Prefix = "snapshots"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "postgres"
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = "meter-ingestions"
	}
	if cfg.Snapshot.LockTTLSeconds == 0 {
		cfg.Snapshot.LockTTLSeconds = 120
	}
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars,
// so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SHEET_CSV_URL"); v != "" {
		cfg.Sheet.CSVURL = v
	}
	if v := os.Getenv("SHEET_ID"); v != "" {
		cfg.Sheet.SheetID = v
	}
	if v := os.Getenv("SHEET_ACCESS_TOKEN"); v != "" {
		cfg.Sheet.AccessToken = v
	}
	if v := os.Getenv("BUDGET_LIMIT"); v != "" {
		if limit, err := strconv.ParseFloat(v, 64); err == nil && limit > 0 {
			cfg.Budget.Limit = limit
		}
	}
	if v := os.Getenv("BUDGET_TIMEZONE"); v != "" {
		cfg.Budget.Timezone = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	// Redis switches the preference backend on, matching how the server
	// treats REDIS_URL elsewhere
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.Preferences.RedisURL = v
		if cfg.Preferences.Type == "memory" {
			cfg.Preferences.Type = "redis"
		}
	}
	if v := os.Getenv("PREFERENCES_DYNAMODB_TABLE"); v != "" {
		cfg.Preferences.DynamoDBTable = v
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}

	if v := os.Getenv("SNAPSHOT_S3_BUCKET"); v != "" {
		cfg.Storage.S3Bucket = v
		cfg.Storage.Type = "aws"
	}
	if v := os.Getenv("SNAPSHOT_S3_REGION"); v != "" {
		cfg.Storage.AWSRegion = v
	}

	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		var brokers []string
		for _, b := range strings.Split(v, ",") {
			if b = strings.TrimSpace(b); b != "" {
				brokers = append(brokers, b)
			}
		}
		cfg.Events.Brokers = brokers
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		cfg.Events.Topic = v
	}

	return cfg, nil
}
