package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	AppName    = "lapsecam"
	AppVersion = "1.0.0"
)

// UserAgent identifies the agent on outbound requests.
var UserAgent = AppName + "/" + AppVersion

// Capture source kinds.
const (
	SourceCommand = "command"
	SourceSpool   = "spool"
	SourceStub    = "stub"
)

type Config struct {
	Addr    string
	DataDir string
	DBPath  string

	// Capture
	Source         string // command | spool | stub
	CaptureCommand string // binary writing a JPEG to stdout
	SpoolDir       string // directory watched for externally dropped frames
	Interval       time.Duration

	// Feed upload
	FeedBaseURL    string
	FeedUsername   string
	FeedKey        string // account API key, sent as X-AIO-Key
	CameraFeed     string
	TriggerFeed    string
	UploadDisabled bool

	// Notification
	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	MailFrom string
	MailTo   string

	// Control API
	APIToken string

	// Outbound proxy, http(s):// or socks5://
	ProxyURL string

	// Retention
	RetentionAge time.Duration
	RetentionMax int

	LogLevel string
}

func Load() Config {
	dataDir := getenv("LAPSECAM_DATA_DIR", "./data")

	cfg := Config{
		Addr:           getenv("LAPSECAM_ADDR", ":8080"),
		DataDir:        filepath.Clean(dataDir),
		DBPath:         filepath.Clean(getenv("LAPSECAM_DB_PATH", filepath.Join(dataDir, "lapsecam.db"))),
		Source:         getenv("LAPSECAM_SOURCE", SourceStub),
		CaptureCommand: os.Getenv("LAPSECAM_CAPTURE_COMMAND"),
		SpoolDir:       filepath.Clean(getenv("LAPSECAM_SPOOL_DIR", filepath.Join(dataDir, "spool"))),
		Interval:       time.Duration(getenvInt("LAPSECAM_INTERVAL_SECONDS", 60)) * time.Second,
		FeedBaseURL:    getenv("LAPSECAM_FEED_BASE_URL", "https://io.adafruit.com"),
		FeedUsername:   os.Getenv("LAPSECAM_FEED_USERNAME"),
		FeedKey:        os.Getenv("LAPSECAM_FEED_KEY"),
		CameraFeed:     getenv("LAPSECAM_CAMERA_FEED", "camera"),
		TriggerFeed:    getenv("LAPSECAM_TRIGGER_FEED", "camera-trigger"),
		SMTPHost:       os.Getenv("LAPSECAM_SMTP_HOST"),
		SMTPPort:       getenvInt("LAPSECAM_SMTP_PORT", 587),
		SMTPUser:       os.Getenv("LAPSECAM_SMTP_USER"),
		SMTPPass:       os.Getenv("LAPSECAM_SMTP_PASS"),
		MailFrom:       os.Getenv("LAPSECAM_MAIL_FROM"),
		MailTo:         os.Getenv("LAPSECAM_MAIL_TO"),
		APIToken:       os.Getenv("LAPSECAM_API_TOKEN"),
		ProxyURL:       os.Getenv("LAPSECAM_PROXY_URL"),
		RetentionAge:   time.Duration(getenvInt("LAPSECAM_RETENTION_DAYS", 30)) * 24 * time.Hour,
		RetentionMax:   getenvInt("LAPSECAM_RETENTION_MAX", 0),
		LogLevel:       getenv("LAPSECAM_LOG_LEVEL", "info"),
	}

	// Uploads need account credentials; without them the agent runs capture-only.
	if cfg.FeedUsername == "" || cfg.FeedKey == "" {
		cfg.UploadDisabled = true
	}

	return cfg
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
