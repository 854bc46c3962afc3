package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds the application configuration
type Config struct {
	Port    int
	BaseURL string

	DataDir  string
	MusicDir string
	PhotoDir string
	AssetDir string

	SecretKey     string
	AdminPassword string

	LogLevel  string
	LogFormat string

	StoreMaxRetries int
	StoreRetryDelay time.Duration

	WhatsAppEnabled     bool
	WhatsAppDataDir     string
	WhatsAppCountryCode string

	Wedding Wedding
}

// Wedding holds everything shown on the invitation page. All texts can be
// overridden from the environment.
type Wedding struct {
	GroomName          string
	BrideName          string
	Date               string
	DateWeekday        string
	BanquetTime        string
	CeremonyTime       string
	Venue              string
	Address            string
	Start              time.Time
	Duration           time.Duration
	CoverSubtitle      string
	InviteTitle        string
	InviteText         string
	StoryTitle         string
	StoryText          string
	DetailsTitle       string
	CeremonyLabel      string
	BanquetLabel       string
	VenueLabel         string
	ClosingText        string
	FooterText         string
	CeremonyInviteText string
	RSVPThankYou       string
	RSVPDeclineText    string
	CoverPhoto         string
	BGMFilename        string
}

const defaultInviteText = "谨定于{wedding_date}（{wedding_date_weekday}）\n" +
	"为我俩举行婚礼\n" +
	"诚邀您拨冗出席\n" +
	"共同见证我们的幸福时刻"

const defaultStoryText = "从相遇到相知，从相知到相爱\n" +
	"感谢命运让我们在茫茫人海中找到彼此\n" +
	"感谢一路走来所有的温暖与陪伴\n" +
	"如今我们即将携手步入婚姻的殿堂\n" +
	"愿与你们一起分享这份喜悦\n" +
	"往后余生，风雪是你，平淡是你\n" +
	"愿我们的爱情故事 成为最美的篇章"

const defaultClosingText = "你们的每一次微笑与祝福\n" +
	"都是我们最珍贵的礼物\n" +
	"期待与您共同见证这美好时刻"

const defaultCeremonyInviteText = "我们诚挚地邀请您参加下午的草坪婚礼仪式\n" +
	"在蓝天白云下，一起见证爱与承诺的美好瞬间"

// LoadConfig loads configuration from a .env file (if present), environment
// variables and command line flags, in increasing order of precedence.
func LoadConfig(args []string) (*Config, error) {
	// A missing .env is normal in containers.
	_ = godotenv.Load()

	cfg := &Config{
		BaseURL:         strings.TrimRight(getEnv("BASE_URL", ""), "/"),
		DataDir:         getEnv("DATA_DIR", "data"),
		AssetDir:        getEnv("ASSET_DIR", "."),
		SecretKey:       getEnv("SECRET_KEY", "wedding-secret-key-change-me"),
		AdminPassword:   getEnv("ADMIN_PASSWORD", "admin123"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "console"),
		WhatsAppDataDir: getEnv("WHATSAPP_DATA_DIR", ""),
	}
	cfg.WhatsAppCountryCode = strings.TrimLeft(getEnv("WHATSAPP_COUNTRY_CODE", ""), "+")
	cfg.MusicDir = getEnv("MUSIC_DIR", "")
	cfg.PhotoDir = getEnv("PHOTO_DIR", "")

	var err error
	if cfg.Port, err = getEnvInt("PORT", 5050); err != nil {
		return nil, err
	}
	if cfg.StoreMaxRetries, err = getEnvInt("STORE_MAX_RETRIES", 5); err != nil {
		return nil, err
	}
	if cfg.StoreRetryDelay, err = getEnvDuration("STORE_RETRY_DELAY", 100*time.Millisecond); err != nil {
		return nil, err
	}
	if cfg.WhatsAppEnabled, err = getEnvBool("WHATSAPP_ENABLED", false); err != nil {
		return nil, err
	}
	if cfg.Wedding, err = loadWedding(); err != nil {
		return nil, err
	}

	fs := pflag.NewFlagSet("wedding-invitation", pflag.ContinueOnError)
	fs.IntVarP(&cfg.Port, "port", "p", cfg.Port, "HTTP listen port")
	fs.StringVarP(&cfg.DataDir, "data-dir", "d", cfg.DataDir, "directory holding guests.json and theme.json")
	fs.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "public URL prefix for invitation links")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.BoolVar(&cfg.WhatsAppEnabled, "whatsapp", cfg.WhatsAppEnabled, "enable WhatsApp invitation delivery")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if rest := fs.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unexpected argument: %s", rest[0])
	}

	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.MusicDir == "" {
		cfg.MusicDir = filepath.Join(cfg.DataDir, "music")
	}
	if cfg.PhotoDir == "" {
		cfg.PhotoDir = filepath.Join(cfg.DataDir, "photo")
	}
	if cfg.WhatsAppDataDir == "" {
		cfg.WhatsAppDataDir = cfg.DataDir
	}
	if cfg.Port < 1 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.StoreMaxRetries < 1 {
		return nil, fmt.Errorf("STORE_MAX_RETRIES must be at least 1, got %d", cfg.StoreMaxRetries)
	}

	return cfg, nil
}

func loadWedding() (Wedding, error) {
	w := Wedding{
		GroomName:          getEnv("GROOM_NAME", "新郎"),
		BrideName:          getEnv("BRIDE_NAME", "新娘"),
		Date:               getEnv("WEDDING_DATE", "2026年10月01日"),
		DateWeekday:        getEnv("WEDDING_DATE_WEEKDAY", "星期四"),
		BanquetTime:        getEnv("BANQUET_TIME", "18:00"),
		CeremonyTime:       getEnv("CEREMONY_TIME", "16:00"),
		Venue:              getEnv("WEDDING_VENUE", "某某酒店·草坪厅"),
		Address:            getEnv("WEDDING_ADDRESS", ""),
		CoverSubtitle:      getEnv("COVER_SUBTITLE", "WE ARE GETTING MARRIED"),
		InviteTitle:        getEnv("INVITE_TITLE", "诚挚邀请"),
		InviteText:         getEnv("INVITE_TEXT", defaultInviteText),
		StoryTitle:         getEnv("STORY_TITLE", "我们的故事"),
		StoryText:          getEnv("STORY_TEXT", defaultStoryText),
		DetailsTitle:       getEnv("DETAILS_TITLE", "婚礼详情"),
		CeremonyLabel:      getEnv("CEREMONY_LABEL", "草坪仪式"),
		BanquetLabel:       getEnv("BANQUET_LABEL", "婚宴时间"),
		VenueLabel:         getEnv("VENUE_LABEL", "婚宴地点"),
		ClosingText:        getEnv("CLOSING_TEXT", defaultClosingText),
		FooterText:         getEnv("FOOTER_TEXT", "感恩相遇 · 期待重逢"),
		CeremonyInviteText: getEnv("CEREMONY_INVITE_TEXT", defaultCeremonyInviteText),
		RSVPThankYou:       getEnv("RSVP_THANK_YOU", "感谢您的回复！"),
		RSVPDeclineText:    getEnv("RSVP_DECLINE_TEXT", "感谢您的告知，我们会想念您的！"),
		CoverPhoto:         getEnv("COVER_PHOTO", "cover.jpg"),
		BGMFilename:        getEnv("BGM_FILENAME", "bgm.ogg"),
	}

	start, err := time.Parse(time.RFC3339, getEnv("WEDDING_START", "2026-10-01T16:00:00+08:00"))
	if err != nil {
		return Wedding{}, fmt.Errorf("invalid WEDDING_START: %w", err)
	}
	w.Start = start
	if w.Duration, err = getEnvDuration("WEDDING_DURATION", 5*time.Hour); err != nil {
		return Wedding{}, err
	}
	return w, nil
}

// Couple returns the display string for both names.
func (w Wedding) Couple() string {
	return w.GroomName + " & " + w.BrideName
}

// RenderInviteText substitutes {placeholders} in the invite text with
// the other wedding fields.
func (w Wedding) RenderInviteText() string {
	r := strings.NewReplacer(
		"{groom_name}", w.GroomName,
		"{bride_name}", w.BrideName,
		"{wedding_date}", w.Date,
		"{wedding_date_weekday}", w.DateWeekday,
		"{banquet_time}", w.BanquetTime,
		"{ceremony_time}", w.CeremonyTime,
		"{wedding_venue}", w.Venue,
		"{wedding_address}", w.Address,
	)
	return r.Replace(w.InviteText)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
