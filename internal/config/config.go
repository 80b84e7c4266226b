package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"boqview/internal/model"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

// EnvPrefix namespaces environment overrides: BOQVIEW_PAGE_SIZE=50.
const EnvPrefix = "BOQVIEW"

type Config struct {
	FilePath string `mapstructure:"file"`
	Sheet    string `mapstructure:"sheet"`
	Follow   bool   `mapstructure:"follow"`
	Theme    Theme  `mapstructure:"theme"`

	DefaultLimit int    `mapstructure:"default-limit"`
	PageSize     int    `mapstructure:"page-size"`
	MaxPDFRows   int    `mapstructure:"max-pdf-rows"`
	PDFFont      string `mapstructure:"pdf-font"`

	ExportFormat string `mapstructure:"export"`
	ExportOut    string `mapstructure:"out"`
	Query        string `mapstructure:"query"`
	Mode         string `mapstructure:"mode"`
	Where        string `mapstructure:"where"`

	Offline          bool   `mapstructure:"offline"`
	NoCache          bool   `mapstructure:"no-cache"`
	OpenAIModel      string `mapstructure:"openai-model"`
	OpenAIBase       string `mapstructure:"openai-base-url"`
	OpenAITimeoutSec int    `mapstructure:"openai-timeout-sec"`

	LogLevel  string `mapstructure:"log-level"`
	LogFormat string `mapstructure:"log-format"`
	LogStderr bool   `mapstructure:"log-stderr"`

	// ConfigFile is the file actually read, if any.
	ConfigFile string `mapstructure:"-"`
}

// RegisterFlags declares every setting on fs. Defaults live here so --help shows them.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (default ./boqview.yaml if present)")
	fs.StringP("file", "f", "", "BOQ workbook (.xlsx) or CSV; empty runs the demo data set")
	fs.String("sheet", "", "worksheet to load (default: cached choice, else first valid sheet)")
	fs.Bool("follow", false, "follow a CSV file for appended rows (tail -f)")
	fs.String("theme", string(ThemeDark), "theme: dark|light")
	fs.Int("default-limit", 200, "rows shown before any search")
	fs.Int("page-size", 20, "rows per page")
	fs.Int("max-pdf-rows", 2000, "largest view the PDF export accepts")
	fs.String("pdf-font", "", "UTF-8 TrueType font for PDF export (needed for Thai text)")
	fs.String("export", "", "headless export of the query result: csv|ndjson|xlsx|pdf")
	fs.String("out", "", "output path for --export")
	fs.StringP("query", "q", "", "search text for headless export")
	fs.String("mode", string(model.MatchAll), "match mode: all|any")
	fs.String("where", "", "where expression, e.g. \"amount > 10000 && unit == 'm2'\"")
	fs.Bool("offline", false, "disable OpenAI features")
	fs.Bool("no-cache", false, "disable the sheet choice cache (skip read/write)")
	fs.String("openai-model", "gpt-4o-mini", "OpenAI model")
	fs.String("openai-base-url", "", "OpenAI base URL override")
	fs.Int("openai-timeout-sec", 120, "OpenAI request timeout in seconds")
	fs.String("log-level", "info", "log level: debug|info|warn|error")
	fs.String("log-format", "console", "log encoding: console|json")
	fs.Bool("log-stderr", false, "mirror logs to stderr")
}

// Load resolves settings with precedence flag > env > config file > default.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(fs); err != nil {
		return nil, eris.Wrap(err, "config: bind flags")
	}

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("boqview")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}
	cfg.ConfigFile = v.ConfigFileUsed()
	cfg.Theme = Theme(strings.ToLower(strings.TrimSpace(string(cfg.Theme))))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.ExportFormat != "" && c.ExportOut == "" {
		return eris.New("--export requires --out path")
	}
	if c.PageSize < 1 {
		return eris.Errorf("page-size must be at least 1, got %d", c.PageSize)
	}
	if c.DefaultLimit < 1 {
		return eris.Errorf("default-limit must be at least 1, got %d", c.DefaultLimit)
	}
	if _, ok := model.ParseMatchMode(c.Mode); !ok {
		return eris.Errorf("mode must be all or any, got %q", c.Mode)
	}
	if c.Theme != ThemeDark && c.Theme != ThemeLight {
		return eris.Errorf("theme must be dark or light, got %q", c.Theme)
	}
	if c.Follow && c.FilePath != "" && strings.HasSuffix(strings.ToLower(c.FilePath), ".xlsx") {
		return eris.New("--follow works with CSV sources only")
	}
	return nil
}

// MatchMode is the validated --mode.
func (c *Config) MatchMode() model.MatchMode {
	m, _ := model.ParseMatchMode(c.Mode)
	return m
}

func (c *Config) OpenAIKey() string { return os.Getenv("OPENAI_API_KEY") }

func (c *Config) String() string {
	return fmt.Sprintf("file=%s sheet=%s follow=%v theme=%s limit=%d page=%d offline=%v", c.FilePath, c.Sheet, c.Follow, c.Theme, c.DefaultLimit, c.PageSize, c.Offline)
}
