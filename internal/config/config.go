// File: internal/config/config.go
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Settle strategies understood by the stability package.
const (
	SettleFixed = "fixed"
	SettlePoll  = "poll"
)

// Config holds the entire application configuration.
type Config struct {
	Logger  LoggerConfig  `mapstructure:"logger" yaml:"logger"`
	Browser BrowserConfig `mapstructure:"browser" yaml:"browser"`
	Portal  PortalConfig  `mapstructure:"portal" yaml:"portal"`
	Timing  TimingConfig  `mapstructure:"timing" yaml:"timing"`
	Output  OutputConfig  `mapstructure:"output" yaml:"output"`
	Input   InputConfig   `mapstructure:"input" yaml:"input"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	PerRunFile  bool        `mapstructure:"per_run_file" yaml:"per_run_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the automated Chrome instance.
type BrowserConfig struct {
	// ExecPath pins the browser binary. When empty the well-known install
	// locations and PATH are searched.
	ExecPath string `mapstructure:"exec_path" yaml:"exec_path"`
	// HeadlessMode is "new" (full renderer, no window), "old" or "off".
	HeadlessMode       string        `mapstructure:"headless_mode" yaml:"headless_mode"`
	WindowWidth        int           `mapstructure:"window_width" yaml:"window_width"`
	WindowHeight       int           `mapstructure:"window_height" yaml:"window_height"`
	UserAgent          string        `mapstructure:"user_agent" yaml:"user_agent"`
	Args               []string      `mapstructure:"args" yaml:"args"`
	ProfilePrefix      string        `mapstructure:"profile_prefix" yaml:"profile_prefix"`
	InteractionTimeout time.Duration `mapstructure:"interaction_timeout" yaml:"interaction_timeout"`
	LaunchTimeout      time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
}

// PortalConfig points the automation at the tracking portal.
type PortalConfig struct {
	URL      string         `mapstructure:"url" yaml:"url"`
	Locators LocatorsConfig `mapstructure:"locators" yaml:"locators"`
}

// LocatorsConfig holds the fixed CSS selectors used against the portal.
type LocatorsConfig struct {
	Root         string `mapstructure:"root" yaml:"root"`
	CookieAccept string `mapstructure:"cookie_accept" yaml:"cookie_accept"`
	CoachDismiss string `mapstructure:"coach_dismiss" yaml:"coach_dismiss"`
	SearchInput  string `mapstructure:"search_input" yaml:"search_input"`
	SubmitButton string `mapstructure:"submit_button" yaml:"submit_button"`
	ResultsFrame string `mapstructure:"results_frame" yaml:"results_frame"`
	ResultLinks  string `mapstructure:"result_links" yaml:"result_links"`
}

// TimingConfig tunes the fixed delays between interactions.
type TimingConfig struct {
	PopupSettle    time.Duration `mapstructure:"popup_settle" yaml:"popup_settle"`
	DetailSettle   time.Duration `mapstructure:"detail_settle" yaml:"detail_settle"`
	InterItemDelay time.Duration `mapstructure:"inter_item_delay" yaml:"inter_item_delay"`
	SettleStrategy string        `mapstructure:"settle_strategy" yaml:"settle_strategy"`
	PollInterval   time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// OutputConfig controls where captured documents and the combined report land.
type OutputConfig struct {
	ResultsDir   string `mapstructure:"results_dir" yaml:"results_dir"`
	PDFSubdir    string `mapstructure:"pdf_subdir" yaml:"pdf_subdir"`
	ReportPrefix string `mapstructure:"report_prefix" yaml:"report_prefix"`
	FileSuffix   string `mapstructure:"file_suffix" yaml:"file_suffix"`
}

// PDFDir is the directory holding per-identifier captures.
func (o OutputConfig) PDFDir() string {
	return filepath.Join(o.ResultsDir, o.PDFSubdir)
}

// InputConfig controls how identifier tables are read.
type InputConfig struct {
	// HasHeader skips the first row of the table.
	HasHeader bool `mapstructure:"has_header" yaml:"has_header"`
	// Strict turns an unsupported input format into a fatal error instead of an empty run.
	Strict bool `mapstructure:"strict" yaml:"strict"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "trackrunner")
	v.SetDefault("logger.log_file", "logs/damco_tracking.log")
	v.SetDefault("logger.per_run_file", true)
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.exec_path", "")
	v.SetDefault("browser.headless_mode", "new")
	v.SetDefault("browser.window_width", 1920)
	v.SetDefault("browser.window_height", 1080)
	v.SetDefault("browser.user_agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36")
	v.SetDefault("browser.args", []string{})
	v.SetDefault("browser.profile_prefix", "chrome_user_data")
	v.SetDefault("browser.interaction_timeout", "20s")
	v.SetDefault("browser.launch_timeout", "60s")

	// -- Portal --
	v.SetDefault("portal.url", "https://www.maersk.com/mymaersk-scm-track/")
	v.SetDefault("portal.locators.root", "body")
	v.SetDefault("portal.locators.cookie_accept", "button[data-test='coi-allow-all-button']")
	v.SetDefault("portal.locators.coach_dismiss", "button[data-test='finishButton']")
	v.SetDefault("portal.locators.search_input", "#formInput")
	v.SetDefault("portal.locators.submit_button", "button[data-test='form-input-button']")
	v.SetDefault("portal.locators.results_frame", "#damco-track")
	v.SetDefault("portal.locators.result_links", "#fcr_by_fcr_number a")

	// -- Timing --
	v.SetDefault("timing.popup_settle", "2s")
	v.SetDefault("timing.detail_settle", "5s")
	v.SetDefault("timing.inter_item_delay", "2s")
	v.SetDefault("timing.settle_strategy", SettleFixed)
	v.SetDefault("timing.poll_interval", "250ms")

	// -- Output --
	v.SetDefault("output.results_dir", "results")
	v.SetDefault("output.pdf_subdir", "pdfs")
	v.SetDefault("output.report_prefix", "damco_tracking_report")
	v.SetDefault("output.file_suffix", "_tracking.pdf")

	// -- Input --
	v.SetDefault("input.has_header", true)
	v.SetDefault("input.strict", false)
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// expandPaths resolves a leading ~ in every filesystem path.
func (c *Config) expandPaths() error {
	paths := []*string{&c.Logger.LogFile, &c.Browser.ExecPath, &c.Output.ResultsDir}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Browser.Validate(); err != nil {
		return fmt.Errorf("browser configuration invalid: %w", err)
	}
	if err := c.Portal.Validate(); err != nil {
		return fmt.Errorf("portal configuration invalid: %w", err)
	}
	if err := c.Timing.Validate(); err != nil {
		return fmt.Errorf("timing configuration invalid: %w", err)
	}
	if c.Output.ResultsDir == "" {
		return fmt.Errorf("output.results_dir is required")
	}
	if c.Output.FileSuffix == "" {
		return fmt.Errorf("output.file_suffix is required")
	}
	return nil
}

// Validate checks the browser settings.
func (b *BrowserConfig) Validate() error {
	switch strings.ToLower(b.HeadlessMode) {
	case "new", "old", "off":
	default:
		return fmt.Errorf("headless_mode must be one of new, old, off (got %q)", b.HeadlessMode)
	}
	if b.InteractionTimeout <= 0 {
		return fmt.Errorf("interaction_timeout must be a positive duration")
	}
	if b.LaunchTimeout <= 0 {
		return fmt.Errorf("launch_timeout must be a positive duration")
	}
	if b.WindowWidth <= 0 || b.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive")
	}
	return nil
}

// Validate checks the portal URL and locators.
func (p *PortalConfig) Validate() error {
	if p.URL == "" {
		return fmt.Errorf("url is required")
	}
	l := p.Locators
	required := map[string]string{
		"root":          l.Root,
		"cookie_accept": l.CookieAccept,
		"coach_dismiss": l.CoachDismiss,
		"search_input":  l.SearchInput,
		"submit_button": l.SubmitButton,
		"results_frame": l.ResultsFrame,
		"result_links":  l.ResultLinks,
	}
	for name, sel := range required {
		if strings.TrimSpace(sel) == "" {
			return fmt.Errorf("locators.%s is required", name)
		}
	}
	return nil
}

// Validate checks the delay settings.
func (t *TimingConfig) Validate() error {
	if t.PopupSettle < 0 || t.DetailSettle < 0 || t.InterItemDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	switch t.SettleStrategy {
	case SettleFixed:
	case SettlePoll:
		if t.PollInterval <= 0 {
			return fmt.Errorf("poll_interval must be a positive duration")
		}
	default:
		return fmt.Errorf("settle_strategy must be %q or %q (got %q)", SettleFixed, SettlePoll, t.SettleStrategy)
	}
	return nil
}
