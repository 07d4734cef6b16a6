package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Mail holds SMTP delivery settings.
type Mail struct {
	SMTPHost   string   `yaml:"smtp_host"`
	SMTPPort   int      `yaml:"smtp_port"`
	Username   string   `yaml:"username"`
	Password   string   `yaml:"password"`
	From       string   `yaml:"from"`
	FromName   string   `yaml:"from_name"`
	Recipients []string `yaml:"recipients"`
	UseTLS     bool     `yaml:"use_tls"`
}

// Config holds all application configuration.
type Config struct {
	Mail       Mail `yaml:"mail"`
	DataSource struct {
		BaseURL         string `yaml:"base_url"`
		APIKey          string `yaml:"api_key"`
		MarketSuffix    string `yaml:"market_suffix"`
		FundamentalsURL string `yaml:"fundamentals_url"`
	} `yaml:"data_source"`
	Report struct {
		WatchlistPath string `yaml:"watchlist_path"`
		LookbackDays  int    `yaml:"lookback_days"`
		FetchDays     int    `yaml:"fetch_days"`
		TmpDir        string `yaml:"tmp_dir"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"report"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.Mail.SMTPHost = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Mail.SMTPPort = port
		}
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.Mail.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.Mail.Password = v
	}
	if v := os.Getenv("MAIL_RECIPIENTS"); v != "" {
		cfg.Mail.Recipients = splitRecipients(v)
	}
	if v := os.Getenv("DATASOURCE_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("DATASOURCE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("WATCHLIST_PATH"); v != "" {
		cfg.Report.WatchlistPath = v
	}
	if v := os.Getenv("REPORT_CRON"); v != "" {
		cfg.Schedule.ReportCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Mail.SMTPPort == 0 {
		cfg.Mail.SMTPPort = 587
		cfg.Mail.UseTLS = true
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = "Spongecake Autoreport"
	}
	if cfg.DataSource.MarketSuffix == "" {
		cfg.DataSource.MarketSuffix = "L"
	}
	if cfg.Report.WatchlistPath == "" {
		cfg.Report.WatchlistPath = "watchlist"
	}
	if cfg.Report.LookbackDays == 0 {
		cfg.Report.LookbackDays = 180
	}
	if cfg.Report.FetchDays == 0 {
		cfg.Report.FetchDays = 365
	}
	if cfg.Report.TmpDir == "" {
		cfg.Report.TmpDir = os.TempDir()
	}
	if cfg.Report.SubjectPrefix == "" {
		cfg.Report.SubjectPrefix = "Technicals Report"
	}
	if cfg.Schedule.ReportCron == "" {
		// Weekday mornings before the open
		cfg.Schedule.ReportCron = "0 0 7 * * 1-5"
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Mail.SMTPHost == "" {
		return fmt.Errorf("mail.smtp_host is required")
	}
	if c.Mail.From == "" {
		return fmt.Errorf("mail.from is required")
	}
	if len(c.Mail.Recipients) == 0 {
		return fmt.Errorf("mail.recipients is required")
	}
	if c.Report.LookbackDays < 0 || c.Report.FetchDays < c.Report.LookbackDays {
		return fmt.Errorf("report.fetch_days must be >= report.lookback_days")
	}
	return nil
}

func splitRecipients(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
