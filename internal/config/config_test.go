// internal/config/config_test.go

package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:             "8080",
		Environment:      "development",
		DatabaseURL:      "postgresql://localhost:5432/gatherly",
		RedisURL:         "redis://localhost:6379/0",
		JWTSecret:        "test-secret",
		FeedbackAlpha:    0.3,
		VariancePenalty:  0.3,
		MinAttendance:    0.5,
		MaxSlotResults:   10,
		MaxAlternatives:  5,
		DefaultDuration:  time.Hour,
		ReminderLeadTime: 2 * time.Hour,
		EmailProvider:    "mock",
		SMSProvider:      "mock",
		LocalUploadDir:   "./uploads",
	}
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want %q", cfg.Port, "8080")
	}
	if cfg.FeedbackAlpha != 0.3 {
		t.Errorf("FeedbackAlpha = %v, want 0.3", cfg.FeedbackAlpha)
	}
	if cfg.VariancePenalty != 0.3 {
		t.Errorf("VariancePenalty = %v, want 0.3", cfg.VariancePenalty)
	}
	if cfg.MinAttendance != 0.5 {
		t.Errorf("MinAttendance = %v, want 0.5", cfg.MinAttendance)
	}
	if cfg.DefaultDuration != time.Hour {
		t.Errorf("DefaultDuration = %v, want 1h", cfg.DefaultDuration)
	}
	if cfg.ReminderLeadTime != 2*time.Hour {
		t.Errorf("ReminderLeadTime = %v, want 2h", cfg.ReminderLeadTime)
	}
	if cfg.EmailProvider != "mock" {
		t.Errorf("EmailProvider = %q, want %q", cfg.EmailProvider, "mock")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing database URL",
			mutate:  func(c *Config) { c.DatabaseURL = "" },
			wantErr: "database URL",
		},
		{
			name:    "alpha at zero",
			mutate:  func(c *Config) { c.FeedbackAlpha = 0 },
			wantErr: "feedback alpha",
		},
		{
			name:    "alpha at one",
			mutate:  func(c *Config) { c.FeedbackAlpha = 1 },
			wantErr: "feedback alpha",
		},
		{
			name:    "variance penalty out of range",
			mutate:  func(c *Config) { c.VariancePenalty = 1.5 },
			wantErr: "variance penalty",
		},
		{
			name:    "negative attendance",
			mutate:  func(c *Config) { c.MinAttendance = -0.1 },
			wantErr: "minimum attendance",
		},
		{
			name:   "attendance of exactly one is allowed",
			mutate: func(c *Config) { c.MinAttendance = 1.0 },
		},
		{
			name:    "zero slot limit",
			mutate:  func(c *Config) { c.MaxSlotResults = 0 },
			wantErr: "slot result limits",
		},
		{
			name:    "too-short default duration",
			mutate:  func(c *Config) { c.DefaultDuration = 5 * time.Minute },
			wantErr: "duration",
		},
		{
			name:    "unknown email provider",
			mutate:  func(c *Config) { c.EmailProvider = "pigeon" },
			wantErr: "invalid email provider",
		},
		{
			name: "twilio without credentials but SMS enabled",
			mutate: func(c *Config) {
				c.SMSProvider = "twilio"
				c.EnableSMSNotifications = true
			},
			wantErr: "Twilio configuration incomplete",
		},
		{
			name: "S3 without credentials",
			mutate: func(c *Config) {
				c.UseS3 = true
			},
			wantErr: "S3 configuration incomplete",
		},
		{
			name: "calendar import without credentials file",
			mutate: func(c *Config) {
				c.EnableCalendarImport = true
			},
			wantErr: "Google credentials",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestIsProduction(t *testing.T) {
	cfg := validConfig()
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for development config")
	}
	cfg.Environment = "production"
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for production config")
	}
}
