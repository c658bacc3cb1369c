package config

import (
	"os"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("CTS_BASE_URL")
	os.Unsetenv("TARGET_LANGUAGE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.TargetLanguage != "en-GB" {
		t.Errorf("expected default target language en-GB, got %s", cfg.TargetLanguage)
	}
	if cfg.CTSTimeoutMS != 5000 {
		t.Errorf("expected default CTS timeout 5000ms, got %d", cfg.CTSTimeoutMS)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected default log level info, got %s", cfg.LogLevel)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	os.Setenv("CTS_BASE_URL", "http://cts.example.org")
	os.Setenv("TARGET_LANGUAGE", "de-AT")
	defer os.Unsetenv("CTS_BASE_URL")
	defer os.Unsetenv("TARGET_LANGUAGE")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.CTSBaseURL != "http://cts.example.org" {
		t.Errorf("expected CTS_BASE_URL to be set, got %s", cfg.CTSBaseURL)
	}
	if cfg.TargetLanguage != "de-AT" {
		t.Errorf("expected target language de-AT, got %s", cfg.TargetLanguage)
	}
}

func TestValidate(t *testing.T) {
	c := &Config{LogLevel: "info", TargetLanguage: "en-GB", CTSTimeoutMS: 100}
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	c.CTSTimeoutMS = 0
	if err := c.Validate(); err == nil {
		t.Error("expected error for non-positive timeout")
	}

	c.CTSTimeoutMS = 100
	c.LogLevel = "loud"
	if err := c.Validate(); err == nil {
		t.Error("expected error for unknown log level")
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}
