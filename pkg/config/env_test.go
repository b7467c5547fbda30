package config

import (
	"os"
	"testing"
)

func TestGetEnv(t *testing.T) {
	// Test with existing env var
	os.Setenv("TEST_GET_ENV_VAR", "test_value")
	defer os.Unsetenv("TEST_GET_ENV_VAR")

	got := GetEnv("TEST_GET_ENV_VAR", "default")
	if got != "test_value" {
		t.Errorf("GetEnv() = %v, want %v", got, "test_value")
	}

	// Test with non-existing env var
	got = GetEnv("NON_EXISTING_VAR", "default_value")
	if got != "default_value" {
		t.Errorf("GetEnv() = %v, want %v", got, "default_value")
	}
}

func TestGetEnvironment(t *testing.T) {
	// Save original and restore after test
	original := os.Getenv("CALLREVIEW_SERVER_ENVIRONMENT")
	defer func() {
		if original != "" {
			os.Setenv("CALLREVIEW_SERVER_ENVIRONMENT", original)
		} else {
			os.Unsetenv("CALLREVIEW_SERVER_ENVIRONMENT")
		}
	}()

	tests := []struct {
		envValue string
		want     string
	}{
		{"development", "development"},
		{"STAGING", "staging"},
		{"Production", "production"},
		{"", "development"}, // default
	}

	for _, tt := range tests {
		if tt.envValue != "" {
			os.Setenv("CALLREVIEW_SERVER_ENVIRONMENT", tt.envValue)
		} else {
			os.Unsetenv("CALLREVIEW_SERVER_ENVIRONMENT")
		}

		got := GetEnvironment()
		if got != tt.want {
			t.Errorf("GetEnvironment() with %q = %v, want %v", tt.envValue, got, tt.want)
		}
	}
}

func TestIsProductionLike(t *testing.T) {
	tests := map[string]bool{
		EnvProduction:  true,
		EnvStaging:     true,
		EnvDevelopment: false,
		"test":         false,
	}
	for env, want := range tests {
		if got := IsProductionLike(env); got != want {
			t.Errorf("IsProductionLike(%q) = %v, want %v", env, got, want)
		}
	}
}
