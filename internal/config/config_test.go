package config

import (
	"testing"
)

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		shouldSet    bool
		want         string
	}{
		{
			name:         "returns environment variable when set",
			key:          "TEST_VAR",
			defaultValue: "default",
			envValue:     "custom",
			shouldSet:    true,
			want:         "custom",
		},
		{
			name:         "returns default when environment variable not set",
			key:          "TEST_VAR_MISSING",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    false,
			want:         "default",
		},
		{
			name:         "returns default when environment variable is empty string",
			key:          "TEST_VAR_EMPTY",
			defaultValue: "default",
			envValue:     "",
			shouldSet:    true,
			want:         "default",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsInt(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue int
		envValue     string
		shouldSet    bool
		want         int
	}{
		{
			name:         "parses integer environment variable",
			key:          "TEST_INT",
			defaultValue: 10,
			envValue:     "42",
			shouldSet:    true,
			want:         42,
		},
		{
			name:         "returns default when not set",
			key:          "TEST_INT_MISSING",
			defaultValue: 10,
			shouldSet:    false,
			want:         10,
		},
		{
			name:         "returns default when not an integer",
			key:          "TEST_INT_BAD",
			defaultValue: 10,
			envValue:     "not-a-number",
			shouldSet:    true,
			want:         10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsInt(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsInt() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGetEnvAsBool(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue bool
		envValue     string
		shouldSet    bool
		want         bool
	}{
		{
			name:         "parses true",
			key:          "TEST_BOOL",
			defaultValue: false,
			envValue:     "true",
			shouldSet:    true,
			want:         true,
		},
		{
			name:         "returns default when not set",
			key:          "TEST_BOOL_MISSING",
			defaultValue: true,
			shouldSet:    false,
			want:         true,
		},
		{
			name:         "returns default when unparsable",
			key:          "TEST_BOOL_BAD",
			defaultValue: false,
			envValue:     "yes please",
			shouldSet:    true,
			want:         false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.envValue)
			}

			got := getEnvAsBool(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvAsBool() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	t.Run("fails without JWT_SECRET", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() expected error when JWT_SECRET is unset")
		}
	})

	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if cfg.Port != "8080" {
			t.Errorf("Port = %v, want 8080", cfg.Port)
		}
		if cfg.EmbeddingURL != "" {
			t.Errorf("EmbeddingURL = %v, want empty", cfg.EmbeddingURL)
		}
		if cfg.RiverEnabled {
			t.Error("RiverEnabled = true, want false")
		}
		if cfg.RiverWorkers != 2 {
			t.Errorf("RiverWorkers = %v, want 2", cfg.RiverWorkers)
		}
		if !cfg.MetricsEnabled {
			t.Error("MetricsEnabled = false, want true")
		}
	})

	t.Run("metrics can be disabled", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("METRICS_ENABLED", "false")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load() unexpected error: %v", err)
		}
		if cfg.MetricsEnabled {
			t.Error("MetricsEnabled = true, want false")
		}
	})

	t.Run("rejects non-positive worker counts", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret")
		t.Setenv("RIVER_WORKERS", "0")

		_, err := Load()
		if err == nil {
			t.Fatal("Load() expected error when RIVER_WORKERS is 0")
		}
	})
}
