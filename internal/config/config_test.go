package config

import (
	"testing"
	"time"
)

func TestLoadInviteExpiryWindow(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expected    time.Duration
		shouldError bool
	}{
		{
			name:     "unset uses default",
			value:    "",
			expected: DefaultExpiryWindow,
		},
		{
			name:     "custom duration",
			value:    "48h",
			expected: 48 * time.Hour,
		},
		{
			name:     "minutes",
			value:    "10m",
			expected: 10 * time.Minute,
		},
		{
			name:        "not a duration",
			value:       "five minutes",
			shouldError: true,
		},
		{
			name:        "negative duration",
			value:       "-5m",
			shouldError: true,
		},
		{
			name:        "zero duration",
			value:       "0s",
			shouldError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("INVITE_EXPIRY_WINDOW", tt.value)

			cfg, err := Load()
			if tt.shouldError {
				if err == nil {
					t.Errorf("Expected error for value %q, but got none", tt.value)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error for value %q: %v", tt.value, err)
			}
			if cfg.InviteExpiryWindow != tt.expected {
				t.Errorf("For value %q, expected %v but got %v", tt.value, tt.expected, cfg.InviteExpiryWindow)
			}
		})
	}
}
