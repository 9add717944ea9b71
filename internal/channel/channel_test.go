package channel

import "testing"

func TestStatus(t *testing.T) {
	tests := []struct {
		status   Status
		name     string
		terminal bool
	}{
		{StatusConnecting, "connecting", false},
		{StatusActive, "active", false},
		{StatusError, "error", true},
		{StatusClosed, "closed", true},
		{Status(9), "status(9)", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.status.Terminal(); got != tt.terminal {
				t.Errorf("Terminal() = %v, want %v", got, tt.terminal)
			}
		})
	}
}
