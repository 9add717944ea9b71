package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/courtside-app/courtside/internal/logging"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestWatch_NoConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	var out lockedBuffer
	Watch(logging.NewWriterLogger(&out, logging.LevelDebug))

	if out.String() != "" {
		t.Errorf("Watch without a config file logged %q", out.String())
	}
}

func TestWatch_LogsChanges(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	SetDefaults()

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("realtime:\n  max_retries: 2\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	viper.SetConfigFile(path)
	if err := viper.ReadInConfig(); err != nil {
		t.Fatalf("ReadInConfig failed: %v", err)
	}

	var out lockedBuffer
	Watch(logging.NewWriterLogger(&out, logging.LevelDebug))

	if err := os.WriteFile(path, []byte("realtime:\n  max_retries: 99\n"), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(out.String(), "now invalid") {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if !strings.Contains(out.String(), "now invalid") {
		t.Errorf("log = %q, want an invalid-config warning", out.String())
	}
}
