package config

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"
)

const (
	levelInfoJSON  = `{"logging": {"level": "info"}, "world": {"enabled": true}, "mcp": {"enabled": true}}`
	levelDebugJSON = `{"logging": {"level": "debug"}, "world": {"enabled": true}, "mcp": {"enabled": true}}`
)

func TestReloadPublishes(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", levelInfoJSON)
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ch := m.Subscribe(1)

	if err := os.WriteFile(path, []byte(levelDebugJSON), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	m.reload(context.Background())

	select {
	case cfg := <-ch:
		if cfg.Logging.Level != "debug" {
			t.Fatalf("published level = %q, want debug", cfg.Logging.Level)
		}
	default:
		t.Fatal("no config published")
	}
	if got := m.Get().Logging.Level; got != "debug" {
		t.Fatalf("Get level = %q, want debug", got)
	}
}

func TestReloadSkipsUnchangedContent(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", levelInfoJSON)
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ch := m.Subscribe(1)

	// Touch without changing content, as editors do.
	if err := os.WriteFile(path, []byte(levelInfoJSON), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	m.reload(context.Background())

	select {
	case <-ch:
		t.Fatal("unchanged content was republished")
	default:
	}
}

func TestReloadRejectedByValidator(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", levelInfoJSON)
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	m.SetValidator(func(context.Context, *Config) error {
		return errors.New("rejected")
	})
	ch := m.Subscribe(1)

	if err := os.WriteFile(path, []byte(levelDebugJSON), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	m.reload(context.Background())

	select {
	case <-ch:
		t.Fatal("rejected config was published")
	default:
	}
	if got := m.Get().Logging.Level; got != "info" {
		t.Fatalf("Get level = %q, want the previous config kept", got)
	}
}

func TestReloadKeepsOldOnParseError(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", levelInfoJSON)
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ch := m.Subscribe(1)

	if err := os.WriteFile(path, []byte(`{"logging": {`), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	m.reload(context.Background())

	select {
	case <-ch:
		t.Fatal("broken config was published")
	default:
	}
	if got := m.Get().Logging.Level; got != "info" {
		t.Fatalf("Get level = %q, want the previous config kept", got)
	}
}

func TestWatchDeliversSettledChange(t *testing.T) {
	t.Parallel()
	path := writeConfig(t, "config.json", levelInfoJSON)
	m := NewManager(path)
	if _, err := m.Load(); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ch := m.Subscribe(1)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- m.Watch(ctx) }()

	// Rewrite until the watcher (which may still be arming) picks one up.
	deadline := time.After(10 * time.Second)
	tick := time.NewTicker(300 * time.Millisecond)
	defer tick.Stop()
	var got *Config
	for got == nil {
		select {
		case got = <-ch:
		case <-tick.C:
			if err := os.WriteFile(path, []byte(levelDebugJSON), 0o600); err != nil {
				t.Fatalf("rewrite config: %v", err)
			}
		case <-deadline:
			t.Fatal("no reload delivered")
		}
	}
	if got.Logging.Level != "debug" {
		t.Fatalf("published level = %q, want debug", got.Logging.Level)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch = %v, want nil after cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
