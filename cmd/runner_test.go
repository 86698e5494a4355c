package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/compilations/internal/session"
	"github.com/desertthunder/compilations/internal/shared"
	tu "github.com/desertthunder/compilations/internal/testing"
	"github.com/urfave/cli/v3"
)

// run executes args against a fresh root command backed by runner.
func run(runner *Runner, args ...string) error {
	app := &cli.Command{
		Name:     "compilations",
		Flags:    rootFlags(),
		Commands: runner.register(),
	}
	return app.Run(context.Background(), append([]string{"compilations"}, args...))
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.client(config) != httpClient {
				t.Error("expected httpClient to be used")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			if runner := NewRunner(RunnerOpts{}); runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("builds client from config timeout", func(t *testing.T) {
			config := shared.DefaultConfig()
			client := NewRunner(RunnerOpts{}).client(config)

			if client.Timeout != config.HTTP.Timeout {
				t.Errorf("expected timeout %v, got %v", config.HTTP.Timeout, client.Timeout)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if output.String() != expected {
				t.Errorf("expected %q, got %q", expected, output.String())
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		commands := NewRunner(RunnerOpts{}).register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"serve", "config", "ref", "resolve"} {
			if !names[want] {
				t.Errorf("expected %s command to be registered", want)
			}
		}
	})
}

func TestConfigCommands(t *testing.T) {
	t.Run("init writes example once", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := run(runner, "--config", path, "config", "init"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected config file to exist: %v", err)
		}
		if err := run(runner, "--config", path, "config", "init"); err == nil {
			t.Error("expected error when config already exists")
		}
	})

	t.Run("check reports rules", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")
		if err := shared.CreateConfigFile(path); err != nil {
			t.Fatalf("failed to create config: %v", err)
		}
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := run(runner, "--config", path, "config", "check"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		result := output.String()
		for _, want := range []string{"Configuration is valid", "Rules: 2", "streamable.com", "127.0.0.1:8000"} {
			if !strings.Contains(result, want) {
				t.Errorf("expected %q in output, got %s", want, result)
			}
		}
	})

	t.Run("check missing file", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		err := run(runner, "--config", filepath.Join(t.TempDir(), "absent.toml"), "config", "check")
		if !errors.Is(err, shared.ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}
	})

	t.Run("check unknown handler", func(t *testing.T) {
		path := writeFile(t, "config.yaml", `
reddit:
  user: someone
  client_id: id
  client_secret: secret
rules:
  - domain: video.example
    handler: telepathy
`)
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := run(runner, "--config", path, "config", "check"); !errors.Is(err, shared.ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestRefCommands(t *testing.T) {
	const link = "https://video.example/post1?x=1&y=2"

	t.Run("encode then decode", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := run(runner, "ref", "encode", link); err != nil {
			t.Fatalf("encode failed: %v", err)
		}
		ref := strings.TrimSpace(output.String())
		if ref != shared.EncodeReference(link) {
			t.Errorf("unexpected reference %q", ref)
		}

		output.Reset()
		if err := run(runner, "ref", "decode", ref); err != nil {
			t.Fatalf("decode failed: %v", err)
		}
		if got := strings.TrimSpace(output.String()); got != link {
			t.Errorf("expected %q, got %q", link, got)
		}
	})

	t.Run("missing argument", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		if err := run(runner, "ref", "encode"); !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})

	t.Run("bad reference", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

		if err := run(runner, "ref", "decode", "!!not-base64!!"); !errors.Is(err, shared.ErrBadReference) {
			t.Errorf("expected ErrBadReference, got %v", err)
		}
	})
}

func TestResolveCommand(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><meta property="og:video" content="https://cdn.example/v.mp4"></head></html>`)
	}))
	defer page.Close()

	path := writeFile(t, "config.toml", `
[reddit]
user = "someone"
client_id = "id"
client_secret = "secret"

[[rules]]
domain = "127.0.0.1"
handler = "og_video"
`)

	t.Run("prints media url", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, HTTPClient: page.Client(), Logger: shared.NewLogger(&bytes.Buffer{})})

		if err := run(runner, "--config", path, "resolve", "--url", page.URL+"/post1"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := strings.TrimSpace(output.String()); got != "https://cdn.example/v.mp4" {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("json output from reference", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output, HTTPClient: page.Client(), Logger: shared.NewLogger(&bytes.Buffer{})})

		ref := shared.EncodeReference(page.URL + "/post1")
		if err := run(runner, "--config", path, "resolve", "--json", ref); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got := strings.TrimSpace(output.String()); got != `{"url":"https://cdn.example/v.mp4"}` {
			t.Errorf("unexpected output %q", got)
		}
	})

	t.Run("no matching rule", func(t *testing.T) {
		other := writeFile(t, "config.toml", `
[[rules]]
domain = "video.example"
`)
		runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, HTTPClient: page.Client(), Logger: shared.NewLogger(&bytes.Buffer{})})

		err := run(runner, "--config", other, "resolve", "--url", page.URL+"/post1")
		if !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestServeWiring(t *testing.T) {
	t.Run("serverOptions builds services", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})
		config := shared.DefaultConfig()

		opts, err := runner.serverOptions(config, session.NewMemoryStore())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if opts.Auth == nil || opts.Library == nil || opts.Resolver == nil || opts.Sessions == nil {
			t.Errorf("expected every dependency to be wired: %+v", opts)
		}
		if opts.Config.Addr() != "127.0.0.1:8000" {
			t.Errorf("unexpected addr %s", opts.Config.Addr())
		}
	})

	t.Run("serverOptions requires credentials", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})
		config := shared.DefaultConfig()
		config.Reddit.ClientID = ""

		if _, err := runner.serverOptions(config, session.NewMemoryStore()); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("memory session store", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{Logger: shared.NewLogger(&bytes.Buffer{})})
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		store, closeStore, err := runner.sessionStore(ctx, shared.SessionConfig{Backend: shared.SessionBackendMemory})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		defer closeStore()

		if _, ok := store.(*session.MemoryStore); !ok {
			t.Errorf("expected memory store, got %T", store)
		}
	})

	t.Run("splitAddr", func(t *testing.T) {
		tests := []struct {
			addr     string
			wantHost string
			wantPort int
			wantErr  bool
		}{
			{addr: "0.0.0.0:9000", wantHost: "0.0.0.0", wantPort: 9000},
			{addr: ":8080", wantHost: "", wantPort: 8080},
			{addr: "localhost", wantErr: true},
			{addr: "localhost:http", wantErr: true},
			{addr: "localhost:70000", wantErr: true},
		}

		for _, tt := range tests {
			host, port, err := splitAddr(tt.addr)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Errorf("%s: expected ErrInvalidArgument, got %v", tt.addr, err)
				}
				continue
			}
			if err != nil || host != tt.wantHost || port != tt.wantPort {
				t.Errorf("%s: got %q %d %v", tt.addr, host, port, err)
			}
		}
	})
}
