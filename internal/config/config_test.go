package config

import (
	"bytes"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/navcore/internal/errors"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Routes.NotFoundView != DefaultNotFoundView {
		t.Errorf("Routes.NotFoundView = %q", cfg.Routes.NotFoundView)
	}
	if cfg.Nav.MaxRedirects != 8 {
		t.Errorf("Nav.MaxRedirects = %d", cfg.Nav.MaxRedirects)
	}
	if cfg.Server.Address != DefaultAddress {
		t.Errorf("Server.Address = %q", cfg.Server.Address)
	}
	if cfg.Bridge.HelloTimeout != 5*time.Second || cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("timeouts = %v, %v", cfg.Bridge.HelloTimeout, cfg.Server.ShutdownTimeout)
	}
	if cfg.Auth.Role != "guest" || cfg.I18n.Lang != "en" {
		t.Errorf("auth/i18n = %+v %+v", cfg.Auth, cfg.I18n)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadTOMLFile(t *testing.T) {
	path := writeFile(t, "navcore.toml", `
[routes]
manifest = "routes.toml"
base = "/console"

[nav]
max_redirects = 3

[server]
allowed_origins = ["https://console.example.com"]

[bridge]
hello_timeout = "2s"

[log]
format = "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q", cfg.Path())
	}
	if cfg.Routes.Manifest != "routes.toml" || cfg.Routes.Base != "/console" {
		t.Errorf("Routes = %+v", cfg.Routes)
	}
	if cfg.Nav.MaxRedirects != 3 {
		t.Errorf("Nav.MaxRedirects = %d", cfg.Nav.MaxRedirects)
	}
	if !reflect.DeepEqual(cfg.Server.AllowedOrigins, []string{"https://console.example.com"}) {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
	if cfg.Bridge.HelloTimeout != 2*time.Second {
		t.Errorf("HelloTimeout = %v", cfg.Bridge.HelloTimeout)
	}
	if cfg.Log.Format != "json" || cfg.Log.Level != "info" {
		t.Errorf("Log = %+v", cfg.Log)
	}
}

func TestLoadJSONFile(t *testing.T) {
	path := writeFile(t, "navcore.json", `{"auth": {"role": "admin"}, "i18n": {"lang": "zh"}}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Auth.Role != "admin" || cfg.I18n.Lang != "zh" {
		t.Errorf("cfg = %+v %+v", cfg.Auth, cfg.I18n)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeFile(t, "navcore.toml", "[nav]\nmax_redirects = 3\n")
	t.Setenv("NAVCORE_NAV_MAX_REDIRECTS", "5")
	t.Setenv("NAVCORE_ROUTES_NOT_FOUND_VIEW", "Missing")
	t.Setenv("NAVCORE_SERVER_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Nav.MaxRedirects != 5 {
		t.Errorf("env should beat file: MaxRedirects = %d", cfg.Nav.MaxRedirects)
	}
	if cfg.Routes.NotFoundView != "Missing" {
		t.Errorf("NotFoundView = %q", cfg.Routes.NotFoundView)
	}
	if len(cfg.Server.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadConfigEnvPath(t *testing.T) {
	path := writeFile(t, "custom.toml", "[log]\nlevel = \"debug\"\n")
	t.Setenv("NAVCORE_CONFIG", path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoadWithoutFile(t *testing.T) {
	wd, _ := os.Getwd()
	t.Cleanup(func() { os.Chdir(wd) })
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("missing implicit config should not fail: %v", err)
	}
	if cfg.Path() != "" {
		t.Errorf("Path() = %q", cfg.Path())
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{"missing explicit file", filepath.Join(t.TempDir(), "nope.toml")},
		{"malformed file", writeFile(t, "bad.toml", "[routes\nbase=")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(tt.path)
			var ne *errors.NavError
			if !stderrors.As(err, &ne) || ne.Code != errors.CodeConfig {
				t.Errorf("error = %v, want N005", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Routes.NotFoundView = ""
	cfg.Routes.Base = "console"
	cfg.Nav.MaxRedirects = -1
	cfg.Bridge.Rate = 0
	cfg.Bridge.Burst = 0
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Auth.Role = "root"
	cfg.I18n.Lang = "not a tag!"

	err := cfg.Validate()
	var ne *errors.NavError
	if !stderrors.As(err, &ne) || ne.Code != errors.CodeConfig {
		t.Fatalf("Validate error = %v", err)
	}
	for _, key := range []string{
		"routes.not_found_view", "routes.base", "nav.max_redirects",
		"bridge.rate", "bridge.burst", "log.level", "log.format",
		"auth.role", "i18n.lang",
	} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("Validate error does not mention %s", key)
		}
	}
}

func TestValidateS3Region(t *testing.T) {
	cfg := Default()
	cfg.Routes.Manifest = "s3://bucket/routes.json"
	cfg.S3.Region = ""
	if err := cfg.Validate(); err == nil || !strings.Contains(err.Error(), "s3.region") {
		t.Errorf("Validate error = %v", err)
	}
}

func TestLogger(t *testing.T) {
	cfg := Default()
	cfg.Log.Format = "json"
	cfg.Log.Level = "warn"

	var buf bytes.Buffer
	logger := cfg.Logger(&buf)
	logger.Info("hidden")
	logger.Warn("shown", "path", "/x")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Error("info record should be filtered at warn level")
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"path":"/x"`) {
		t.Errorf("json output = %q", out)
	}
}
