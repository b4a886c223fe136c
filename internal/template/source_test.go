package template

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestIsRemote(t *testing.T) {
	tests := map[string]bool{
		"https://example.com/t.yaml": true,
		"HTTP://example.com/t.yaml":  true,
		"ftp://example.com/t.yaml":   false,
		"./http/t.yaml":              false,
		"t.yaml":                     false,
	}
	for src, want := range tests {
		if got := IsRemote(src); got != want {
			t.Errorf("IsRemote(%q) = %v, want %v", src, got, want)
		}
	}
}

func TestSourceFetcher_Local(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "t.yaml")
	if err := os.WriteFile(path, []byte("workspaces: []\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	f := &SourceFetcher{}
	data, err := f.Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if string(data) != "workspaces: []\n" {
		t.Errorf("Fetch() = %q", data)
	}

	_, err = f.Fetch(context.Background(), filepath.Join(dir, "missing.yaml"))
	var fe *FetchError
	if !errors.As(err, &fe) || !strings.Contains(fe.Message, "not found") {
		t.Errorf("expected not-found FetchError, got %v", err)
	}
}

func TestSourceFetcher_Remote(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		switch r.URL.Path {
		case "/ok.yaml":
			w.Write([]byte("workspaces:\n  - general:\n      ecosystem: vue\n"))
		case "/blank.yaml":
			w.Write([]byte("  \n"))
		case "/slow.yaml":
			time.Sleep(200 * time.Millisecond)
			w.Write([]byte("late"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	f := &SourceFetcher{Client: srv.Client(), Timeout: 50 * time.Millisecond}

	data, err := f.Fetch(context.Background(), srv.URL+"/ok.yaml")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if !strings.Contains(string(data), "vue") {
		t.Errorf("Fetch() = %q", data)
	}
	if !strings.HasPrefix(gotUA, "stackboot") {
		t.Errorf("User-Agent = %q", gotUA)
	}

	tests := []struct {
		path       string
		wantStatus int
		wantText   string
	}{
		{"/missing.yaml", http.StatusNotFound, "Not Found"},
		{"/blank.yaml", 0, "empty response body"},
		{"/slow.yaml", 0, "timed out"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			_, err := f.Fetch(context.Background(), srv.URL+tt.path)
			var fe *FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected *FetchError, got %v", err)
			}
			if fe.StatusCode != tt.wantStatus {
				t.Errorf("StatusCode = %d, want %d", fe.StatusCode, tt.wantStatus)
			}
			if !strings.Contains(fe.Error(), tt.wantText) {
				t.Errorf("Error() = %q, want it to contain %q", fe.Error(), tt.wantText)
			}
		})
	}
}

type staticFetcher map[string]string

func (s staticFetcher) Fetch(_ context.Context, source string) ([]byte, error) {
	data, ok := s[source]
	if !ok {
		return nil, &FetchError{Source: source, Message: "template file not found"}
	}
	return []byte(data), nil
}

func TestLoad(t *testing.T) {
	fetcher := staticFetcher{
		"ok.yaml":      "workspaces:\n  - general:\n      ecosystem: dotnet\n",
		"schema.yaml":  "workspaces:\n  - general:\n      ecosystem: dotnet\n  - path: x\n",
		"unknown.yaml": "workspaces:\n  - general:\n      ecosystem: cobol\n",
		"ok.hcl":       "workspace {\n  general {\n    ecosystem = \"kotlin\"\n  }\n}\n",
		"numeric.yaml": "workspaces:\n  - general:\n      ecosystem: dotnet\n      ecosystemVersion: 8.0\n  - general:\n      ecosystem: springboot\n      ecosystemVersion: 21\n      projectName: 2048\n",
	}

	tpl, err := Load(context.Background(), "ok.yaml", fetcher)
	if err != nil || tpl.Workspaces[0].General.Ecosystem != DotNet {
		t.Fatalf("Load(ok.yaml) = %+v, %v", tpl, err)
	}
	tpl, err = Load(context.Background(), "ok.hcl", fetcher)
	if err != nil || tpl.Workspaces[0].General.Ecosystem != Kotlin {
		t.Fatalf("Load(ok.hcl) = %+v, %v", tpl, err)
	}

	tpl, err = Load(context.Background(), "numeric.yaml", fetcher)
	if err != nil {
		t.Fatalf("Load(numeric.yaml) error: %v", err)
	}
	if got := tpl.Workspaces[0].General.Version(); got != "8.0" {
		t.Errorf("workspace 0 version = %q, want 8.0", got)
	}
	if got := tpl.Workspaces[1].General.Version(); got != "21" {
		t.Errorf("workspace 1 version = %q, want 21", got)
	}
	if name := tpl.Workspaces[1].General.ProjectName; name == nil || *name != "2048" {
		t.Errorf("workspace 1 projectName = %v, want 2048", name)
	}

	_, err = Load(context.Background(), "schema.yaml", fetcher)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.WorkspaceIndex != 1 {
		t.Errorf("Load(schema.yaml) = %v, want ValidationError for workspace 1", err)
	}

	_, err = Load(context.Background(), "unknown.yaml", fetcher)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Errorf("Load(unknown.yaml) = %v, want *ParseError", err)
	}

	_, err = Load(context.Background(), "absent.yaml", fetcher)
	var fe *FetchError
	if !errors.As(err, &fe) {
		t.Errorf("Load(absent.yaml) = %v, want *FetchError", err)
	}
}
