package panel

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHandlerServesRoot(t *testing.T) {
	w := get(t, Handler(""), "/")

	if w.Code != http.StatusOK {
		t.Errorf("GET /: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "<!DOCTYPE html>") {
		t.Error("GET /: response doesn't contain HTML doctype")
	}
	if got := w.Header().Get("Cache-Control"); got != "no-cache, must-revalidate" {
		t.Errorf("Cache-Control = %q", got)
	}
}

func TestHandlerServesStaticAssets(t *testing.T) {
	tests := []struct {
		path        string
		contentType string
	}{
		{"/static/app.js", "javascript"},
		{"/static/style.css", "text/css"},
	}

	h := Handler("")
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := get(t, h, tt.path)
			if w.Code != http.StatusOK {
				t.Fatalf("GET %s: got status %d, want 200", tt.path, w.Code)
			}
			if w.Body.Len() == 0 {
				t.Errorf("GET %s: empty response body", tt.path)
			}
			if ct := w.Header().Get("Content-Type"); !strings.Contains(ct, tt.contentType) {
				t.Errorf("GET %s: Content-Type = %q, want %s", tt.path, ct, tt.contentType)
			}
		})
	}
}

func TestHandlerUsesLegacyEndpoints(t *testing.T) {
	w := get(t, Handler(""), "/static/app.js")
	body := w.Body.String()

	for _, endpoint := range []string{"/get_allowed_commands", "/get_variables", "/execute"} {
		if !strings.Contains(body, endpoint) {
			t.Errorf("app.js does not call %s", endpoint)
		}
	}
}

func TestHandlerUnknownPath(t *testing.T) {
	w := get(t, Handler(""), "/some/deep/route")

	if w.Code != http.StatusNotFound {
		t.Errorf("GET /some/deep/route: got status %d, want 404", w.Code)
	}
}

func TestHandlerFilesystemMode(t *testing.T) {
	dir := t.TempDir()
	indexContent := `<!DOCTYPE html><html><body>filesystem panel</body></html>`
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte(indexContent), 0644); err != nil {
		t.Fatal(err)
	}

	w := get(t, Handler(dir), "/")

	if w.Code != http.StatusOK {
		t.Errorf("filesystem GET /: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "filesystem panel") {
		t.Errorf("filesystem GET /: expected filesystem content, got %q", w.Body.String())
	}
}

func TestHandlerInvalidDirFallsBackToEmbed(t *testing.T) {
	w := get(t, Handler("/nonexistent/dir/that/does/not/exist"), "/")

	if w.Code != http.StatusOK {
		t.Errorf("invalid dir GET /: got status %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Looking Glass") {
		t.Error("invalid dir: didn't fall back to embedded index.html")
	}
}
