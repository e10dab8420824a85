package cli

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/modelcraft/internal/adapters/backend"
	"github.com/emiliopalmerini/modelcraft/internal/workflow"
)

// testModelService starts a fake model service that accepts any dataset and
// answers with fixed columns, a classification score and a class label.
func testModelService(t *testing.T) *httptest.Server {
	t.Helper()

	r := chi.NewRouter()
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"message": "ok"})
	})
	r.Post("/upload", func(w http.ResponseWriter, r *http.Request) {
		if _, _, err := r.FormFile("file"); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		writeJSON(w, map[string]any{"columns": []string{"sepal_length", "sepal_width", "species"}})
	})
	r.Post("/train", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{
			"accuracy": 0.9533,
			"features": []string{"sepal_length", "sepal_width"},
		})
	})
	r.Post("/predict", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"prediction": "setosa"})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func testController(t *testing.T, srv *httptest.Server) *workflow.Controller {
	t.Helper()
	client, err := backend.NewClient(backend.Config{BaseURL: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, err)
	return workflow.NewController(client)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// isolateEnv points every MODELCRAFT setting at test-local state.
func isolateEnv(t *testing.T, backendURL string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	t.Setenv("MODELCRAFT_BACKEND_URL", backendURL)
	t.Setenv("MODELCRAFT_BACKEND_TIMEOUT", "5s")
	t.Setenv("MODELCRAFT_JOURNAL_ENABLED", "true")
	t.Setenv("MODELCRAFT_DATABASE_URL", "")
	os.Unsetenv("MODELCRAFT_DATABASE_URL")
	t.Setenv("MODELCRAFT_OTEL_ENABLED", "false")
	t.Setenv("MODELCRAFT_LOG_LEVEL", "debug")
	return dir
}
