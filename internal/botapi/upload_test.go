package botapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, name string, size int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, bytes.Repeat([]byte("a"), size), 0644))
	return path
}

func TestKindForPath(t *testing.T) {
	assert.Equal(t, FilePDF, KindForPath("menu.pdf"))
	assert.Equal(t, FilePDF, KindForPath("MENU.PDF"))
	assert.Equal(t, FileImage, KindForPath("logo.png"))
	assert.Equal(t, FileImage, KindForPath("photo.jpeg"))
}

func TestUploadFile(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload-file", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(10<<20))

		assert.Equal(t, "pdf", r.FormValue("type"))
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer func() { _ = file.Close() }()
		assert.Equal(t, "menu.pdf", header.Filename)

		_ = json.NewEncoder(w).Encode(map[string]string{"file_url": "https://cdn.example.com/menu.pdf"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	path := writeTempFile(t, "menu.pdf", 2048)

	var fractions []float64
	url, err := c.UploadFile(context.Background(), path, FilePDF, DefaultUploadMax, func(f float64) {
		fractions = append(fractions, f)
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/menu.pdf", url)

	require.NotEmpty(t, fractions, "progress must be reported")
	last := fractions[len(fractions)-1]
	assert.InDelta(t, 1.0, last, 0.001, "final progress should reach 100%%")
	for i := 1; i < len(fractions); i++ {
		assert.GreaterOrEqual(t, fractions[i], fractions[i-1], "progress must be monotonic")
	}
}

func TestUploadFileRejectsOversize(t *testing.T) {
	var hit bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hit = true
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	path := writeTempFile(t, "big.pdf", 3000)

	_, err := c.UploadFile(context.Background(), path, FilePDF, 1024, nil)
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, http.StatusRequestEntityTooLarge, ae.Status)
	assert.False(t, hit, "oversize file must be rejected before any request is made")
}

func TestUploadFileServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "Formato no soportado"})
	}))
	defer srv.Close()

	c := New(srv.URL, "tok")
	path := writeTempFile(t, "odd.bin", 100)

	_, err := c.UploadFile(context.Background(), path, FileImage, DefaultUploadMax, nil)
	var ae *APIError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "Formato no soportado", ae.Message)
}
