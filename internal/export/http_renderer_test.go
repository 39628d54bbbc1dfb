package export

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"meetapi/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRenderer_Render(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var req renderRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "Weekly sync", req.Title)
			assert.Equal(t, "a summary", req.Content)
			assert.Equal(t, "pdf", req.Format)

			w.Header().Set("Content-Type", "application/pdf")
			w.Write([]byte("%PDF-1.7"))
		}))
		defer srv.Close()

		r, err := NewHTTPRenderer(config.ExportConfig{RenderURL: srv.URL, TimeoutSec: 5})
		require.NoError(t, err)

		doc, err := r.Render(ctx, "Weekly sync", "a summary", FormatPDF)

		assert.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.7"), doc.Content)
		assert.Equal(t, "application/pdf", doc.ContentType)
	})

	t.Run("upstream error surfaces status and body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "template broken", http.StatusInternalServerError)
		}))
		defer srv.Close()

		r, err := NewHTTPRenderer(config.ExportConfig{RenderURL: srv.URL, TimeoutSec: 5})
		require.NoError(t, err)

		_, err = r.Render(ctx, "Weekly sync", "a summary", FormatDocx)

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 500")
		assert.Contains(t, err.Error(), "template broken")
	})

	t.Run("missing url rejected at construction", func(t *testing.T) {
		_, err := NewHTTPRenderer(config.ExportConfig{})
		assert.Error(t, err)
	})
}

func TestFormat(t *testing.T) {
	assert.True(t, FormatPDF.Valid())
	assert.True(t, FormatDocx.Valid())
	assert.False(t, Format("csv").Valid())
	assert.Equal(t, "pdf", FormatPDF.Extension())
}
