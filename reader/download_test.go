package reader

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDriveDownloadURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"https://drive.google.com/file/d/1AbC_d-9/view?usp=sharing", "https://drive.google.com/uc?export=download&id=1AbC_d-9"},
		{"https://drive.google.com/open?id=XYZ", "https://drive.google.com/uc?export=download&id=XYZ"},
		{"https://example.com/data.csv", "https://example.com/data.csv"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, DriveDownloadURL(tt.in))
	}
}

func TestDownload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/files/nominations.csv":
			_, _ = w.Write([]byte("a,b\n1,2\n"))
		case "/export":
			w.Header().Set("Content-Disposition", `attachment; filename="../report.xlsx"`)
			_, _ = w.Write([]byte("xlsx bytes"))
		case "/typed":
			w.Header().Set("Content-Type", "application/vnd.apache.parquet")
			_, _ = w.Write([]byte("parquet bytes"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	tests := []struct {
		path string
		want string
	}{
		{"/files/nominations.csv", "nominations.csv"},
		{"/export", "report.xlsx"},
		{"/typed", "download.parquet"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			dir := t.TempDir()
			got, err := Download(context.Background(), srv.URL+tt.path, dir, WithHTTPClient(srv.Client()))
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, tt.want), got)

			_, err = os.Stat(got)
			assert.NoError(t, err)
		})
	}

	_, err := Download(context.Background(), srv.URL+"/missing", t.TempDir(), WithHTTPClient(srv.Client()))
	assert.Error(t, err)

	_, err = Download(context.Background(), "ftp://example.com/data.csv", t.TempDir())
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
