package artwork

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		for y := range h {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 128, A: 255}) //nolint:gosec // test pattern
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

type posterServer struct {
	*httptest.Server
	hits    atomic.Int32
	release chan struct{} // when non-nil, handlers block until closed
}

func newPosterServer(t *testing.T, body []byte) *posterServer {
	t.Helper()
	s := &posterServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.hits.Add(1)
		if s.release != nil {
			select {
			case <-s.release:
			case <-r.Context().Done():
				return
			}
		}
		if r.URL.Path == "/missing.jpg" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(body)
	}))
	t.Cleanup(s.Close)
	return s
}

func newTestLoader(t *testing.T, cfg Config) (*Loader, chan Image) {
	t.Helper()
	loaded := make(chan Image, 8)
	cfg.RetryMax = 1
	cfg.RequestsPerSecond = 1000
	l, err := New(cfg, func(img Image) { loaded <- img })
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, loaded
}

func waitLoaded(t *testing.T, ch chan Image) Image {
	t.Helper()
	select {
	case img := <-ch:
		return img
	case <-time.After(5 * time.Second):
		t.Fatal("artwork not loaded")
		return Image{}
	}
}

func TestLoader_ShowLoadsThumbnail(t *testing.T) {
	srv := newPosterServer(t, pngBytes(t, 400, 600))
	l, loaded := newTestLoader(t, Config{Width: 40, Height: 60})

	src := srv.URL + "/poster.png"
	l.Show(src)

	img := waitLoaded(t, loaded)
	assert.Equal(t, src, img.URL)
	assert.Equal(t, "image/png", img.MIME)
	assert.Equal(t, 40, img.Thumb.Bounds().Dx())
	assert.Equal(t, 60, img.Thumb.Bounds().Dy())

	got, ok := l.Get(src)
	require.True(t, ok)
	assert.Equal(t, img.URL, got.URL)
}

func TestLoader_ShowTwiceFetchesOnce(t *testing.T) {
	srv := newPosterServer(t, pngBytes(t, 10, 10))
	l, loaded := newTestLoader(t, Config{})

	src := srv.URL + "/poster.png"
	l.Show(src)
	l.Show(src)
	waitLoaded(t, loaded)
	l.Show(src)

	assert.Equal(t, int32(1), srv.hits.Load())
	assert.Equal(t, 1, l.Loaded())
}

func TestLoader_HideEvicts(t *testing.T) {
	srv := newPosterServer(t, pngBytes(t, 10, 10))
	l, loaded := newTestLoader(t, Config{})

	src := srv.URL + "/poster.png"
	l.Show(src)
	waitLoaded(t, loaded)

	l.Hide(src)
	_, ok := l.Get(src)
	assert.False(t, ok)
	assert.Zero(t, l.Loaded())
}

func TestLoader_HideCancelsInflight(t *testing.T) {
	srv := newPosterServer(t, pngBytes(t, 10, 10))
	srv.release = make(chan struct{})
	l, loaded := newTestLoader(t, Config{})

	src := srv.URL + "/poster.png"
	l.Show(src)
	require.Eventually(t, func() bool { return srv.hits.Load() == 1 }, 5*time.Second, 5*time.Millisecond)

	l.Hide(src)
	close(srv.release)

	select {
	case img := <-loaded:
		t.Fatalf("hidden artwork delivered: %s", img.URL)
	case <-time.After(100 * time.Millisecond):
	}
	_, ok := l.Get(src)
	assert.False(t, ok)
}

func TestLoader_RejectsNonImage(t *testing.T) {
	srv := newPosterServer(t, []byte("<html>not a poster</html>"))
	l, _ := newTestLoader(t, Config{})

	_, err := l.fetch(t.Context(), srv.URL+"/poster.png")
	require.ErrorIs(t, err, ErrNotImage)
}

func TestLoader_HTTPError(t *testing.T) {
	srv := newPosterServer(t, nil)
	l, _ := newTestLoader(t, Config{})

	_, err := l.fetch(t.Context(), srv.URL+"/missing.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestLoader_UnsupportedScheme(t *testing.T) {
	l, _ := newTestLoader(t, Config{})

	_, err := l.fetch(t.Context(), "ftp://example.com/poster.jpg")
	require.Error(t, err)
}

func TestLoader_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "poster.png")
	require.NoError(t, os.WriteFile(path, pngBytes(t, 20, 20), 0o600))
	l, _ := newTestLoader(t, Config{Width: 10, Height: 10})

	img, err := l.fetch(t.Context(), "file://"+path)
	require.NoError(t, err)
	assert.Equal(t, 10, img.Thumb.Bounds().Dx())
}

func TestLoader_UsesDiskCache(t *testing.T) {
	srv := newPosterServer(t, pngBytes(t, 50, 50))
	dir := t.TempDir()
	l, _ := newTestLoader(t, Config{CacheDir: dir, Width: 25, Height: 25})

	src := srv.URL + "/poster.png"
	_, err := l.fetch(t.Context(), src)
	require.NoError(t, err)
	_, err = l.fetch(t.Context(), src)
	require.NoError(t, err)

	assert.Equal(t, int32(1), srv.hits.Load())
	assert.NotNil(t, l.cache.Get(src, 25, 25))
}

func TestLoader_ShowAfterCloseIgnored(t *testing.T) {
	srv := newPosterServer(t, pngBytes(t, 10, 10))
	l, _ := newTestLoader(t, Config{})
	require.NoError(t, l.Close())

	l.Show(srv.URL + "/poster.png")
	assert.Zero(t, srv.hits.Load())
}
