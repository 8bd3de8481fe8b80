// Package artwork loads poster thumbnails for media rows as they scroll
// into view and drops them when they scroll out.
package artwork

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"  // GIF decoder for posters
	_ "image/jpeg" // JPEG decoder for posters
	"image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/h2non/filetype"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/llehouerou/marquee/internal/errmsg"
	"github.com/llehouerou/marquee/internal/viewport"
)

const (
	maxImageBytes = 16 << 20
	sniffLen      = 261
	fetchTimeout  = 20 * time.Second
)

// ErrNotImage is returned when a source does not hold a decodable image.
var ErrNotImage = errors.New("not an image")

// Config holds loader settings.
type Config struct {
	CacheDir          string  // empty disables the disk cache
	MaxCacheBytes     int64   // disk cache bound, 0 for unbounded
	MaxConcurrent     int     // concurrent fetches (default 4)
	RequestsPerSecond float64 // fetch start rate (default 8)
	Width, Height     uint    // thumbnail bounds in pixels (default 160x240)
	RetryMax          int     // HTTP retries (default 2)
	HTTPClient        *http.Client
	Logger            zerolog.Logger
}

// Image is a loaded thumbnail.
type Image struct {
	URL   string
	Thumb image.Image
	PNG   []byte
	MIME  string // of the source
}

// Loader fetches thumbnails for shown keys. It implements viewport.Loader
// with source URLs as keys.
type Loader struct {
	cfg     Config
	cache   *Cache
	client  *retryablehttp.Client
	limiter *rate.Limiter
	sem     chan struct{}
	onLoad  func(Image)
	log     zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
	images   map[string]Image
}

var _ viewport.Loader[string] = (*Loader)(nil)

// New creates a Loader. onLoad is called from a worker goroutine for every
// thumbnail that finished loading while its key was still shown.
func New(cfg Config, onLoad func(Image)) (*Loader, error) {
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 4
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 8
	}
	if cfg.Width == 0 {
		cfg.Width = 160
	}
	if cfg.Height == 0 {
		cfg.Height = 240
	}
	if cfg.RetryMax <= 0 {
		cfg.RetryMax = 2
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: fetchTimeout}
	}
	if onLoad == nil {
		onLoad = func(Image) {}
	}

	var cache *Cache
	if cfg.CacheDir != "" {
		c, err := NewCache(cfg.CacheDir, cfg.MaxCacheBytes)
		if err != nil {
			return nil, errors.Wrap(err, "create artwork cache")
		}
		cache = c
	}

	client := retryablehttp.NewClient()
	client.RetryMax = cfg.RetryMax
	client.Logger = nil
	client.HTTPClient = cfg.HTTPClient

	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		cfg:      cfg,
		cache:    cache,
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.MaxConcurrent),
		sem:      make(chan struct{}, cfg.MaxConcurrent),
		onLoad:   onLoad,
		log:      cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]context.CancelFunc),
		images:   make(map[string]Image),
	}

	if cache != nil {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			freed, kept := cache.Prune(time.Now())
			l.log.Debug().
				Str("freed", humanize.IBytes(uint64(freed))). //nolint:gosec // sizes are non-negative
				Str("kept", humanize.IBytes(uint64(kept))).   //nolint:gosec // sizes are non-negative
				Msg("artwork cache pruned")
		}()
	}

	return l, nil
}

// Show starts loading src unless it is loaded or already loading.
func (l *Loader) Show(src string) {
	if src == "" {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.ctx.Err() != nil {
		return
	}
	if _, ok := l.images[src]; ok {
		return
	}
	if _, ok := l.inflight[src]; ok {
		return
	}

	ctx, cancel := context.WithCancel(l.ctx)
	l.inflight[src] = cancel

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		l.load(ctx, src)
	}()
}

// Hide cancels a pending load of src and drops its thumbnail from memory.
func (l *Loader) Hide(src string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if cancel, ok := l.inflight[src]; ok {
		cancel()
		delete(l.inflight, src)
	}
	delete(l.images, src)
}

// Get returns the loaded thumbnail for src.
func (l *Loader) Get(src string) (Image, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	img, ok := l.images[src]
	return img, ok
}

// Loaded returns how many thumbnails are held in memory.
func (l *Loader) Loaded() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.images)
}

// Close cancels all loads and waits for workers to exit.
func (l *Loader) Close() error {
	l.cancel()
	l.wg.Wait()
	return nil
}

func (l *Loader) load(ctx context.Context, src string) {
	img, err := l.fetch(ctx, src)

	l.mu.Lock()
	if ctx.Err() != nil {
		// Hidden or closed while loading.
		l.mu.Unlock()
		return
	}
	delete(l.inflight, src)
	if err != nil {
		l.mu.Unlock()
		l.log.Debug().Err(err).Str("url", src).Msg(string(errmsg.OpArtworkLoad))
		return
	}
	l.images[src] = img
	l.mu.Unlock()

	l.onLoad(img)
}

func (l *Loader) fetch(ctx context.Context, src string) (Image, error) {
	w, h := l.cfg.Width, l.cfg.Height

	if data := l.cache.Get(src, w, h); data != nil {
		thumb, err := png.Decode(bytes.NewReader(data))
		if err == nil {
			return Image{URL: src, Thumb: thumb, PNG: data, MIME: "image/png"}, nil
		}
	}

	select {
	case l.sem <- struct{}{}:
	case <-ctx.Done():
		return Image{}, ctx.Err()
	}
	defer func() { <-l.sem }()

	raw, err := l.read(ctx, src)
	if err != nil {
		return Image{}, err
	}

	kind, err := filetype.Match(raw[:min(len(raw), sniffLen)])
	if err != nil {
		return Image{}, errors.Wrap(err, "sniff artwork")
	}
	if kind.MIME.Type != "image" {
		return Image{}, errors.Wrapf(ErrNotImage, "%s is %q", src, kind.MIME.Value)
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return Image{}, errors.Wrapf(err, "decode %s", kind.MIME.Value)
	}

	thumb := resize.Thumbnail(w, h, decoded, resize.Lanczos3)

	var buf bytes.Buffer
	if err := png.Encode(&buf, thumb); err != nil {
		return Image{}, errors.Wrap(err, "encode thumbnail")
	}
	if err := l.cache.Put(src, w, h, buf.Bytes()); err != nil {
		l.log.Debug().Err(err).Msg("cache artwork")
	}

	l.log.Debug().
		Str("url", src).
		Str("source", humanize.Bytes(uint64(len(raw)))).
		Str("thumb", humanize.Bytes(uint64(buf.Len()))).
		Msg("artwork loaded")

	return Image{URL: src, Thumb: thumb, PNG: buf.Bytes(), MIME: kind.MIME.Value}, nil
}

// read returns the bytes behind src, honouring the fetch rate limit for
// remote sources.
func (l *Loader) read(ctx context.Context, src string) ([]byte, error) {
	u, err := url.Parse(src)
	if err != nil {
		return nil, errors.Wrap(err, "parse artwork url")
	}

	switch u.Scheme {
	case "file", "":
		f, err := os.Open(u.Path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return io.ReadAll(io.LimitReader(f, maxImageBytes))
	case "http", "https":
	default:
		return nil, errors.Errorf("unsupported artwork scheme %q", u.Scheme)
	}

	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build artwork request")
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetch artwork")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("fetch artwork: %s", resp.Status)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
