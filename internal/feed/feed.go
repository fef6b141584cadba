// Package feed publishes the birthday calendar over HTTP on the loopback
// interface so calendar clients can subscribe to it.
package feed

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/tartampluch/vcard-editor/internal/config"
)

// Source renders the current calendar document.
type Source func(ctx context.Context) ([]byte, error)

type snapshot struct {
	data         []byte
	etag         string
	lastModified string // http.TimeFormat
}

// Server serves the latest calendar produced by Source and re-renders it
// every Interval. Readers never block writers.
type Server struct {
	Port     string
	Interval time.Duration
	Source   Source

	current atomic.Pointer[snapshot]
	now     func() time.Time
}

// New returns a server bound to port on the loopback interface.
func New(port string, interval time.Duration, src Source) *Server {
	return &Server{
		Port:     port,
		Interval: interval,
		Source:   src,
		now:      time.Now,
	}
}

// Run serves until ctx is cancelled. The first render happens before the
// listener accepts requests; clients arriving earlier get 503.
func (s *Server) Run(ctx context.Context) error {
	if s.Port == "" {
		return errors.New(config.ErrPortRequired)
	}

	srv := &http.Server{
		Addr:         config.LocalhostBindAddr + config.AddrSeparator + s.Port,
		Handler:      s.Handler(),
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	serverError := make(chan error, config.ChannelBufferSize)
	go func() {
		slog.Info(config.MsgServerListen,
			config.LogKeyComponent, config.CompFeed,
			config.LogKeyPort, s.Port,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverError <- err
		}
	}()

	s.refreshLogged(ctx)

	var tick <-chan time.Time
	if s.Interval > 0 && s.Source != nil {
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			slog.Info(config.MsgServerStop, config.LogKeyComponent, config.CompFeed)
			shutdownCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("%s: %w", config.ErrServerShutdown, err)
			}
			return nil

		case err := <-serverError:
			return fmt.Errorf("%s: %w", config.ErrServerStartup, err)

		case <-tick:
			s.refreshLogged(ctx)
		}
	}
}

// Refresh renders the calendar once and publishes it.
func (s *Server) Refresh(ctx context.Context) error {
	if s.Source == nil {
		return nil
	}
	data, err := s.Source(ctx)
	if err != nil {
		return err
	}
	s.Publish(data)
	return nil
}

func (s *Server) refreshLogged(ctx context.Context) {
	slog.Debug(config.MsgFeedRefresh, config.LogKeyComponent, config.CompFeed)
	if err := s.Refresh(ctx); err != nil && ctx.Err() == nil {
		// The previous document stays online.
		slog.Error(config.MsgFeedRefresh,
			config.LogKeyComponent, config.CompFeed,
			config.LogKeyError, err,
		)
	}
}

// Publish replaces the served document. It reports false when data is
// byte-identical to what is already served; ETag and Last-Modified are then
// left alone so clients keep getting 304.
func (s *Server) Publish(data []byte) bool {
	hash := sha256.Sum256(data)
	etag := fmt.Sprintf(config.FormatETag, hex.EncodeToString(hash[:]))

	if cur := s.current.Load(); cur != nil && cur.etag == etag {
		return false
	}

	s.current.Store(&snapshot{
		data:         data,
		etag:         etag,
		lastModified: s.now().UTC().Format(http.TimeFormat),
	})

	slog.Debug(config.MsgCacheUpdated,
		config.LogKeyComponent, config.CompFeed,
		config.LogKeySizeBytes, len(data),
		config.LogKeyETag, etag,
	)
	return true
}

// Handler returns the HTTP handler serving the calendar at the root path.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc(config.RouteRoot, s.serveCalendar)
	return mux
}

func (s *Server) serveCalendar(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set(config.HeaderAllow, config.AllowedMethods)
		http.Error(w, config.HTTPMsgMethodNotAll, http.StatusMethodNotAllowed)
		return
	}

	item := s.current.Load()
	if item == nil {
		w.Header().Set(config.HeaderRetryAfter, config.RetryAfterSeconds)
		http.Error(w, config.HTTPMsgInitializing, http.StatusServiceUnavailable)
		return
	}

	h := w.Header()
	h.Set(config.HeaderContentType, config.MimeTextCalendar)
	h.Set(config.HeaderXContentType, config.MimeNoSniff)
	h.Set(config.HeaderCacheControl, config.CacheControlPrivate)
	h.Set(config.HeaderETag, item.etag)
	h.Set(config.HeaderLastModified, item.lastModified)

	if notModified(r, item) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	if r.Method == http.MethodHead {
		return
	}
	if _, err := io.Copy(w, bytes.NewReader(item.data)); err != nil {
		slog.Error(config.ErrWriteResp,
			config.LogKeyComponent, config.CompFeed,
			config.LogKeyError, err,
		)
	}
}

// notModified applies If-None-Match first and falls back to
// If-Modified-Since only when no entity tag was sent.
func notModified(r *http.Request, item *snapshot) bool {
	if match := r.Header.Get(config.HeaderIfNoneMatch); match != "" {
		return match == item.etag
	}
	since := r.Header.Get(config.HeaderIfModifiedSince)
	if since == "" {
		return false
	}
	clientTime, err := time.Parse(http.TimeFormat, since)
	if err != nil {
		return false
	}
	serverTime, err := time.Parse(http.TimeFormat, item.lastModified)
	if err != nil {
		return false
	}
	return !serverTime.After(clientTime)
}
