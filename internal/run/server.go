package run

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"lecturenotes/internal/api"
	"lecturenotes/internal/asr"
	"lecturenotes/internal/config"
	"lecturenotes/internal/hook"
	"lecturenotes/internal/notes"
	"lecturenotes/internal/pipeline"
	"lecturenotes/internal/store"

	"github.com/gofrs/flock"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// Deps overrides the production transcriber and notes generator.
type Deps struct {
	Transcriber asr.Transcriber
	Notes       pipeline.NotesGenerator
	// OnReady is called with the bound HTTP address once the server accepts requests.
	OnReady func(addr string)
}

// Server owns the HTTP listener, the pipeline and the control socket.
type Server struct {
	cfg       *config.Config
	logger    *logrus.Logger
	pipeline  *pipeline.Pipeline
	addr      string
	startedAt time.Time

	wg sync.WaitGroup
}

// Serve runs the server until SIGINT or SIGTERM.
func Serve(cfg *config.Config, logger *logrus.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	return Run(ctx, cfg, logger, Deps{})
}

// Run starts every component and blocks until ctx is cancelled.
func Run(ctx context.Context, cfg *config.Config, logger *logrus.Logger, deps Deps) error {
	if err := config.MustStatePaths(cfg); err != nil {
		return err
	}
	lock := flock.New(cfg.Paths.LockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another lecturenotes server is already running")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warnf("release lock: %v", err)
		}
	}()

	if err := os.WriteFile(cfg.Paths.PidPath, []byte(fmt.Sprintf("%d", os.Getpid())), 0o644); err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(cfg.Paths.PidPath); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warnf("remove pid file: %v", err)
		}
	}()
	if err := os.Remove(cfg.Paths.SocketPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		logger.Debugf("remove stale socket: %v", err)
	}

	st, err := store.Open(cfg)
	if err != nil {
		return err
	}
	defer st.Close()

	tr := deps.Transcriber
	if tr == nil {
		if tr, err = asr.New(cfg, logger); err != nil {
			return fmt.Errorf("asr init: %w", err)
		}
	}
	defer tr.Close()

	gen := deps.Notes
	if gen == nil {
		gen = notes.FromConfig(cfg)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := pipeline.New(cfg, st, tr, gen, hook.NewRunner(cfg, logger), logger)
	if err := p.Start(runCtx); err != nil {
		return err
	}
	defer p.Wait()

	ln, err := net.Listen("tcp", cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.Server.Addr, err)
	}
	srv := &Server{
		cfg:       cfg,
		logger:    logger,
		pipeline:  p,
		addr:      ln.Addr().String(),
		startedAt: time.Now(),
	}
	httpSrv := &http.Server{
		Handler:           api.New(cfg, p, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       seconds(cfg.Server.ReadTimeoutSec),
		WriteTimeout:      seconds(cfg.Server.WriteTimeoutSec),
	}

	srv.wg.Add(1)
	go func() {
		defer srv.wg.Done()
		srv.controlLoop(runCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("lecturenotes listening on http://%s", srv.addr)
	if deps.OnReady != nil {
		deps.OnReady(srv.addr)
	}

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		logger.Errorf("http server: %v", serveErr)
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}
	cancel()
	srv.wg.Wait()
	return serveErr
}

func seconds(n int) time.Duration {
	if n <= 0 {
		return 0
	}
	return time.Duration(n) * time.Second
}
