package service

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"yatube/app/auth"
	"yatube/app/cache"
	"yatube/app/config"
	"yatube/app/media"
	"yatube/app/repositories"
	"yatube/app/routes"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Server is the blog web application bound to its storage.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger
	store  *repositories.Store
	pages  *cache.PageCache
	http   *http.Server
	ln     net.Listener
}

// NewServer opens storage and builds the router described by cfg.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	store, err := repositories.Open(cfg.Storage.Path)
	if err != nil {
		return nil, err
	}
	storage, err := media.New(cfg.Media.Root, cfg.Media.URL, cfg.MaxUploadBytes())
	if err != nil {
		store.Close()
		return nil, err
	}
	pages, err := cache.New(cfg.Cache.MaxBytes, cfg.Cache.IndexTTL)
	if err != nil {
		store.Close()
		return nil, err
	}
	sessions := auth.NewSessions(cfg.Session.Name, cfg.SessionKey(), cfg.Session.Secure, store.Users, logger)

	router, err := routes.New(routes.Deps{
		Store:          store,
		Media:          storage,
		Cache:          pages,
		Sessions:       sessions,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	if err != nil {
		pages.Close()
		store.Close()
		return nil, err
	}

	return &Server{
		cfg:    cfg,
		logger: logger,
		store:  store,
		pages:  pages,
		http: &http.Server{
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ErrorLog:          zap.NewStdLog(logger),
		},
	}, nil
}

// Listen binds the configured address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.cfg.Server.Addr, err)
	}
	s.ln = ln
	return nil
}

// Addr is the bound address, valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.ln.Addr()
}

// Serve handles requests until ctx is done, then shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("starting blog service", zap.String("addr", s.ln.Addr().String()))
		if err := s.http.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		timeout := s.cfg.Server.ShutdownTimeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("shutting down")
		return s.http.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close releases the cache and the database.
func (s *Server) Close() error {
	s.pages.Close()
	return s.store.Close()
}
