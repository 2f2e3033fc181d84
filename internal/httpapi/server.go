/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package httpapi exposes club operations and standings over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"club-points-ledger/internal/api"
	"club-points-ledger/internal/club"
	"club-points-ledger/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const defaultRequestTimeout = 30 * time.Second

// Server wraps the HTTP server.
type Server struct {
	httpServer *http.Server
}

// NewRouter builds the chi router with middleware and all routes registered.
func NewRouter(clubService *club.Service, ledgerService *api.LedgerService, jwtSecret []byte, timeout time.Duration) *chi.Mux {
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	h := &Handler{club: clubService, ledger: ledgerService}

	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		requestLogger,
		middleware.Timeout(timeout),
	)
	router.Get("/healthz", h.Healthz)

	router.Route("/v1", func(r chi.Router) {
		r.Get("/ranking", h.Ranking)
		r.Get("/members/{uid}/standing", h.Standing)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth(jwtSecret))
			r.Get("/members/{uid}/point-events", h.PointEvents)
			r.Post("/createPost", h.CreatePost)
			r.Post("/togglePostLike", h.TogglePostLike)
			r.Post("/addPostComment", h.AddPostComment)
			r.Post("/deletePostComment", h.DeletePostComment)
			r.Post("/deletePost", h.DeletePost)
			r.Post("/adminAdjustPoints", h.AdminAdjustPoints)
			r.Post("/adminSetRole", h.AdminSetRole)
		})
	})
	return router
}

// New constructs a Server listening on the configured port.
func New(cfg models.ServerConfig, clubService *club.Service, ledgerService *api.LedgerService) (*Server, error) {
	secret := strings.TrimSpace(cfg.JWTSecret)
	if secret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	router := NewRouter(clubService, ledgerService, []byte(secret), cfg.RequestTimeout)

	port := cfg.Port
	if port == 0 {
		port = 8080
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{httpServer: httpServer}, nil
}

// Start runs the HTTP server until it is shut down.
func (s *Server) Start() error {
	zap.L().Info("HTTP server listening", zap.String("addr", s.httpServer.Addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Info("HTTP request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)))
	})
}
