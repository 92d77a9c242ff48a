// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/vechain/npos/api/admin/health"
	"github.com/vechain/npos/api/admin/loglevel"
	"github.com/vechain/npos/api/staking"
	"github.com/vechain/npos/api/subscriptions"
	"github.com/vechain/npos/log"
	"github.com/vechain/npos/metrics"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins  string
	EnableReqLogger bool
	EnableMetrics   bool
	// LogLevel, when set, is exposed for reading and changing under /admin/loglevel.
	LogLevel *slog.LevelVar
	// Health, when set, reports the session driver progress under /admin/health.
	Health *health.Health
}

// New return api router and a func closing open subscriptions.
func New(backend subscriptions.Backend, opts Options) (http.HandlerFunc, func()) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	staking.New(backend).
		Mount(router, "/staking")
	subs := subscriptions.New(backend, origins)
	subs.Mount(router, "/subscriptions")
	if opts.LogLevel != nil {
		loglevel.New(opts.LogLevel).
			Mount(router, "/admin/loglevel")
	}
	if opts.Health != nil {
		health.NewAPI(opts.Health).
			Mount(router, "/admin/health")
	}

	if opts.EnableMetrics {
		router.Path("/metrics").
			Methods(http.MethodGet).
			Name("metrics").
			Handler(metrics.HTTPHandler())
		router.Use(metricsMiddleware)
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
	)(handler)

	if opts.EnableReqLogger {
		handler = RequestLoggerHandler(handler, logger)
	}

	return handler.ServeHTTP, subs.Close // subscriptions handles hijacked conns, which need to be closed
}
