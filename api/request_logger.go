// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"time"

	"github.com/vechain/npos/log"
)

// RequestLoggerHandler returns a http handler logging every request with its duration.
// Request bodies are not logged.
func RequestLoggerHandler(handler http.Handler, logger log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)
		logger.Info("API Request",
			"URI", r.URL.String(),
			"Method", r.Method,
			"elapsed", time.Since(start),
		)
	})
}
