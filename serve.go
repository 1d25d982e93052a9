// Copyright 2026 The Moro Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package router

import (
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// buildServer assembles an http.Server with hardened timeouts and optional
// H2C wrapping.
func (r *Router) buildServer(addr string) *http.Server {
	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	var handler http.Handler = r
	if r.enableH2C {
		handler = h2c.NewHandler(r, &http2.Server{})
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}
}

// Serve starts an HTTP server on addr with the router as handler.
// Timeouts default to values that resist slowloris-style clients; configure
// them with WithServerTimeouts. Blocks until the server stops.
//
// Example:
//
//	r := router.MustNew(router.WithH2C(true))
//	if err := r.Serve(":8080"); err != nil {
//	    log.Fatal(err)
//	}
func (r *Router) Serve(addr string) error {
	return r.buildServer(addr).ListenAndServe()
}

// ServeTLS starts an HTTPS server on addr using the given certificate and
// key files. Blocks until the server stops.
func (r *Router) ServeTLS(addr, certFile, keyFile string) error {
	return r.buildServer(addr).ListenAndServeTLS(certFile, keyFile)
}
