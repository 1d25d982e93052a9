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
	"bufio"
	"net"
	"net/http"
)

// ResponseInfo reports what has been sent on a response so far. Written is
// the single-response guard: once it reports true, the error boundary and
// any late-running step must not attempt another write.
type ResponseInfo interface {
	StatusCode() int
	Size() int64
	Written() bool
}

// responseWriter decorates the server's http.ResponseWriter with the
// bookkeeping ResponseInfo needs. A zero status means nothing was written
// yet; the accessors normalize it to 200 because that is what net/http
// sends on an implicit header.
type responseWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
	wrote  bool
}

var _ ResponseInfo = (*responseWriter)(nil)

// wrapResponseWriter decorates w, leaving an already-decorated writer alone
// so nested dispatches do not stack wrappers.
func wrapResponseWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) WriteHeader(code int) {
	if rw.wrote {
		// Headers are already on the wire; a second call would only
		// provoke a server log line.
		return
	}
	rw.wrote = true
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	rw.wrote = true
	n, err := rw.ResponseWriter.Write(b)
	rw.bytes += int64(n)
	return n, err
}

func (rw *responseWriter) StatusCode() int {
	if rw.status != 0 {
		return rw.status
	}
	return http.StatusOK
}

func (rw *responseWriter) Size() int64 { return rw.bytes }

func (rw *responseWriter) Written() bool { return rw.wrote }

// Hijack lets streaming handlers take over the connection, for example for
// WebSocket upgrades. It fails when the underlying writer cannot hijack,
// as is the case under HTTP/2.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, ErrResponseWriterNotHijacker
	}
	return hijacker.Hijack()
}

// Flush forwards to the underlying flusher, if any, so server-sent events
// keep working through the wrapper.
func (rw *responseWriter) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}
