package middleware

import (
	"bytes"
	"net/http"
	"strconv"
)

// responseRecorder buffers the status and body written by a handler so they
// can be logged before anything reaches the client. Headers are written
// straight into the underlying writer's header map, which net/http only
// sends once flush calls WriteHeader.
type responseRecorder struct {
	w           http.ResponseWriter
	status      int
	wroteHeader bool
	body        bytes.Buffer
	flushed     bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{w: w, status: http.StatusOK}
}

func (r *responseRecorder) Header() http.Header {
	return r.w.Header()
}

func (r *responseRecorder) WriteHeader(status int) {
	if r.wroteHeader {
		return
	}
	r.status = status
	r.wroteHeader = true
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if !r.wroteHeader {
		r.WriteHeader(http.StatusOK)
	}
	return r.body.Write(p)
}

// Status returns the recorded status, 200 when the handler never set one
func (r *responseRecorder) Status() int {
	return r.status
}

// Written reports whether the handler produced a status or any body bytes
func (r *responseRecorder) Written() bool {
	return r.wroteHeader || r.body.Len() > 0
}

// Body returns the buffered response bytes
func (r *responseRecorder) Body() []byte {
	return r.body.Bytes()
}

// flush copies the buffered status and body to the real writer. Only the
// first call has an effect. When the handler wrote nothing the real writer
// is left untouched.
func (r *responseRecorder) flush() error {
	if r.flushed {
		return nil
	}
	r.flushed = true
	if !r.Written() {
		return nil
	}

	h := r.w.Header()
	if h.Get("Content-Length") == "" && h.Get("Transfer-Encoding") == "" && bodyAllowed(r.status) {
		h.Set("Content-Length", strconv.Itoa(r.body.Len()))
	}
	r.w.WriteHeader(r.status)
	if r.body.Len() == 0 {
		return nil
	}
	_, err := r.w.Write(r.body.Bytes())
	return err
}

func bodyAllowed(status int) bool {
	switch {
	case status >= 100 && status < 200:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
