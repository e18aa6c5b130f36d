package middleware

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/web-core/config"
	"github.com/upb/web-core/internal/masking"
	"github.com/upb/web-core/internal/observability"
	"go.uber.org/zap"
)

const (
	jsonContentType = "application/json"
	noRequestBody   = "no request body"
	noResponseBody  = "no response result"
	unmatchedRoute  = "unmatched"
)

// TrafficLogger logs a before line and an after line for every eligible
// request. Request bodies are buffered and replayed to the handler; response
// bodies are buffered, logged and then flushed to the client. Every request,
// logged or not, is counted in the request metrics.
type TrafficLogger struct {
	logger      observability.Logger
	masker      *masking.Masker
	metrics     observability.Metrics
	enabled     bool
	ignore      map[string]struct{}
	traceHeader string
	traceKey    string
	now         func() time.Time
}

// NewTrafficLogger creates a TrafficLogger. masker and metrics may be nil.
func NewTrafficLogger(
	logger observability.Logger,
	masker *masking.Masker,
	metrics observability.Metrics,
	cfg config.TrafficLogConfig,
) *TrafficLogger {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	traceHeader := cfg.TraceHeader
	if traceHeader == "" {
		traceHeader = config.DefaultTraceHeader
	}
	ignore := make(map[string]struct{}, len(cfg.IgnorePaths))
	for _, path := range cfg.IgnorePaths {
		ignore[path] = struct{}{}
	}
	return &TrafficLogger{
		logger:      logger,
		masker:      masker,
		metrics:     metrics,
		enabled:     cfg.Enabled,
		ignore:      ignore,
		traceHeader: traceHeader,
		traceKey:    http.CanonicalHeaderKey(traceHeader),
		now:         time.Now,
	}
}

// Handler is the chi middleware
func (m *TrafficLogger) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enabled || !m.eligible(r) {
			m.passThrough(w, r, next)
			return
		}

		body, err := replayBody(r)
		if err != nil {
			m.logger.Debug(r.Context(), "traffic capture skipped", zap.Error(err))
			m.passThrough(w, r, next)
			return
		}

		m.serve(w, r, body, next)
	})
}

// eligible reports whether r is logged. A panic while deciding counts as not eligible.
func (m *TrafficLogger) eligible(r *http.Request) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if _, ignored := m.ignore[r.URL.Path]; ignored {
		return false
	}
	return r.Method == http.MethodGet || isJSON(r.Header.Get("Content-Type"))
}

// passThrough serves r without logging it, recording only its metrics
func (m *TrafficLogger) passThrough(w http.ResponseWriter, r *http.Request, next http.Handler) {
	start := m.now()
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	defer func() {
		p := recover()
		status := ww.Status()
		switch {
		case status != 0:
		case p != nil:
			status = http.StatusInternalServerError
		default:
			status = http.StatusOK
		}
		m.record(r, status, start)
		if p != nil {
			panic(p)
		}
	}()

	next.ServeHTTP(ww, r)
}

func (m *TrafficLogger) serve(w http.ResponseWriter, r *http.Request, body []byte, next http.Handler) {
	ctx := r.Context()
	start := m.now()
	m.logBefore(ctx, r, body)

	rec := newResponseRecorder(w)
	defer func() {
		p := recover()
		status := rec.Status()
		if p != nil && !rec.Written() {
			status = http.StatusInternalServerError
		}
		func() {
			defer func() {
				if err := rec.flush(); err != nil {
					m.logger.Warn(ctx, "failed to flush response", zap.Error(err))
				}
			}()
			m.logAfter(ctx, r, rec, status, start, p != nil)
		}()
		m.record(r, status, start)
		if p != nil {
			panic(p)
		}
	}()

	next.ServeHTTP(rec, r)
}

func (m *TrafficLogger) logBefore(ctx context.Context, r *http.Request, body []byte) {
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error(ctx, "failed to capture request", zap.Any("panic", p))
		}
	}()

	text := requestBodyText(r, body)
	m.logger.Info(ctx, m.buildBefore(ctx, r, text),
		zap.String("phase", "request"),
		zap.String("body", text),
	)
}

func (m *TrafficLogger) logAfter(ctx context.Context, r *http.Request, rec *responseRecorder, status int, start time.Time, panicked bool) {
	defer func() {
		if p := recover(); p != nil {
			m.logger.Error(ctx, "failed to capture response", zap.Any("panic", p))
		}
	}()

	cost := m.now().Sub(start)
	text := string(rec.Body())

	fields := []observability.Field{
		zap.String("phase", "response"),
		zap.Int("status", status),
		zap.Int64("cost_ms", cost.Milliseconds()),
		zap.String("body", text),
	}
	if panicked {
		fields = append(fields, zap.Bool("panicked", true))
	}
	m.logger.Info(ctx, m.buildAfter(ctx, r, rec, status, cost, text), fields...)
}

// record counts r in the request metrics. A failure drops the sample.
func (m *TrafficLogger) record(r *http.Request, status int, start time.Time) {
	ctx := r.Context()
	defer func() {
		if p := recover(); p != nil {
			m.logger.Warn(ctx, "failed to record request metrics", zap.Any("panic", p))
		}
	}()

	m.metrics.RecordRequest(ctx, observability.RequestLabels{
		Method: r.Method,
		Path:   routePattern(r),
		Status: status,
	}, m.now().Sub(start))
}

func (m *TrafficLogger) buildBefore(ctx context.Context, r *http.Request, body string) string {
	var sb strings.Builder
	sb.WriteString("request")
	sb.WriteString(formatPath(r.URL.Path))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "> %s %s\n", r.Method, r.URL.Path)

	headers := r.Header.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	if r.Host != "" {
		headers.Set("Host", r.Host)
	}
	headers.Del(m.traceKey)
	for _, name := range sortedNames(headers) {
		fmt.Fprintf(&sb, "> %s: %s\n", name, strings.Join(headers[name], ", "))
	}
	fmt.Fprintf(&sb, "> %s: %s\n", m.traceHeader, GetTraceIDFromContext(ctx))

	if strings.TrimSpace(body) == "" {
		sb.WriteString(noRequestBody)
	} else {
		sb.WriteString(m.masker.MaskString(body))
	}
	return sb.String()
}

func (m *TrafficLogger) buildAfter(ctx context.Context, r *http.Request, rec *responseRecorder, status int, cost time.Duration, body string) string {
	var sb strings.Builder
	sb.WriteString("response")
	sb.WriteString(formatPath(r.URL.Path))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "< status: %d\n", status)

	headers := rec.Header()
	for _, name := range sortedNames(headers) {
		if name == m.traceKey {
			fmt.Fprintf(&sb, "< %s: %s\n", m.traceHeader, GetTraceIDFromContext(ctx))
			continue
		}
		fmt.Fprintf(&sb, "< %s: %s\n", name, strings.Join(headers[name], ", "))
	}
	fmt.Fprintf(&sb, "< cost: %dms\n", cost.Milliseconds())

	if strings.TrimSpace(body) == "" {
		sb.WriteString(noResponseBody)
	} else {
		sb.WriteString(m.masker.MaskString(body))
	}
	return sb.String()
}

// replayBody reads the request body into memory and replaces it with a
// reader over the same bytes. On a read error the bytes read so far are
// stitched back in front of the unread remainder.
func replayBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	orig := r.Body
	data, err := io.ReadAll(orig)
	if err != nil {
		r.Body = readCloser{Reader: io.MultiReader(bytes.NewReader(data), orig), Closer: orig}
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	r.Body = readCloser{Reader: bytes.NewReader(data), Closer: orig}
	return data, nil
}

type readCloser struct {
	io.Reader
	io.Closer
}

// requestBodyText is the body shown in the before line. GET requests without
// a content type show their query parameters instead.
func requestBodyText(r *http.Request, body []byte) string {
	if r.Method == http.MethodGet && r.Header.Get("Content-Type") == "" {
		if query := formatQuery(r.URL.RawQuery); query != "" {
			return query
		}
	}
	return string(body)
}

// formatQuery rebuilds a raw query as key=value pairs joined by '&', keeping
// the first value of each key in order of first appearance.
func formatQuery(rawQuery string) string {
	if rawQuery == "" {
		return ""
	}
	seen := make(map[string]struct{})
	var pairs []string
	for _, part := range strings.Split(rawQuery, "&") {
		if part == "" {
			continue
		}
		key, value, _ := strings.Cut(part, "=")
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		if v, err := url.QueryUnescape(value); err == nil {
			value = v
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		pairs = append(pairs, key+"="+value)
	}
	return strings.Join(pairs, "&")
}

// formatPath turns a request path into a search-friendly tag: /a/b -> -a-b
func formatPath(path string) string {
	return strings.ReplaceAll(path, "/", "-")
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == jsonContentType
}

func sortedNames(h http.Header) []string {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// routePattern returns the matched chi route, keeping metric labels bounded
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return unmatchedRoute
}
