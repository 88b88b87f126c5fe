package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"frontdesk/internal/adapters/http/perf"
)

// untimedPrefixes are served without timing: stylesheets and member QR images.
var untimedPrefixes = []string{"/static/", "/qr/"}

func untimed(path string) bool {
	for _, p := range untimedPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// timedWriter records the status and body size a handler produced.
type timedWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (tw *timedWriter) WriteHeader(code int) {
	tw.status = code
	tw.ResponseWriter.WriteHeader(code)
}

func (tw *timedWriter) Write(b []byte) (int, error) {
	n, err := tw.ResponseWriter.Write(b)
	tw.bytes += n
	return n, err
}

var timedWriterPool = sync.Pool{
	New: func() any { return &timedWriter{} },
}

// requestTimer reports one finished request to the log and the collector.
type requestTimer struct {
	collector *perf.Collector
	slowMs    float64
}

func (rt requestTimer) report(r *http.Request, tw *timedWriter, start time.Time) {
	ms := float64(time.Since(start).Microseconds()) / 1000.0
	attrs := []any{"method", r.Method, "path", r.URL.Path, "status", tw.status, "bytes", tw.bytes, "duration_ms", ms}
	if rt.slowMs > 0 && ms >= rt.slowMs {
		slog.Warn("slow_request", attrs...)
	} else {
		slog.Debug("request", attrs...)
	}
	if rt.collector == nil {
		return
	}
	rt.collector.Record(perf.Entry{
		Kind:       perf.KindRequest,
		Path:       r.Method + " " + r.URL.Path,
		StatusCode: tw.status,
		DurationMs: ms,
		Timestamp:  start,
	})
}

// Timing returns middleware that times each desk and API request.
// Requests at or above slowMs log at WARN, the rest at DEBUG; slowMs <= 0
// turns the warning off. collector may be nil.
// POST: one perf.Entry per timed request, recorded even if the handler panics
func Timing(collector *perf.Collector, slowMs float64) func(http.Handler) http.Handler {
	rt := requestTimer{collector: collector, slowMs: slowMs}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if untimed(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}
			start := time.Now()
			tw := timedWriterPool.Get().(*timedWriter)
			*tw = timedWriter{ResponseWriter: w, status: http.StatusOK}
			defer func() {
				rt.report(r, tw, start)
				*tw = timedWriter{}
				timedWriterPool.Put(tw)
			}()
			next.ServeHTTP(tw, r)
		})
	}
}
