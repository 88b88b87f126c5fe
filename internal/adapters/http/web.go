package web

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"time"

	"frontdesk/internal/adapters/http/middleware"
	"frontdesk/internal/adapters/http/perf"
	"frontdesk/internal/adapters/qr"
	attendanceStore "frontdesk/internal/adapters/storage/attendance"
	memberStore "frontdesk/internal/adapters/storage/member"
	paymentStore "frontdesk/internal/adapters/storage/payment"
	"frontdesk/internal/application/orchestrators"
)

// Stores holds all storage dependencies.
type Stores struct {
	MemberStore     memberStore.Store
	PaymentStore    paymentStore.Store
	AttendanceStore attendanceStore.Store
}

// Options carries everything the handlers need besides the stores.
type Options struct {
	StaticDir    string
	TemplatesDir string // empty keeps the package default

	QRIssuer    *qr.Issuer
	Credentials orchestrators.AdminCredentials
	APIToken    string // empty disables /api/
	CSRFKey     string // 64 hex chars; empty generates one outside production
	Production  bool
	CORSOrigins []string

	Notice         string // markdown shown on the dashboard
	Notify         *orchestrators.NotifyPaymentDeps
	Location       *time.Location
	RecentPayments int

	// Per-address request budgets. Hour and day windows are off at zero.
	RateLimitPerSecond int
	RateLimitPerHour   int
	RateLimitPerDay    int
	SlowRequestMs      float64 // requests at or above this log at WARN; 0 turns it off

	Backend string
	Version string
}

// loadCSRFKey decodes the configured CSRF secret (hex-encoded, 32 bytes).
// In production, the key MUST be set. In development, a random key is generated per startup.
func loadCSRFKey(keyHex string, production bool) []byte {
	if keyHex != "" {
		key, err := hex.DecodeString(keyHex)
		if err != nil || len(key) != 32 {
			log.Fatal("csrf_key must be 64 hex characters (32 bytes)")
		}
		return key
	}
	if production {
		log.Fatal("csrf_key is required in production")
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		log.Fatalf("failed to generate CSRF key: %v", err)
	}
	log.Println("WARNING: using random CSRF key (forms open before a restart will fail). Set GYM_CSRF_KEY for production.")
	return key
}

// Global stores instance (set by NewMux)
var stores *Stores

// Global handler options (set by NewMux)
var opts Options

// Global session store instance
var sessions *middleware.SessionStore

// Global perf collector (set by NewMux)
var perfCollector *perf.Collector

// startedAt feeds the uptime reported by /health.
var startedAt = time.Now()

// now returns the current time in the gym's timezone.
func now() time.Time {
	t := timeNow()
	if opts.Location != nil {
		t = t.In(opts.Location)
	}
	return t
}

// NewMux wires HTTP handlers for the app.
func NewMux(s *Stores, o Options, collector *perf.Collector) http.Handler {
	stores = s
	opts = o
	perfCollector = collector
	sessions = middleware.NewSessionStore()
	middleware.SecureCookies = o.Production
	if o.TemplatesDir != "" {
		templatesDir = o.TemplatesDir
	}
	if opts.RateLimitPerSecond <= 0 {
		opts.RateLimitPerSecond = 10
	}

	mux := http.NewServeMux()
	if o.StaticDir != "" {
		mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(o.StaticDir))))
	}
	registerRoutes(mux)

	csrfKey := loadCSRFKey(o.CSRFKey, o.Production)

	// Rate limiters: per-second burst plus optional hourly and daily budgets per IP (OWASP A04)
	limiters := []*middleware.RateLimiter{middleware.NewRateLimiter(opts.RateLimitPerSecond, time.Second)}
	if opts.RateLimitPerHour > 0 {
		limiters = append(limiters, middleware.NewRateLimiter(opts.RateLimitPerHour, time.Hour))
	}
	if opts.RateLimitPerDay > 0 {
		limiters = append(limiters, middleware.NewRateLimiter(opts.RateLimitPerDay, 24*time.Hour))
	}

	// Apply middleware: Timing -> RateLimit -> Auth -> CORS -> CSRF -> SecurityHeaders -> Mux
	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(csrfKey),
		middleware.CORS(o.CORSOrigins),
		middleware.Auth(sessions),
		middleware.RateLimit(limiters...),
		middleware.Timing(collector, opts.SlowRequestMs),
	)
}

// registerRoutes maps every route to its handler.
// Desk pages need a session; the kiosk check-in and QR images are public;
// /api/ needs the bearer token.
func registerRoutes(mux *http.ServeMux) {
	desk := func(h http.HandlerFunc) http.Handler { return middleware.RequireAuth(h) }
	api := middleware.APIToken(opts.APIToken)

	mux.HandleFunc("GET /health", handleHealth)

	mux.HandleFunc("GET /login", handleLoginPage)
	mux.HandleFunc("POST /login", handleLogin)
	mux.HandleFunc("POST /logout", handleLogout)

	mux.Handle("GET /{$}", desk(handleDashboard))
	mux.Handle("GET /dashboard", desk(handleDashboard))
	mux.Handle("GET /members", desk(handleMembers))
	mux.Handle("GET /members/new", desk(handleMemberNewPage))
	mux.Handle("POST /members/new", desk(handleMemberNew))
	mux.Handle("GET /members/renew", desk(handleMemberRenewPage))
	mux.Handle("POST /members/renew", desk(handleMemberRenew))
	mux.Handle("GET /members/{id}", desk(handleMemberDetail))
	mux.Handle("GET /attendance", desk(handleAttendance))
	mux.Handle("GET /qr", desk(handleQRPage))

	mux.HandleFunc("GET /checkin", handleCheckinPage)
	mux.HandleFunc("POST /checkin", handleCheckin)
	mux.HandleFunc("GET /checkin/success", handleCheckinSuccess)
	mux.HandleFunc("GET /qr/{file}", handleQRFile)

	mux.Handle("GET /api/members", api(http.HandlerFunc(handleAPIMembers)))
	mux.Handle("POST /api/checkin", api(http.HandlerFunc(handleAPICheckin)))
	mux.Handle("GET /api/dashboard", api(http.HandlerFunc(handleAPIDashboard)))
	mux.HandleFunc("/api/", handleAPINotFound)
}
