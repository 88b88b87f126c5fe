//go:build browser

package browser_test

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	_ "modernc.org/sqlite"

	web "frontdesk/internal/adapters/http"
	"frontdesk/internal/adapters/http/middleware"
	"frontdesk/internal/adapters/http/perf"
	"frontdesk/internal/adapters/qr"
	"frontdesk/internal/adapters/sheets"
	"frontdesk/internal/adapters/storage"
	attendanceStore "frontdesk/internal/adapters/storage/attendance"
	memberStore "frontdesk/internal/adapters/storage/member"
	paymentStore "frontdesk/internal/adapters/storage/payment"
	"frontdesk/internal/application/orchestrators"
)

const (
	testAdminUser     = "admin"
	testAdminPassword = "TestPass123!"
	testAPIToken      = "browser-api-token"
)

// testApp holds the running test server and Playwright handles.
type testApp struct {
	BaseURL string
	DB      *sql.DB
	Server  *http.Server
	PW      *playwright.Playwright
	Browser playwright.Browser
	Stores  *web.Stores
	tmpDir  string
}

// newTestApp creates a fully wired app on a temp SQLite workbook and starts an HTTP server.
func newTestApp(t *testing.T) *testApp {
	t.Helper()

	// Create temp directory for the database and QR codes
	tmpDir := t.TempDir()
	db, err := sql.Open("sqlite", storage.DSN(filepath.Join(tmpDir, "test.db")))
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("failed to init test DB: %v", err)
	}

	collector := perf.NewCollector(256)
	wb := sheets.Timed(sheets.NewSQLiteWorkbook(db), collector, 250)
	stores := &web.Stores{
		MemberStore:     memberStore.NewSheetStore(wb),
		PaymentStore:    paymentStore.NewSheetStore(wb),
		AttendanceStore: attendanceStore.NewSheetStore(wb),
	}

	ctx := context.Background()
	if err := stores.MemberStore.EnsureSheet(ctx); err != nil {
		t.Fatalf("failed to create Members sheet: %v", err)
	}
	if err := stores.PaymentStore.EnsureSheet(ctx); err != nil {
		t.Fatalf("failed to create Payments sheet: %v", err)
	}

	creds, err := orchestrators.NewAdminCredentials(testAdminUser, testAdminPassword)
	if err != nil {
		t.Fatalf("failed to hash admin password: %v", err)
	}

	// Find a free port
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("failed to find free port: %v", err)
	}
	port := listener.Addr().(*net.TCPAddr).Port
	listener.Close()
	baseURL := fmt.Sprintf("http://127.0.0.1:%d", port)

	issuer, err := qr.NewIssuer(filepath.Join(tmpDir, "qr"), baseURL)
	if err != nil {
		t.Fatalf("failed to prepare QR dir: %v", err)
	}

	// Change to project root so relative template/static paths work
	projectRoot := findProjectRoot(t)
	origDir, _ := os.Getwd()
	if err := os.Chdir(projectRoot); err != nil {
		t.Fatalf("failed to chdir to project root: %v", err)
	}
	t.Cleanup(func() { os.Chdir(origDir) })

	// Add test port to CSRF trusted origins before creating mux
	middleware.ExtraTrustedOrigins = append(middleware.ExtraTrustedOrigins,
		fmt.Sprintf("127.0.0.1:%d", port),
		fmt.Sprintf("localhost:%d", port),
	)

	// Start HTTP server
	mux := web.NewMux(stores, web.Options{
		StaticDir:          "static",
		QRIssuer:           issuer,
		Credentials:        creds,
		APIToken:           testAPIToken,
		RecentPayments:     5,
		RateLimitPerSecond: 1000,
		SlowRequestMs:      200,
		Backend:            "sqlite",
		Version:            "browser-test",
	}, collector)
	srv := &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", port),
		Handler: mux,
	}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Printf("test server error: %v", err)
		}
	}()

	// Wait for server to be ready
	for i := 0; i < 50; i++ {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	// Start Playwright
	pw, err := playwright.Run()
	if err != nil {
		t.Fatalf("failed to start Playwright: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		t.Fatalf("failed to launch browser: %v", err)
	}

	app := &testApp{
		BaseURL: baseURL,
		DB:      db,
		Server:  srv,
		PW:      pw,
		Browser: browser,
		Stores:  stores,
		tmpDir:  tmpDir,
	}

	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
		srv.Close()
		db.Close()
	})

	return app
}

// newPage creates a new browser page (tab).
func (a *testApp) newPage(t *testing.T) playwright.Page {
	t.Helper()
	page, err := a.Browser.NewPage()
	if err != nil {
		t.Fatalf("failed to create page: %v", err)
	}
	t.Cleanup(func() { page.Close() })
	return page
}

// login navigates to the login page and signs in as the desk admin.
func (a *testApp) login(t *testing.T, page playwright.Page) {
	t.Helper()
	if _, err := page.Goto(a.BaseURL + "/login"); err != nil {
		t.Fatalf("failed to navigate to login: %v", err)
	}
	if err := page.Locator("input[name=username]").Fill(testAdminUser); err != nil {
		t.Fatalf("failed to fill username: %v", err)
	}
	if err := page.Locator("input[name=password]").Fill(testAdminPassword); err != nil {
		t.Fatalf("failed to fill password: %v", err)
	}
	if err := page.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to click login: %v", err)
	}
	// Wait for redirect to dashboard
	if err := page.WaitForURL(a.BaseURL+"/dashboard", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("login did not redirect to dashboard: %v", err)
	}
}

// textOf returns the text content of the first element matching selector.
func textOf(t *testing.T, page playwright.Page, selector string) string {
	t.Helper()
	text, err := page.Locator(selector).First().TextContent()
	if err != nil {
		t.Fatalf("failed to read %s: %v", selector, err)
	}
	return text
}

// findProjectRoot walks up from the working directory to find the project root (contains go.mod).
func findProjectRoot(t *testing.T) string {
	t.Helper()
	dir, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatalf("could not find project root (go.mod) from working directory")
		}
		dir = parent
	}
}
