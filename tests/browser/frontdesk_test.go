//go:build browser

package browser_test

import (
	"context"
	"net/http"
	"regexp"
	"strings"
	"testing"

	"github.com/playwright-community/playwright-go"

	"frontdesk/internal/domain/payment"
)

// TestRegisterThenScanInAndOut walks the desk through a registration and the
// member through two kiosk scans.
func TestRegisterThenScanInAndOut(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)
	app.login(t, page)

	if _, err := page.Goto(app.BaseURL + "/members/new"); err != nil {
		t.Fatalf("failed to open register form: %v", err)
	}
	fields := map[string]string{
		"input[name=name]":  "Alice Rahman",
		"input[name=phone]": "0300-5550101",
		"input[name=plan]":  "Monthly",
		"input[name=fees]":  "1000",
	}
	for sel, v := range fields {
		if err := page.Locator(sel).Fill(v); err != nil {
			t.Fatalf("failed to fill %s: %v", sel, err)
		}
	}
	if err := page.Locator("form[action='/members/new'] button[type=submit]").Click(); err != nil {
		t.Fatalf("failed to submit registration: %v", err)
	}
	if err := page.WaitForURL(regexp.MustCompile(`/members/M001\?registered=1$`), playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("registration did not land on the member page: %v", err)
	}
	if got := textOf(t, page, "#member-id"); got != "M001" {
		t.Errorf("member id = %q, want M001", got)
	}

	payments, err := app.Stores.PaymentStore.ListByMemberID(context.Background(), "M001")
	if err != nil {
		t.Fatalf("failed to read ledger: %v", err)
	}
	if len(payments) != 1 || payments[0].Type != payment.TypeJoin || payments[0].Amount != 1000 {
		t.Fatalf("ledger = %+v, want one Join of 1000", payments)
	}

	// The member QR encodes /checkin?id=M001; the page submits itself.
	kiosk := app.newPage(t)
	for _, want := range []string{"Checked in", "Checked out"} {
		if _, err := kiosk.Goto(app.BaseURL + "/checkin?id=M001"); err != nil {
			t.Fatalf("failed to open kiosk: %v", err)
		}
		if err := kiosk.WaitForURL(regexp.MustCompile(`/checkin/success\?`), playwright.PageWaitForURLOptions{
			Timeout: playwright.Float(10000),
		}); err != nil {
			t.Fatalf("scan did not reach the confirmation page: %v", err)
		}
		if got := textOf(t, kiosk, "#checkin-status"); !strings.HasPrefix(got, want) {
			t.Errorf("status = %q, want prefix %q", got, want)
		}
	}

	if _, err := page.Goto(app.BaseURL + "/attendance"); err != nil {
		t.Fatalf("failed to open attendance: %v", err)
	}
	body := textOf(t, page, "main")
	if !strings.Contains(body, "M001") || !strings.Contains(body, "Alice Rahman") {
		t.Errorf("attendance sheet is missing the visit: %q", body)
	}
}

// TestDeskPagesNeedLogin verifies anonymous visitors are sent to the login page.
func TestDeskPagesNeedLogin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)
	page := app.newPage(t)

	if _, err := page.Goto(app.BaseURL + "/members"); err != nil {
		t.Fatalf("failed to open members: %v", err)
	}
	if err := page.WaitForURL(app.BaseURL+"/login", playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(10000),
	}); err != nil {
		t.Fatalf("anonymous visit was not redirected to login: %v", err)
	}
}

// TestAPIRequiresToken checks the bearer token on the JSON API.
func TestAPIRequiresToken(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	app := newTestApp(t)

	resp, err := http.Get(app.BaseURL + "/api/dashboard")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("without token: status = %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, app.BaseURL+"/api/dashboard", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIToken)
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("with token: status = %d, want 200", resp.StatusCode)
	}
}
