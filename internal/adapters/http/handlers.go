package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"frontdesk/internal/adapters/http/middleware"
	"frontdesk/internal/application/listutil"
	"frontdesk/internal/application/orchestrators"
	"frontdesk/internal/application/projections"
	"frontdesk/internal/domain/member"
)

// timeNow is a variable for testability.
var timeNow = time.Now

// templatesDir is relative to the working directory; NewMux may override it.
var templatesDir = "internal/adapters/http/templates"

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// internalError logs the real error and returns a generic message to the client.
// This prevents leaking internal details per OWASP A05.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

// formInt parses a whole-number form field. Blank reads as 0; thousands separators are ignored.
func formInt(v string) (int, error) {
	v = strings.ReplaceAll(strings.TrimSpace(v), ",", "")
	if v == "" {
		return 0, nil
	}
	return strconv.Atoi(v)
}

// formatMoney renders 12500 as "12,500".
func formatMoney(n int) string {
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	s := strconv.Itoa(n)
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return sign + s
}

func renderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	renderTemplateStatus(w, r, http.StatusOK, templateName, data)
}

func renderTemplateStatus(w http.ResponseWriter, r *http.Request, status int, templateName string, data any) {
	sess, loggedIn := middleware.GetSessionFromContext(r.Context())

	funcMap := template.FuncMap{
		"currentUser": func() string { return sess.Username },
		"isLoggedIn":  func() bool { return loggedIn },
		"csrfToken":   func() string { return csrf.Token(r) },
		"renderMarkdown": func(md string) template.HTML {
			var buf bytes.Buffer
			if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
				return template.HTML(template.HTMLEscapeString(md))
			}
			return template.HTML(buf.String())
		},
		"money": formatMoney,
		"add":   func(a, b int) int { return a + b },
		"sub":   func(a, b int) int { return a - b },
		"sortQuery": func(p listutil.ListParams, col string) template.URL {
			return template.URL(p.WithSort(col).Values().Encode())
		},
		"pageQuery": func(p listutil.ListParams, page int) template.URL {
			return template.URL(p.WithPage(page).Values().Encode())
		},
		"sortArrow": func(p listutil.ListParams, col string) string {
			if p.Sort != col {
				return ""
			}
			if p.Dir == "desc" {
				return "▼"
			}
			return "▲"
		},
	}

	layoutPath := filepath.Join(templatesDir, "layout.html")
	pagePath := filepath.Join(templatesDir, templateName)
	tpl, err := template.New("layout.html").Funcs(funcMap).ParseFiles(layoutPath, pagePath)
	if err != nil {
		internalError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, data); err != nil {
		internalError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// renderError shows a desk-friendly error page.
func renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	renderTemplateStatus(w, r, status, "error.html", map[string]any{
		"Title":   http.StatusText(status),
		"Status":  status,
		"Message": message,
	})
}

// validationStatus maps a desk-correctable error to a JSON status code.
func validationStatus(err error) int {
	if errors.Is(err, member.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusBadRequest
}

// handleHealth reports liveness with build and storage details.
func handleHealth(w http.ResponseWriter, r *http.Request) {
	body := map[string]any{
		"status":         "healthy",
		"version":        opts.Version,
		"backend":        opts.Backend,
		"uptime_seconds": int(time.Since(startedAt).Seconds()),
		"timestamp":      timeNow().UTC().Format(time.RFC3339),
	}
	if perfCollector != nil {
		snap := perfCollector.Snapshot(timeNow().Add(-15*time.Minute), 5)
		body["perf"] = snap
	}
	writeJSON(w, http.StatusOK, body)
}

// handleLoginPage handles GET /login
func handleLoginPage(w http.ResponseWriter, r *http.Request) {
	// If already logged in, redirect to dashboard
	if _, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}
	renderTemplate(w, r, "login.html", map[string]any{"Title": "Sign in", "Username": "", "Error": ""})
}

// handleLogin handles POST /login
func handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Invalid form submission", http.StatusBadRequest)
		return
	}

	input := orchestrators.LoginInput{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
	}
	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{Credentials: opts.Credentials})
	if err != nil {
		slog.Warn("auth_event", "event", "login_failed", "username", input.Username, "ip", r.RemoteAddr)
		renderTemplateStatus(w, r, http.StatusUnauthorized, "login.html", map[string]any{
			"Title":    "Sign in",
			"Username": input.Username,
			"Error":    err.Error(),
		})
		return
	}

	token, err := sessions.Create(result.Username)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)
	slog.Info("auth_event", "event", "login", "username", result.Username)
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// handleLogout handles POST /logout
func handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		sessions.Delete(cookie.Value)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func dashboardDeps() projections.GetDashboardDeps {
	return projections.GetDashboardDeps{
		MemberStore:     stores.MemberStore,
		PaymentStore:    stores.PaymentStore,
		AttendanceStore: stores.AttendanceStore,
	}
}

// handleDashboard handles GET / and GET /dashboard
func handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(),
		projections.GetDashboardQuery{RecentLimit: opts.RecentPayments}, dashboardDeps(), now())
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "dashboard.html", map[string]any{
		"Title":  "Dashboard",
		"D":      result,
		"Notice": opts.Notice,
	})
}

// handleAttendance handles GET /attendance
func handleAttendance(w http.ResponseWriter, r *http.Request) {
	query := projections.GetAttendanceDayQuery{Date: r.URL.Query().Get("date")}
	deps := projections.GetAttendanceDayDeps{AttendanceStore: stores.AttendanceStore}
	result, err := projections.QueryGetAttendanceDay(r.Context(), query, deps, now())
	if errors.Is(err, projections.ErrInvalidDate) {
		renderError(w, r, http.StatusBadRequest, "Pick a date in YYYY-MM-DD form that is not in the future.")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "attendance.html", map[string]any{
		"Title": "Attendance " + result.Date,
		"A":     result,
	})
}

// successQuery builds the /checkin/success query for a scan result.
func successQuery(res orchestrators.CheckInResult) string {
	v := url.Values{}
	v.Set("action", res.Action)
	v.Set("id", res.Member.ID)
	v.Set("name", res.Member.Name)
	v.Set("time", res.Time)
	if res.Expired {
		v.Set("expired", "1")
	}
	return v.Encode()
}
