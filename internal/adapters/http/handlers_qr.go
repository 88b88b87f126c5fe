package web

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"

	"frontdesk/internal/adapters/qr"
)

// handleQRPage handles GET /qr: the printable desk QR.
func handleQRPage(w http.ResponseWriter, r *http.Request) {
	if opts.QRIssuer == nil {
		renderError(w, r, http.StatusServiceUnavailable, "QR codes are not configured on this server.")
		return
	}
	if _, err := opts.QRIssuer.IssueMaster(); err != nil {
		internalError(w, err)
		return
	}
	renderTemplate(w, r, "qr.html", map[string]any{
		"Title": "Desk QR",
		"Image": "/qr/" + qr.MasterFile,
		"URL":   opts.QRIssuer.CheckInURL(""),
	})
}

// handleQRFile handles GET /qr/{file}: serves a generated PNG.
func handleQRFile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("file")
	if opts.QRIssuer == nil || qr.ValidateFile(name) != nil {
		http.NotFound(w, r)
		return
	}
	path := filepath.Join(opts.QRIssuer.Dir(), name)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, path)
}
