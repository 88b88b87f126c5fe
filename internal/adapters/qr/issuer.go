// Package qr writes the check-in QR codes scanned at the front desk.
package qr

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"
)

// MasterFile is the file name of the shared desk QR.
const MasterFile = "checkin.png"

// Size is the edge length of every generated PNG in pixels.
const Size = 256

// ErrInvalidFile means a requested file name is not a QR this issuer writes.
var ErrInvalidFile = errors.New("invalid qr file name")

// Issuer renders QR PNGs encoding check-in links into a directory.
type Issuer struct {
	dir     string
	baseURL string
}

// NewIssuer creates an Issuer writing into dir with links rooted at baseURL.
// PRE: dir and baseURL are non-empty
// POST: dir exists
func NewIssuer(dir, baseURL string) (*Issuer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create qr dir: %w", err)
	}
	return &Issuer{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the directory QR files are written to.
func (i *Issuer) Dir() string {
	return i.dir
}

// CheckInURL returns the link a member QR encodes. Empty id gives the master link.
func (i *Issuer) CheckInURL(id string) string {
	if id == "" {
		return i.baseURL + "/checkin"
	}
	return i.baseURL + "/checkin?id=" + url.QueryEscape(id)
}

// FileName returns the PNG name for a member ID.
func FileName(id string) string {
	return id + ".png"
}

// IssueMaster writes the shared desk QR if it does not exist yet.
// POST: MasterFile exists under Dir
func (i *Issuer) IssueMaster() (string, error) {
	path := filepath.Join(i.dir, MasterFile)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}
	if err := qrcode.WriteFile(i.CheckInURL(""), qrcode.Medium, Size, path); err != nil {
		return "", fmt.Errorf("write master qr: %w", err)
	}
	slog.Info("qr_event", "event", "master_issued", "path", path)
	return path, nil
}

// IssueMember writes (or rewrites) the QR for one member.
// PRE: id is a valid member ID
// POST: <id>.png exists under Dir and encodes CheckInURL(id)
func (i *Issuer) IssueMember(id string) (string, error) {
	if err := ValidateFile(FileName(id)); err != nil {
		return "", err
	}
	path := filepath.Join(i.dir, FileName(id))
	if err := qrcode.WriteFile(i.CheckInURL(id), qrcode.Medium, Size, path); err != nil {
		return "", fmt.Errorf("write qr for %s: %w", id, err)
	}
	slog.Info("qr_event", "event", "member_issued", "member_id", id, "path", path)
	return path, nil
}

// ValidateFile rejects anything but a bare "<name>.png".
func ValidateFile(name string) error {
	if name == "" || name != filepath.Base(name) || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidFile, name)
	}
	if !strings.HasSuffix(name, ".png") {
		return fmt.Errorf("%w: %q", ErrInvalidFile, name)
	}
	return nil
}
