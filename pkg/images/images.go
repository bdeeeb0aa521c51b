// Package images turns logo and signature uploads into data URIs that are
// stored inline with the school profile.
package images

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	homedir "github.com/mitchellh/go-homedir"

	"github.com/eccowas/admitgen/pkg/whttp"
)

// MaxSize caps a single image.
const MaxSize = 5 << 20

var (
	ErrNotImage = errors.New("file is not an image")
	ErrTooLarge = errors.New("image is larger than 5 MiB")
)

// Load reads an image from a local path or an http(s) URL and returns it as a
// data URI.
func Load(ctx context.Context, src string) (string, error) {
	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return fetch(ctx, src)
	}
	path, err := homedir.Expand(src)
	if err != nil {
		return "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return FromReader(f)
}

// FromReader encodes everything r yields. The content type is sniffed from the
// bytes, not taken from a file name or header.
func FromReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	return Encode(data)
}

// Encode wraps raw image bytes in a data URI.
func Encode(data []byte) (string, error) {
	if len(data) > MaxSize {
		return "", ErrTooLarge
	}
	mime := sniff(data)
	if !strings.HasPrefix(mime, "image/") {
		return "", fmt.Errorf("%w: detected %s", ErrNotImage, mime)
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// sniff adds SVG, which http.DetectContentType reports as text.
func sniff(data []byte) string {
	mime := http.DetectContentType(data)
	if strings.HasPrefix(mime, "text/xml") || strings.HasPrefix(mime, "text/plain") {
		head := bytes.ToLower(data[:min(len(data), 512)])
		if bytes.Contains(head, []byte("<svg")) {
			return "image/svg+xml"
		}
	}
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	return mime
}

func fetch(ctx context.Context, url string) (string, error) {
	res, err := whttp.Get(ctx, url, MaxSize+1)
	if err != nil {
		return "", err
	}
	if err := res.OK(); err != nil {
		return "", err
	}
	return Encode(res.Body)
}
