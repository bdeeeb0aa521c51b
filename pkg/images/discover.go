package images

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/eccowas/admitgen/internal/utils"
	"github.com/eccowas/admitgen/pkg/whttp"
)

var ErrNoLogo = errors.New("no logo found on page")

// pageLimit caps how much of the home page is read.
const pageLimit = 2 << 20

// logoSelectors are tried in order against the school's home page.
var logoSelectors = []struct {
	selector string
	attr     string
}{
	{`meta[property="og:image"]`, "content"},
	{`link[rel="apple-touch-icon"]`, "href"},
	{`link[rel="icon"]`, "href"},
	{`link[rel="shortcut icon"]`, "href"},
	{`img[alt*="logo"], img[alt*="Logo"]`, "src"},
}

// Discover finds a logo on the school's website and loads it as a data URI.
// site may omit the scheme.
func Discover(ctx context.Context, site string) (string, error) {
	site = strings.TrimSpace(site)
	if !strings.Contains(site, "://") {
		site = "https://" + site
	}
	base, err := url.Parse(site)
	if err != nil {
		return "", fmt.Errorf("invalid website: %w", err)
	}

	res, err := whttp.Get(ctx, base.String(), pageLimit)
	if err != nil {
		return "", err
	}
	if err := res.OK(); err != nil {
		return "", err
	}
	utils.Log.WithField("title", res.Title).Debugf("Looking for a logo on %s", res.URL)

	ref, err := FindLogo(bytes.NewReader(res.Body), base)
	if err != nil {
		return "", err
	}
	return Load(ctx, ref)
}

// FindLogo returns the absolute URL of the first logo candidate in an HTML page.
func FindLogo(page io.Reader, base *url.URL) (string, error) {
	doc, err := goquery.NewDocumentFromReader(page)
	if err != nil {
		return "", fmt.Errorf("failed to parse page: %w", err)
	}
	for _, c := range logoSelectors {
		v, ok := doc.Find(c.selector).First().Attr(c.attr)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			continue
		}
		ref, err := url.Parse(v)
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref)
		if abs.Scheme != "http" && abs.Scheme != "https" {
			continue
		}
		return abs.String(), nil
	}
	return "", ErrNoLogo
}
