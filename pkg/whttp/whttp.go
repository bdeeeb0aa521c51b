// Package whttp fetches remote pages and images for the school profile.
package whttp

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type Res struct {
	StatusCode int
	Status     string
	URL        string
	Title      string
	Body       []byte
}

var client = newClient()

func newClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.Logger = log.New(io.Discard, "", 0)
	c.RetryMax = 3
	return c
}

// Get fetches url and reads at most limit bytes of the body. A body longer
// than limit is cut; callers that care read limit+1 and compare.
func Get(ctx context.Context, url string, limit int64) (*Res, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	// Set common headers
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64; rv:83.0) Gecko/20100101 Firefox/83.0")
	req.Header.Set("Accept-Language", "en")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", url, err)
	}
	res := &Res{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		URL:        resp.Request.URL.String(),
		Body:       body,
	}
	if strings.Contains(resp.Header.Get("Content-Type"), "html") {
		res.Title = title(body)
	}
	return res, nil
}

// OK turns a non-200 response into an error.
func (r *Res) OK() error {
	if r.StatusCode != http.StatusOK {
		return fmt.Errorf("failed to fetch %s: %s", r.URL, r.Status)
	}
	return nil
}

func title(body []byte) string {
	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return ""
	}
	t, _ := traverse(doc)
	return strings.Join(strings.Fields(t), " ")
}

func traverse(n *html.Node) (string, bool) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Title {
		if n.FirstChild != nil {
			return n.FirstChild.Data, true
		}
		return "", true
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		result, ok := traverse(c)
		if ok {
			return result, ok
		}
	}

	return "", false
}
