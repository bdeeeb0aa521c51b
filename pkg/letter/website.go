package letter

import (
	"net/url"
	"strings"

	"github.com/weppos/publicsuffix-go/publicsuffix"
)

// DisplayWebsite turns a stored website into the form printed on the
// letterhead: "https://www.example.com/" becomes "www.example.com". Values that
// do not hold a registrable domain are printed as typed.
func DisplayWebsite(site string) string {
	site = strings.TrimSpace(site)
	if site == "" {
		return ""
	}

	raw := site
	// url.Parse only finds the host when a scheme is present.
	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return site
	}
	host := u.Hostname()
	if !strings.Contains(host, ".") {
		return site
	}
	if _, err := publicsuffix.Domain(host); err != nil {
		return site
	}

	path := strings.TrimSuffix(u.EscapedPath(), "/")
	return host + path
}
