package auth

import (
	"strings"

	"github.com/mssola/useragent"
)

// DescribeDevice turns a User-Agent header into a short human-readable
// description for the audit trail, e.g. "Chrome 120 on Linux (desktop)".
func DescribeDevice(userAgentString string) string {
	if strings.TrimSpace(userAgentString) == "" {
		return "unknown device"
	}

	ua := useragent.New(userAgentString)
	browser, version := ua.Browser()
	os := ua.OS()

	kind := "desktop"
	switch {
	case ua.Bot():
		kind = "bot"
	case ua.Mobile():
		kind = "mobile"
	}

	var b strings.Builder
	if browser != "" {
		b.WriteString(browser)
		if version != "" {
			if major, _, found := strings.Cut(version, "."); found || major != "" {
				b.WriteString(" " + major)
			}
		}
	} else {
		b.WriteString("unknown browser")
	}
	if os != "" {
		b.WriteString(" on " + os)
	}
	b.WriteString(" (" + kind + ")")
	return b.String()
}
