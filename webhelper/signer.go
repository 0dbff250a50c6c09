package webhelper

import (
	"strconv"
	"strings"
	"time"
)

// Param is an extra query parameter appended to a signed URL as-is.
type Param struct {
	Key   string
	Value string
}

// Signer builds webhelper URLs carrying the CORS pair, a cache buster and
// optionally the session's tokens.
type Signer struct {
	OAuth string
	CSRF  string
	Now   func() time.Time
}

// Build returns base/path with the query string the webhelper expects. The
// empty ref and cors parameters are required by the webhelper's CORS policy.
// Extra params are appended verbatim and in order.
func (s Signer) Build(base, path string, oauth, csrf bool, params ...Param) string {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}

	var b strings.Builder
	b.WriteString(strings.TrimSuffix(base, "/"))
	b.WriteByte('/')
	b.WriteString(strings.TrimPrefix(path, "/"))
	if strings.Contains(path, "?") {
		b.WriteByte('&')
	} else {
		b.WriteByte('?')
	}
	b.WriteString("ref=&cors=&_=")
	b.WriteString(strconv.FormatInt(now().Unix(), 10))
	if oauth {
		b.WriteString("&oauth=")
		b.WriteString(s.OAuth)
	}
	if csrf {
		b.WriteString("&csrf=")
		b.WriteString(s.CSRF)
	}
	for _, p := range params {
		b.WriteByte('&')
		b.WriteString(p.Key)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}
