package networks

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

// Origin is a serialized scheme://host[:port] tuple. The zero value means
// "no origin" and selects the coin's global chain.
type Origin struct {
	scheme string
	host   string
	opaque bool
}

// ParseOrigin accepts an origin or a full URL. "null", data: and about:
// origins are opaque.
func ParseOrigin(raw string) (Origin, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Origin{}, nil
	}
	if raw == "null" {
		return Origin{opaque: true}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Origin{}, errors.Wrapf(err, "networks: parse origin %q", raw)
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "":
		return Origin{}, errors.Newf("networks: origin %q has no scheme", raw)
	case "data", "about", "javascript", "blob":
		return Origin{scheme: scheme, opaque: true}, nil
	}
	if u.Host == "" {
		return Origin{scheme: scheme, opaque: true}, nil
	}

	host := strings.ToLower(u.Hostname())
	port := u.Port()
	if (scheme == "https" && port == "443") || (scheme == "http" && port == "80") {
		port = ""
	}
	if port != "" {
		host += ":" + port
	}
	return Origin{scheme: scheme, host: host}, nil
}

func (o Origin) IsZero() bool { return o == Origin{} }

func (o Origin) Opaque() bool { return o.opaque }

// IsWeb reports an http(s) origin, the only kind that gets its own chain.
func (o Origin) IsWeb() bool {
	return !o.opaque && (o.scheme == "http" || o.scheme == "https")
}

func (o Origin) String() string {
	if o.opaque {
		return "null"
	}
	if o.IsZero() {
		return ""
	}
	return o.scheme + "://" + o.host
}

// NormalizeOrigin returns the serialized origin, "" for empty or opaque input.
func NormalizeOrigin(raw string) string {
	o, err := ParseOrigin(raw)
	if err != nil || o.Opaque() {
		return ""
	}
	return o.String()
}
