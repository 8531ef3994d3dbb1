package httpclient

import (
	"strconv"
	"strings"
	"time"
)

// Header names used by rate-limited APIs.
const (
	HeaderRateLimitLimit     = "X-RateLimit-Limit"
	HeaderRateLimitRemaining = "X-RateLimit-Remaining"
	HeaderRateLimitReset     = "X-RateLimit-Reset"
	HeaderRetryAfter         = "Retry-After"
	HeaderLink               = "Link"
)

// RateLimit is the quota state reported by an upstream.
type RateLimit struct {
	// Limit is the quota size, -1 when absent.
	Limit int
	// Remaining is the requests left in the window, -1 when absent.
	Remaining int
	// Reset is when the window resets. Zero when absent.
	Reset time.Time
	// RetryAfter is the server-requested delay. Zero when absent.
	RetryAfter time.Duration
}

// ParseRateLimit reads the X-RateLimit-* and Retry-After headers.
func ParseRateLimit(headers map[string]string) RateLimit {
	rl := RateLimit{Limit: -1, Remaining: -1}
	if n, err := strconv.Atoi(headerValue(headers, HeaderRateLimitLimit)); err == nil {
		rl.Limit = n
	}
	if n, err := strconv.Atoi(headerValue(headers, HeaderRateLimitRemaining)); err == nil {
		rl.Remaining = n
	}
	if n, err := strconv.ParseInt(headerValue(headers, HeaderRateLimitReset), 10, 64); err == nil && n > 0 {
		rl.Reset = time.Unix(n, 0).UTC()
	}
	if v := headerValue(headers, HeaderRetryAfter); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs >= 0 {
			rl.RetryAfter = time.Duration(secs) * time.Second
		}
	}
	return rl
}

// Wait returns how long to pause before the quota is usable again, measured
// from now. Retry-After wins over the reset timestamp. Returns fallback when
// neither header is present.
func (r RateLimit) Wait(now time.Time, fallback time.Duration) time.Duration {
	if r.RetryAfter > 0 {
		return r.RetryAfter
	}
	if !r.Reset.IsZero() {
		if d := r.Reset.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return fallback
}

// NextLink extracts the rel="next" target from an RFC 8288 Link header.
// Returns "" when there is no next page.
func NextLink(headers map[string]string) string {
	return linkRel(headerValue(headers, HeaderLink), "next")
}

func linkRel(header, rel string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.TrimSpace(segs[0])
		if !strings.HasPrefix(target, "<") || !strings.HasSuffix(target, ">") {
			continue
		}
		for _, p := range segs[1:] {
			k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
			if !ok || strings.TrimSpace(k) != "rel" {
				continue
			}
			for _, r := range strings.Fields(strings.Trim(strings.TrimSpace(v), `"`)) {
				if r == rel {
					return target[1 : len(target)-1]
				}
			}
		}
	}
	return ""
}
