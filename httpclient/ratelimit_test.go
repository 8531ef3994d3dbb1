package httpclient

import (
	"testing"
	"time"
)

func TestParseRateLimit_Absent(t *testing.T) {
	rl := ParseRateLimit(nil)
	if rl.Limit != -1 || rl.Remaining != -1 || !rl.Reset.IsZero() || rl.RetryAfter != 0 {
		t.Errorf("unexpected: %+v", rl)
	}
}

func TestRateLimit_Wait(t *testing.T) {
	now := time.Unix(1000, 0)

	rl := RateLimit{Reset: time.Unix(1030, 0)}
	if got := rl.Wait(now, time.Minute); got != 30*time.Second {
		t.Errorf("reset wait = %v, want 30s", got)
	}

	rl.RetryAfter = 5 * time.Second
	if got := rl.Wait(now, time.Minute); got != 5*time.Second {
		t.Errorf("retry-after should win, got %v", got)
	}

	past := RateLimit{Reset: time.Unix(900, 0)}
	if got := past.Wait(now, time.Minute); got != 0 {
		t.Errorf("past reset should not wait, got %v", got)
	}

	if got := (RateLimit{}).Wait(now, time.Minute); got != time.Minute {
		t.Errorf("expected fallback, got %v", got)
	}
}

func TestParseRateLimit_RetryAfter(t *testing.T) {
	rl := ParseRateLimit(map[string]string{"Retry-After": "60", "X-Ratelimit-Limit": "5000"})
	if rl.RetryAfter != time.Minute || rl.Limit != 5000 {
		t.Errorf("unexpected: %+v", rl)
	}
}

func TestNextLink(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"none", "", ""},
		{
			"next and last",
			`<https://api.github.com/repositories/1/issues?page=2>; rel="next", <https://api.github.com/repositories/1/issues?page=5>; rel="last"`,
			"https://api.github.com/repositories/1/issues?page=2",
		},
		{
			"last page",
			`<https://api.github.com/repositories/1/issues?page=4>; rel="prev", <https://api.github.com/repositories/1/issues?page=1>; rel="first"`,
			"",
		},
		{"unquoted rel", `<https://x/?page=3>; rel=next`, "https://x/?page=3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextLink(map[string]string{"Link": tt.header})
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}
