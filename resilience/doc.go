// Package resilience provides the retry and throttling primitives used by the
// upstream clients of a build run.
//
// This package includes:
//   - Retry: retries transient failures with exponential backoff and jitter
//   - RateLimiter: client-side token bucket that spaces outbound requests
//   - Clock: the time seam both of them (and the GitHub client) sleep on, so
//     tests can drive waits with a fake clock
//
//	rl := resilience.NewRateLimiter(resilience.RateLimiterConfig{Rate: 10, Burst: 20})
//	page, err := resilience.Retry(ctx, cfg, func() (*Page, error) {
//	    if err := rl.Wait(ctx); err != nil {
//	        return nil, err
//	    }
//	    return fetchPage(ctx)
//	})
package resilience
