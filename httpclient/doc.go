// Package httpclient provides the HTTP adapter used to talk to upstream APIs
// during a build, with authentication, retry of transient failures,
// client-side rate limiting and typed error classification.
//
// # Basic Usage
//
//	client, err := httpclient.New(httpclient.Config{
//	    BaseURL: "https://api.github.com",
//	    Timeout: 30 * time.Second,
//	    Auth:    httpclient.BearerAuth(token),
//	})
//
//	page, err := httpclient.Get[[]Issue](client, ctx, "/repos/dotnet/runtime/issues",
//	    httpclient.WithQueryParam("per_page", "100"))
//
// Failed requests return *Error. Rate-limit responses carry the parsed
// RateLimit (reset time, retry-after) so callers can wait instead of failing.
package httpclient
