// Package httputil provides the HTTP plumbing of the API client.
//
//   - [NewClient]: an http.Client with a request timeout
//   - [CheckStatus]: maps response status codes onto coded errors
//   - [Retry]: automatic retry with exponential backoff
//
// Transient failures (network errors and 5xx responses) are wrapped in
// [RetryableError] so that [Retry] attempts the request again; client
// errors are returned immediately.
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return &httputil.RetryableError{Err: err}
//	    }
//	    defer resp.Body.Close()
//	    return httputil.CheckStatus(resp)
//	})
package httputil
