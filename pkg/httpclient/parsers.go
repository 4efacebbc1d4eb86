package httpclient

import (
	"net/http"
	"strconv"
	"time"
)

// ParseRetryAfter reads the standard Retry-After header, in either
// delta-seconds or HTTP-date form.
func ParseRetryAfter(headers http.Header) RateLimitInfo {
	info := RateLimitInfo{}
	value := headers.Get("Retry-After")
	if value == "" {
		return info
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		info.RetryAfter = time.Duration(seconds) * time.Second
		return info
	}
	if at, err := http.ParseTime(value); err == nil {
		info.ResetTime = at.Unix()
	}
	return info
}

// ParseOpenAIHeaders extracts rate limit info from OpenAI API headers.
func ParseOpenAIHeaders(headers http.Header) RateLimitInfo {
	info := ParseRetryAfter(headers)

	if info.RetryAfter == 0 {
		// x-ratelimit-reset-requests uses Go-style durations such as "1s" or "6m0s".
		if reset := headers.Get("x-ratelimit-reset-requests"); reset != "" {
			if d, err := time.ParseDuration(reset); err == nil {
				info.RetryAfter = d
			}
		}
	}

	if remaining := headers.Get("x-ratelimit-remaining-requests"); remaining != "" {
		info.RequestsRemaining, _ = strconv.Atoi(remaining)
	}
	if remaining := headers.Get("x-ratelimit-remaining-tokens"); remaining != "" {
		info.TokensRemaining, _ = strconv.Atoi(remaining)
	}

	return info
}
