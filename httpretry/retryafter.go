package httpretry

import (
	"errors"
	"net/http"
	"strconv"
	"time"
)

// Parse failure reasons returned by ParseRetryAfter. Match with errors.Is.
var (
	// ErrRetryAfterEmpty is returned for an empty header value. Callers are
	// expected to check header presence first; this fails closed if they don't.
	ErrRetryAfterEmpty = errors.New("httpretry: empty Retry-After value")

	// ErrRetryAfterSeconds is returned when an all-digits value cannot be
	// converted to a non-negative number of seconds (e.g. overflow).
	ErrRetryAfterSeconds = errors.New("httpretry: invalid Retry-After seconds")

	// ErrRetryAfterPast is returned when the header carries a date that has
	// already passed.
	ErrRetryAfterPast = errors.New("httpretry: Retry-After date already passed")

	// ErrRetryAfterFormat is returned when the value is neither delta-seconds
	// nor a recognizable date.
	ErrRetryAfterFormat = errors.New("httpretry: unrecognized Retry-After format")
)

// ParseRetryAfter converts a raw Retry-After header value into a wait
// duration.
//
// Two forms are accepted, per RFC 7231 section 7.1.3:
//
//   - delta-seconds: "120" means wait 120 seconds
//   - HTTP-date: "Fri, 31 Dec 1999 23:59:59 GMT" means wait until that instant
//
// RFC 3339 timestamps are also accepted, since some servers emit them in
// place of HTTP-dates. For date forms the returned duration is the distance
// from now to the parsed instant.
//
// ParseRetryAfter is exported for callers building their own DelayResolver;
// the resolver returned by NewBackoffResolver uses it internally.
func ParseRetryAfter(value string) (time.Duration, error) {
	return parseRetryAfterAt(value, time.Now())
}

// parseRetryAfterAt is the clock-injected form used by tests.
func parseRetryAfterAt(value string, now time.Time) (time.Duration, error) {
	if value == "" {
		return 0, ErrRetryAfterEmpty
	}

	if allDigits(value) {
		secs, err := strconv.ParseInt(value, 10, 64)
		if err != nil || secs < 0 {
			return 0, ErrRetryAfterSeconds
		}
		return time.Duration(secs) * time.Second, nil
	}

	at, ok := parseRetryAfterDate(value)
	if !ok {
		return 0, ErrRetryAfterFormat
	}

	delay := at.Sub(now)
	if delay < 0 {
		return 0, ErrRetryAfterPast
	}
	return delay, nil
}

func parseRetryAfterDate(value string) (time.Time, bool) {
	// http.ParseTime covers the three HTTP-date layouts (RFC 1123, RFC 850,
	// ANSI C asctime).
	if at, err := http.ParseTime(value); err == nil {
		return at, true
	}
	if at, err := time.Parse(time.RFC3339, value); err == nil {
		return at, true
	}
	return time.Time{}, false
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}
