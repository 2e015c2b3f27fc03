package httpretry

import (
	"context"
	"errors"
	"net"
	"os"
)

// isCanceled reports whether a transport failure is a deliberate
// cancellation of the calling context. Cancellations abort the retry loop
// immediately; completing extra attempts after the caller gave up would be
// silent wasted work.
func isCanceled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// isTimeout classifies a transport failure as a timeout (waiting for
// response headers or body). Only timeout failures are gated by
// RetryConfig.RetryOnTimeout; all other transport failures — connection
// refused, connection reset, DNS trouble — retry unconditionally within the
// attempt budget.
//
// Callers must check isCanceled first: context.DeadlineExceeded also
// satisfies net.Error's Timeout.
func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, os.ErrDeadlineExceeded)
}
