package errs

import (
	"errors"
	"net"
	"syscall"
)

// IsOffline reports whether a transport error indicates lost connectivity:
// refused or reset connections, unreachable networks or hosts, failed DNS
// lookups and dial failures. Taxonomy errors are never offline. The caller
// decides whether to retry.
func IsOffline(err error) bool {
	if err == nil || IsTaxonomy(err) {
		return false
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED),
		errors.Is(err, syscall.ECONNRESET),
		errors.Is(err, syscall.ENETUNREACH),
		errors.Is(err, syscall.EHOSTUNREACH),
		errors.Is(err, syscall.ENETDOWN):
		return true
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return !dnsErr.IsTimeout
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return opErr.Op == "dial"
	}

	return false
}
