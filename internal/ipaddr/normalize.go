package ipaddr

import (
	"fmt"
	"net/netip"
	"strings"

	"whitegate/internal/domain"
)

// InvalidFormatError reports an input that is neither a valid address nor a
// valid CIDR block.
type InvalidFormatError struct {
	Input string
	Err   error
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("ipaddr: invalid address format %q: %v", e.Input, e.Err)
}

func (e *InvalidFormatError) Unwrap() error {
	return e.Err
}

// Normalize validates input and returns its kind (ipv4, ipv6 or range) along
// with the canonical textual form. Inputs containing a slash are parsed as
// CIDR blocks; host bits outside the network are masked, not rejected.
func Normalize(input string) (kind, canonical string, err error) {
	trimmed := strings.TrimSpace(input)

	if strings.Contains(trimmed, "/") {
		prefix, err := netip.ParsePrefix(trimmed)
		if err != nil {
			return "", "", &InvalidFormatError{Input: input, Err: err}
		}
		return domain.KindRange, prefix.Masked().String(), nil
	}

	addr, err := netip.ParseAddr(trimmed)
	if err != nil {
		return "", "", &InvalidFormatError{Input: input, Err: err}
	}
	if addr.Is4() {
		return domain.KindIPv4, addr.String(), nil
	}
	return domain.KindIPv6, addr.String(), nil
}

// Classify buckets an address into a coarse location class: loopback and
// link-local map to local, RFC 1918/ULA space to internal, everything else
// (including unparseable input) to external.
func Classify(address string) string {
	addr, err := netip.ParseAddr(strings.Trim(address, "[]"))
	if err != nil {
		return domain.LocationExternal
	}

	if addr.IsLoopback() || addr.IsLinkLocalUnicast() || addr.IsLinkLocalMulticast() {
		return domain.LocationLocal
	}
	if addr.IsPrivate() {
		return domain.LocationInternal
	}
	return domain.LocationExternal
}
