// Package geo defines the country-lookup collaborator used to stamp
// posts with an author country. The real resolver is deployment
// specific (GeoIP database, edge header, etc).
package geo

import "net/netip"

type Geolocator interface {
	// CountryCode returns a two-letter country code for the address,
	// or "" when unknown.
	CountryCode(addr netip.Addr) string
}

// Noop is used when author-country stamping is disabled.
type Noop struct{}

func (Noop) CountryCode(netip.Addr) string { return "" }

// Static resolves every address to a fixed code. Handy in tests and
// single-region deployments.
type Static string

func (s Static) CountryCode(netip.Addr) string { return string(s) }
