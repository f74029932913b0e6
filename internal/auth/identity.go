package auth

import "fmt"

// Vendor identifies a third-party identity provider.
type Vendor string

const (
	VendorApple  Vendor = "apple"
	VendorGoogle Vendor = "google"
)

// ParseVendor maps a route parameter to a known vendor.
func ParseVendor(s string) (Vendor, error) {
	switch Vendor(s) {
	case VendorApple:
		return VendorApple, nil
	case VendorGoogle:
		return VendorGoogle, nil
	}
	return "", fmt.Errorf("unknown identity vendor: %s", s)
}

// VerifiedIdentity is the result of verifying an identity token.
// It contains facts only, no decisions, and is never persisted.
type VerifiedIdentity struct {
	Vendor   Vendor
	Subject  string // vendor-scoped stable user identifier (sub)
	Email    string // email claim, may be empty
	Issuer   string
	Audience string
	Nonce    string
}
