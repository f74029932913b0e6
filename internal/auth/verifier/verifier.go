package verifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/ywdonga/DiduServer/internal/auth"
)

var (
	ErrInvalidSignature = errors.New("identity token signature invalid")
	ErrTokenExpired     = errors.New("identity token expired")
	ErrInvalidIssuer    = errors.New("identity token issuer invalid")
	ErrInvalidAudience  = errors.New("identity token audience invalid")
	ErrInvalidNonce     = errors.New("identity token nonce invalid")
)

// VendorConfig describes one identity vendor: where its signing keys
// live and which issuer/audience its tokens must carry.
type VendorConfig struct {
	Issuer   string
	Audience string
	JWKSURL  string
}

type vendorKeys struct {
	cfg  VendorConfig
	keys oidc.KeySet
}

// Verifier validates externally issued identity tokens against each
// vendor's published JWK set. It is a pure validation layer: no
// persistence, safe to retry.
type Verifier struct {
	vendors map[auth.Vendor]vendorKeys
}

// New builds a verifier for the two supported vendors. Key sets are
// fetched lazily and cached by go-oidc; concurrent fetches for the same
// vendor are deduplicated inside the key set.
func New(ctx context.Context, apple, google VendorConfig) *Verifier {
	return &Verifier{
		vendors: map[auth.Vendor]vendorKeys{
			auth.VendorApple:  {cfg: apple, keys: oidc.NewRemoteKeySet(ctx, apple.JWKSURL)},
			auth.VendorGoogle: {cfg: google, keys: oidc.NewRemoteKeySet(ctx, google.JWKSURL)},
		},
	}
}

// audience accepts both JSON encodings of the aud claim.
type audience []string

func (a *audience) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*a = audience{single}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*a = many
	return nil
}

func (a audience) contains(want string) bool {
	for _, aud := range a {
		if aud == want {
			return true
		}
	}
	return false
}

type claims struct {
	Issuer   string   `json:"iss"`
	Audience audience `json:"aud"`
	Subject  string   `json:"sub"`
	Email    string   `json:"email"`
	Nonce    string   `json:"nonce"`
	Expiry   int64    `json:"exp"`
}

// Verify checks the token signature against the vendor's key set, then
// the issuer, audience, expiry and session-bound nonce, in that order.
// On success it returns the decoded identity facts.
func (v *Verifier) Verify(ctx context.Context, vendor auth.Vendor, rawToken, sessionNonce string) (*auth.VerifiedIdentity, error) {
	vk, ok := v.vendors[vendor]
	if !ok {
		return nil, fmt.Errorf("verifier: vendor %q not configured", vendor)
	}

	payload, err := vk.keys.VerifySignature(ctx, rawToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	var c claims
	if err := json.Unmarshal(payload, &c); err != nil {
		return nil, fmt.Errorf("%w: malformed claims", ErrInvalidSignature)
	}

	if c.Issuer != vk.cfg.Issuer {
		return nil, fmt.Errorf("%w: got %q", ErrInvalidIssuer, c.Issuer)
	}

	if !c.Audience.contains(vk.cfg.Audience) {
		return nil, ErrInvalidAudience
	}

	if c.Expiry != 0 && time.Now().After(time.Unix(c.Expiry, 0)) {
		return nil, ErrTokenExpired
	}

	// An absent session nonce fails the same way as a mismatch: the
	// caller must have stashed one earlier in the same session.
	if sessionNonce == "" || c.Nonce != sessionNonce {
		return nil, ErrInvalidNonce
	}

	return &auth.VerifiedIdentity{
		Vendor:   vendor,
		Subject:  c.Subject,
		Email:    c.Email,
		Issuer:   c.Issuer,
		Audience: vk.cfg.Audience,
		Nonce:    c.Nonce,
	}, nil
}
