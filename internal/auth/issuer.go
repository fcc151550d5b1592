package auth

import (
	"context"
	"crypto/ed25519"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"strings"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/lestrrat-go/jwx/v3/jwt"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"

	"github.com/climabridge/climabridge/internal/cache"
	"github.com/climabridge/climabridge/internal/config"
)

// TokenCacheKey is the constant cache key for the upstream credential. The
// cache's at-most-one-fresh-entry guarantee is what keeps a single credential
// active per validity window.
const TokenCacheKey = "qweather:jwt:token"

// credentialValidity is the window the upstream accepts a credential for.
// The cache TTL (cache.TTLToken) is shorter, so a cached credential is always
// refreshed before the upstream would reject it as expired.
const credentialValidity = 24 * time.Hour

// Credential is an issued upstream bearer credential. Immutable once created;
// renewal supersedes it with a new value rather than mutating it.
type Credential struct {
	Token     string    `json:"token"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// SigningError indicates the signing key material is malformed or a signature
// operation failed. It is fatal at startup validation and never retried
// per-request.
type SigningError struct {
	err error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("credential signing failed: %v", e.err)
}

func (e *SigningError) Unwrap() error { return e.err }

// Status implements the HTTP status mapping used by the boundary layer.
func (e *SigningError) Status() (int, string) {
	return 500, "credential signing failed"
}

// Issuer mints the EdDSA-signed JWT the upstream provider requires, and
// memoizes it through the cache so the signature operation runs once per
// validity window.
type Issuer struct {
	store   cache.Store[Credential]
	key     jwk.Key
	subject string
	now     func() time.Time
}

// NewIssuer parses and validates the configured signing key, failing with
// SigningError if the key material is unusable. Validation happens here so a
// bad key is caught at startup rather than on the first upstream call.
func NewIssuer(cfg config.QWeatherConfig, store cache.Store[Credential]) (*Issuer, error) {
	raw, err := parsePrivateKey(cfg.PrivateKey)
	if err != nil {
		return nil, &SigningError{err: err}
	}

	key, err := jwk.Import(raw)
	if err != nil {
		return nil, &SigningError{err: fmt.Errorf("importing signing key: %w", err)}
	}

	if err := key.Set(jwk.KeyIDKey, cfg.KeyID); err != nil {
		return nil, &SigningError{err: fmt.Errorf("setting key ID: %w", err)}
	}

	return &Issuer{
		store:   store,
		key:     key,
		subject: cfg.ProjectID,
		now:     time.Now,
	}, nil
}

// Issue returns the active credential, signing a new one only when the cached
// value has passed its safety-margin TTL. Concurrent cold-cache calls may
// each sign (last write wins); subsequent calls reuse the cached credential.
func (i *Issuer) Issue(ctx context.Context) (Credential, error) {
	return cache.GetOrLoad(ctx, i.store, TokenCacheKey, i.generate, nil)
}

// Token implements oauth2.TokenSource, allowing the issuer to back an
// oauth2.Transport on the upstream HTTP client.
func (i *Issuer) Token() (*oauth2.Token, error) {
	cred, err := i.Issue(context.Background())
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: cred.Token,
		TokenType:   "Bearer",
		Expiry:      cred.ExpiresAt,
	}, nil
}

func (i *Issuer) generate(ctx context.Context) (Credential, error) {
	now := i.now()
	exp := now.Add(credentialValidity)

	log.Info().Time("expiry", exp).Msg("signing upstream credential")

	token, err := jwt.NewBuilder().
		Subject(i.subject).
		IssuedAt(now).
		Expiration(exp).
		Build()
	if err != nil {
		return Credential{}, &SigningError{err: fmt.Errorf("build JWT claims: %w", err)}
	}

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.EdDSA(), i.key))
	if err != nil {
		return Credential{}, &SigningError{err: fmt.Errorf("sign JWT: %w", err)}
	}

	return Credential{
		Token:     string(signed),
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// parsePrivateKey accepts the PKCS#8 Ed25519 key either PEM-armoured or as
// the bare base64 body with the BEGIN/END lines already stripped.
func parsePrivateKey(material string) (ed25519.PrivateKey, error) {
	material = strings.TrimSpace(material)
	if material == "" {
		return nil, fmt.Errorf("private key material is empty")
	}

	var der []byte
	if strings.Contains(material, "-----BEGIN") {
		block, _ := pem.Decode([]byte(material))
		if block == nil {
			return nil, fmt.Errorf("private key PEM decoding failed")
		}
		der = block.Bytes
	} else {
		compact := strings.Join(strings.Fields(material), "")
		decoded, err := base64.StdEncoding.DecodeString(compact)
		if err != nil {
			return nil, fmt.Errorf("private key base64 decoding failed: %w", err)
		}
		der = decoded
	}

	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("private key PKCS#8 parsing failed: %w", err)
	}

	edKey, ok := parsed.(ed25519.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is %T, expected Ed25519", parsed)
	}

	return edKey, nil
}
