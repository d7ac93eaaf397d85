package clerk

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/MicahParks/jwkset"
	"github.com/MicahParks/keyfunc/v3"
	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates session tokens issued by the identity provider.
// Tokens are RS256 JWTs; signatures are checked against the provider's
// published JWK set, which a background refresher keeps current.
type Verifier struct {
	jwks   keyfunc.Keyfunc
	leeway time.Duration
}

// NewVerifier builds a Verifier from the provider's JWKS URL. The key
// set is fetched lazily and refreshed on the given interval, so the
// process starts even while the provider is unreachable.
func NewVerifier(jwksURL string, refreshInterval time.Duration) (*Verifier, error) {
	if jwksURL == "" {
		return nil, errors.New("clerk: jwks url is required")
	}
	storage, err := jwkset.NewStorageFromHTTP(jwksURL, jwkset.HTTPClientStorageOptions{
		Client:                    &http.Client{Timeout: 10 * time.Second},
		NoErrorReturnFirstHTTPReq: true,
		RefreshInterval:           refreshInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("clerk: jwks storage: %w", err)
	}
	kf, err := keyfunc.New(keyfunc.Options{Storage: storage})
	if err != nil {
		return nil, fmt.Errorf("clerk: keyfunc: %w", err)
	}
	return &Verifier{jwks: kf, leeway: 5 * time.Second}, nil
}

// NewVerifierWithKeyfunc builds a Verifier around a prepared keyfunc.
// Used by tests to substitute a static key set.
func NewVerifierWithKeyfunc(kf keyfunc.Keyfunc) *Verifier {
	return &Verifier{jwks: kf, leeway: 5 * time.Second}
}

// Verify checks the token's signature and registered claims and
// returns the subject id. Any failure, including an empty subject,
// yields an error; callers translate it to a 401.
func (v *Verifier) Verify(ctx context.Context, tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, v.jwks.KeyfuncCtx(ctx),
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(v.leeway),
	)
	if err != nil {
		return "", err
	}
	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid {
		return "", errors.New("clerk: invalid token")
	}
	if claims.Subject == "" {
		return "", errors.New("clerk: token has no subject")
	}
	return claims.Subject, nil
}
