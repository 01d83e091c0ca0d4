// Package service provides the token wire codec, key import helpers, JWKS
// publication, and client secret generation.
package service

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	tokenDomain "github.com/keygateio/keygate/internal/token/domain"
)

// Outcome is the result of a cryptographic verification. It only reports
// structural validity, expiry, and signature correctness; business claims
// (version, scopes) are the verification engine's job.
type Outcome struct {
	Valid  bool
	Reason tokenDomain.DeniedReason
}

// Codec encodes, signs, decodes, and verifies compact JWTs.
//
// Decode performs no verification and must never be trusted alone. Verify
// checks in order: structure, exp, signature.
type Codec interface {
	// Encode builds the unsigned "header.payload" signing string.
	Encode(header tokenDomain.Header, claims *tokenDomain.Claims) (string, error)

	// Sign builds a complete signed token. The key must be []byte for HS256
	// or *rsa.PrivateKey for RS256, matching header.Algorithm.
	Sign(header tokenDomain.Header, claims *tokenDomain.Claims, key any) (string, error)

	// Decode splits and parses a token without verifying it.
	Decode(token string) (*tokenDomain.Header, *tokenDomain.Claims, error)

	// Verify checks the token against a single key. The key must be []byte
	// for HS256 or *rsa.PublicKey for RS256.
	Verify(token string, key any, alg string) Outcome
}

type codec struct {
	now func() time.Time
}

// NewCodec creates a new token codec.
func NewCodec() Codec {
	return &codec{now: time.Now}
}

func (c *codec) Encode(header tokenDomain.Header, claims *tokenDomain.Claims) (string, error) {
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return "", ErrTokenEncoding
	}
	claimsJSON, err := json.Marshal(claims)
	if err != nil {
		return "", ErrTokenEncoding
	}
	return base64.RawURLEncoding.EncodeToString(headerJSON) + "." +
		base64.RawURLEncoding.EncodeToString(claimsJSON), nil
}

func (c *codec) Sign(header tokenDomain.Header, claims *tokenDomain.Claims, key any) (string, error) {
	method, err := signingMethod(header.Algorithm)
	if err != nil {
		return "", err
	}

	signingString, err := c.Encode(header, claims)
	if err != nil {
		return "", err
	}

	signature, err := method.Sign(signingString, key)
	if err != nil {
		return "", ErrTokenSigning
	}

	return signingString + "." + base64.RawURLEncoding.EncodeToString(signature), nil
}

func (c *codec) Decode(token string) (*tokenDomain.Header, *tokenDomain.Claims, error) {
	segments := strings.Split(token, ".")
	if len(segments) != 3 {
		return nil, nil, ErrMalformedToken
	}

	headerJSON, err := base64.RawURLEncoding.DecodeString(segments[0])
	if err != nil {
		return nil, nil, ErrMalformedToken
	}
	var header tokenDomain.Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, ErrMalformedToken
	}

	claimsJSON, err := base64.RawURLEncoding.DecodeString(segments[1])
	if err != nil {
		return nil, nil, ErrMalformedToken
	}
	var claims tokenDomain.Claims
	if err := json.Unmarshal(claimsJSON, &claims); err != nil {
		return nil, nil, ErrMalformedToken
	}

	return &header, &claims, nil
}

func (c *codec) Verify(token string, key any, alg string) Outcome {
	_, claims, err := c.Decode(token)
	if err != nil {
		return Outcome{Reason: tokenDomain.ReasonBadJWT}
	}

	if claims.Expired(c.now()) {
		return Outcome{Reason: tokenDomain.ReasonExpired}
	}

	method, err := signingMethod(alg)
	if err != nil {
		return Outcome{Reason: tokenDomain.ReasonInvalidSignature}
	}

	lastDot := strings.LastIndex(token, ".")
	signingString := token[:lastDot]
	signature, err := base64.RawURLEncoding.DecodeString(token[lastDot+1:])
	if err != nil {
		return Outcome{Reason: tokenDomain.ReasonBadJWT}
	}

	if err := method.Verify(signingString, signature, key); err != nil {
		return Outcome{Reason: tokenDomain.ReasonInvalidSignature}
	}

	return Outcome{Valid: true}
}

// signingMethod maps a header algorithm name to its jwt implementation.
func signingMethod(alg string) (jwt.SigningMethod, error) {
	switch alg {
	case tokenDomain.AlgHS256:
		return jwt.SigningMethodHS256, nil
	case tokenDomain.AlgRS256:
		return jwt.SigningMethodRS256, nil
	default:
		return nil, ErrUnsupportedSigningAlg
	}
}
