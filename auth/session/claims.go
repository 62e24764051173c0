package session

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of a session token.
type Claims struct {
	Subject   string             `json:"sub"`
	Email     string             `json:"email"`
	IssuedAt  *gojwt.NumericDate `json:"iat"`
	ExpiresAt *gojwt.NumericDate `json:"exp"`
}

var _ gojwt.Claims = (*Claims)(nil)

func (c *Claims) GetExpirationTime() (*gojwt.NumericDate, error) { return c.ExpiresAt, nil }
func (c *Claims) GetIssuedAt() (*gojwt.NumericDate, error)       { return c.IssuedAt, nil }
func (c *Claims) GetNotBefore() (*gojwt.NumericDate, error)      { return nil, nil }
func (c *Claims) GetIssuer() (string, error)                     { return "", nil }
func (c *Claims) GetSubject() (string, error)                    { return c.Subject, nil }
func (c *Claims) GetAudience() (gojwt.ClaimStrings, error)       { return nil, nil }

// Validate is called by the jwt parser after the registered claims pass.
// exp is enforced by the parser itself.
func (c *Claims) Validate() error {
	switch {
	case c.Subject == "":
		return errors.New("missing sub claim")
	case c.Email == "":
		return errors.New("missing email claim")
	case c.IssuedAt == nil:
		return errors.New("missing iat claim")
	}
	return nil
}

// UnmarshalJSON rejects payloads carrying claims other than the four above.
func (c *Claims) UnmarshalJSON(data []byte) error {
	type plain Claims
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	var p plain
	if err := dec.Decode(&p); err != nil {
		return err
	}
	*c = Claims(p)
	return nil
}

// Expiry returns exp as a time, or the zero time when unset.
func (c *Claims) Expiry() time.Time {
	if c.ExpiresAt == nil {
		return time.Time{}
	}
	return c.ExpiresAt.Time
}

// Identity is the authenticated caller of a request.
type Identity struct {
	SubjectID    string
	SubjectEmail string
	// Token is the raw bearer token, kept so logout can revoke it.
	Token     string
	ExpiresAt time.Time
}

// NewIdentity pairs verified claims with the raw token they came from.
func NewIdentity(token string, c *Claims) Identity {
	return Identity{
		SubjectID:    c.Subject,
		SubjectEmail: c.Email,
		Token:        token,
		ExpiresAt:    c.Expiry(),
	}
}
