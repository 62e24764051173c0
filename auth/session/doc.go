// Package session issues, verifies and revokes the bearer tokens that
// authenticate API calls.
//
// A session token is an HMAC JWT carrying exactly sub, email, iat and exp.
// Verification consults the revocation registry with the raw token before
// the token is parsed, so a revoked token is reported as revoked even when
// it is also malformed or expired.
//
//	m, err := session.NewManager(cfg.Auth.JWT, registry, log)
//	token, claims, err := m.Issue(user.ID, user.Email)
//	claims, err := m.Verify(ctx, token)
//	err = m.Revoke(ctx, session.NewIdentity(token, claims))
package session
