// Package auth provides sign-up, login, and persistent sessions for the portal.
//
// # Identity
//
// Directory is a local identity provider. Credentials are kept as bcrypt
// hashes in a JSON table under the "users" key of the key-value store.
// SignUp and Login return sentinel errors whose messages can be shown to the
// user directly:
//
//   - ErrMissingCredentials: username or password blank
//   - ErrPasswordTooShort: password under the configured minimum
//   - ErrUserExists: sign-up with a taken username
//   - ErrUnknownUser: login for an unregistered username
//   - ErrInvalidPassword: login with the wrong password
//
// # Sessions
//
// After a successful login the CLI calls Sessions.Start, which signs an HS256
// JWT with the username in the "sub" claim and stores it under the "session"
// key. Commands that need a signed-in user call Sessions.Current.
//
// The signing secret comes from configuration when set. Otherwise
// LoadOrCreateSecret generates one and persists it under "session_secret".
//
// # Usage
//
//	dir := auth.NewDirectory(kv, cfg.Auth.MinPasswordLength, logger)
//	if err := dir.Login(ctx, username, password); err != nil {
//		return err
//	}
//	secret, _ := auth.LoadOrCreateSecret(ctx, kv, cfg.Auth.SessionSecret)
//	sessions := auth.NewSessions(kv, auth.NewTokenIssuer(secret), cfg.Auth.SessionTTL, logger)
//	token, err := sessions.Start(ctx, username)
package auth
