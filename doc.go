// Package auth is the credential and session core of the academic portal.
//
// Accounts:
//   - Users register with a full name, email and password. Emails are unique
//     and compared exactly as submitted. Passwords are stored as bcrypt
//     digests only and never leave the Users store.
//   - There is a single administrator, configured at startup. The admin is
//     not a stored user and cannot be listed or deleted.
//
// Sessions:
//   - TokenService signs HS256 tokens carrying id, email and role. Tokens
//     expire after the configured TTL and are otherwise stateless. Retired
//     secrets keep verifying during a key rotation.
//   - Gate resolves an Authorization header into a Grant, checking the bearer
//     scheme, the signature, the role and, for user sessions, that the account
//     still exists. Every rejection carries an internal Reason for logs while
//     the caller only sees the public message.
//
// HTTP:
//   - NewApp mounts AuthController on a fiber app. Errors are rendered by
//     NewErrorHandler, which turns validation failures into per field
//     entries and everything else into a single message.
package auth
