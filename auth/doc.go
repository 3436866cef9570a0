// Package auth implements the credential and token subsystem for the Bookly
// API: bcrypt password hashing, signed JWT issuance and validation for
// access, refresh, verification, and password-reset tokens, a jti blocklist
// for early revocation, and the guard checks route handlers use to admit or
// reject requests.
package auth
