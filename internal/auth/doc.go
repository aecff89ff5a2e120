// Package auth implements authentication and authorisation for CHMS.
//
// Accounts are stored with PBKDF2-HMAC-SHA256 password hashes and a
// per-user random salt. Logins open opaque session tokens persisted in
// SQLite; tokens are revocable and expire lazily at validation time.
// Authorisation is a static role-to-capability matrix checked per
// request; there is no ambient "current user" state.
//
// Repeated login failures lock an account for a fixed window. The lock
// only applies to accounts that exist - unknown usernames always get
// the same ErrInvalidCredentials as a wrong password.
package auth
