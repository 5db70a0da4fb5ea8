// Package password wraps bcrypt hashing for account credentials.
package password
