// Package email sends transactional notification emails through Postmark.
// A dev sender that only logs is available for local environments without
// Postmark credentials.
package email
