// Package jwt issues and verifies the HS256 access tokens used by the API.
//
// A token's claims carry the caller's identity (user ID, nickname) and the
// flat list of granted permission strings. The middleware verifies the
// Bearer token, places the parsed claims in the request context and hands
// the permission strings to the access-control layer. Routes that tolerate
// anonymous callers use Optional instead of Middleware.
package jwt
