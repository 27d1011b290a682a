// Package auth implements cookie-based JWT authentication for a web API:
// signup, signin, signout, token refresh, and current-user retrieval.
//
// Tokens:
//   - Access tokens are short lived and stateless; validity is signature
//     plus expiry, nothing else. They ride in an HttpOnly cookie and are
//     checked by the middleware on every request.
//   - Refresh tokens are long lived and carry a jti. Every successful
//     refresh rotates the token and revokes the old jti; signout revokes
//     the presented jti. The RevocationStore is consulted on every refresh,
//     so a blacklisted token is dead even while its signature and expiry
//     are still technically valid.
//
// Composition:
//   - Install NewMiddleware on the app, mount the endpoints with
//     RegisterAuthRoutes, and guard additional routes with
//     RequireAuthenticated. Configuration is a single immutable Config
//     built once at process start.
package auth
