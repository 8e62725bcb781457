// Package auth authenticates callers of docket-gateway.
//
// # Tokens
//
// Users authenticate with HS256 JWTs whose "sub" claim is the user ID. The
// secret must be at least MinSecretLength bytes. Tokens are issued by the
// accounts service on login and registration.
//
// # Gate
//
// Gate.Authenticate checks the signature and expiry, then resolves the subject
// against the user store. A token for a deleted account is rejected even when
// it is cryptographically valid. On success the resolved Principal carries the
// user's ID, role, and department for the current call only.
//
// # Transports
//
//   - UnaryInterceptor reads "authorization: Bearer <token>" from gRPC metadata.
//     Methods listed in PublicMethods skip the gate.
//   - HTTPAuthMiddleware reads the Authorization header of HTTP requests.
//
// Both attach the Principal with WithPrincipal and log failures with the peer
// address. Handlers read it back with FromContext.
//
// # Passwords
//
// HashPassword and CheckPassword wrap bcrypt.
package auth
