// Package services implements the HTTP client for the JobTrail backend.
//
// # Client
//
// [Client] wraps every backend endpoint the terminal app depends on: the
// profile endpoint, the scan submission and status endpoints, the first-run
// fetch-log endpoint, and the spreadsheet connect endpoint. Endpoint
// addresses come from configuration and are never hardcoded; a call against
// an unconfigured address fails with [shared.ErrMissingConfig] without
// touching the network.
//
// # Credential transport
//
// [CredentialTransport] is the cross-cutting request/response policy shared
// by all callers. On the way out it attaches the stored bearer token as an
// Authorization header; cookies ride along via the client's cookie jar since
// the backend accepts either credential. On the way back, any 401 response
// erases the durable credential and auth hint and downgrades the in-memory
// session, no matter which component issued the request.
//
// # Error handling
//
// Services use typed errors from the shared package:
//   - [shared.ErrMissingConfig] : endpoint address not configured
//   - [shared.ErrAPIRequest] : HTTP request failed or returned non-200
package services
