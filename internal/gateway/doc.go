// Package gateway wires the docket services together and runs them.
//
// # Servers
//
// A Gateway owns two servers:
//
//   - gRPC: AuthService, DocumentService and LegalDocumentService from
//     package rpc, behind the error and authentication interceptors.
//   - HTTP: health endpoints plus attachment download and rendered
//     descriptions for documents.
//
// # HTTP Routes
//
//	GET /health                          liveness, always 200
//	GET /health/ready                    200 when the store answers a ping
//	GET /api/documents/{id}/file         attachment bytes (bearer token)
//	GET /api/documents/{id}/description  description as HTML (bearer token)
//
// Errors on document routes are JSON objects of the form {"error": "..."}.
//
// # Listeners
//
// By default the servers bind server.grpc_addr and server.http_addr. With
// tailscale.enabled the gateway joins the tailnet through tsnet and listens
// on :50051 (gRPC) and :80 (HTTP) there instead.
//
// # Lifecycle
//
//	gw, err := gateway.New(cfg, logger)
//	err = gw.Run(ctx) // blocks until ctx is canceled
//
// Run shuts the servers down gracefully with a five second deadline and
// closes the store.
package gateway
