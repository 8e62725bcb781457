// Package rpc exposes docket over gRPC.
//
// The contract lives in proto/docket.proto. There is no protoc step:
// messages are Go structs carried by a JSON codec registered under the
// "json" content-subtype, and the service descriptors are declared by hand
// and checked against the proto file by the package tests. Clients must
// request the codec, which Dial and Client do.
//
// AdminService is authenticated like the others and restricted to the ADMIN
// role by the accounts service.
//
// Server interceptors run in this order:
//
//	ErrorInterceptor        panics and error kinds to gRPC status
//	auth.UnaryInterceptor   bearer token to Principal, public methods exempt
package rpc
