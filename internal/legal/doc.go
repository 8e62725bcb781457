// Package legal provides the external catalog of legal acts that documents
// can be imported from. A static catalog ships built in; an HTTP catalog
// queries a remote JSON endpoint.
package legal
