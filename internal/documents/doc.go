// Package documents is the public face of the approval workflow. It checks
// the caller against the authorization policy, validates input and then
// delegates to the workflow engine, the file store and the legal catalog.
//
// Every operation takes the calling principal explicitly; transports
// authenticate and pass it in.
package documents
