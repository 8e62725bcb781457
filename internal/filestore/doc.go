// Package filestore keeps document attachments on local disk, addressed by
// the keyed BLAKE3 hash of their contents and compressed with zstd.
package filestore
