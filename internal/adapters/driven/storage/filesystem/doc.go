// Package filesystem stores documents, sidecars and derived views as
// plain files inside a workspace directory.
//
// Every write goes to a temporary file in the target directory which is
// then renamed over the destination, so readers never observe a partial
// file.
package filesystem
