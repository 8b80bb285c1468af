// Package registry maps the type tags found in persisted graph documents to
// the Go code that builds them.
//
// Node tags resolve to constructors and socket tags resolve to shapes. The
// flow engine never consults the registry; only the codec does, which keeps
// the engine agnostic of any concrete node catalog. Modules fill a registry
// at startup, and Validate checks that every node type can be rebuilt from
// a document before anything is loaded.
package registry
