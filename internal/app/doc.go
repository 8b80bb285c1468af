// Package app runs one document through its lifecycle: load, diagnose,
// analyse, evaluate, report and save. It also serves health and metrics
// endpoints and can keep re-running the document as it changes on disk.
package app
