// Package codec flattens a node graph into a Document and rebuilds one from
// it. The Document is format-neutral; jsondoc and hcldoc read and write it.
//
// Deserialisation is best-effort. Every problem in the document becomes a
// diagnostic and processing continues: an unknown node type leaves a nil
// placeholder so later node indices stay valid, and a connection that cannot
// be resolved is skipped.
package codec
