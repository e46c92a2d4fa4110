// Package gaussian holds the point data model of the viewer: Gaussian
// points, per-point edit overrides, compressed GPU layouts, and the
// native PLY serialization used by the export pipeline.
//
// Decoding foreign point-cloud files is out of scope here; models arrive
// decoded from the host application. This package only needs to know the
// point layout well enough to size GPU buffers and to serialize edited
// models back out.
package gaussian
