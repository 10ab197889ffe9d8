// Package roof implements the roof-geometry resolution engine.
// A RoofSpecification holds an ordered collection of planar faces and
// keeps it coherent in plan projection: overlap resolution by elevation
// priority, coplanar union/join, ridge analysis, structure-preserving
// edits, split/subtract operations, and gap and clearance diagnostics.
package roof
