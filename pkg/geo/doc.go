// Package geo defines the geometry vocabulary for roof modeling:
// oriented planes, planar 3D faces with holes, and 2D plan helpers.
// 3D points use sdfx vectors; plan geometry uses ctessum/geom.
package geo
