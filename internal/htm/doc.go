// Package htm implements the geometry of a Hierarchical Triangular Mesh.
//
// The unit sphere is split into 8 spherical triangles (the octahedron faces)
// and every triangle is recursively divided into 4 children by connecting the
// midpoints of its edges. At a fixed level L the mesh has 8·4^L leaf
// triangles ("trixels"), numbered 0 … 8·4^L−1:
//
//	trixel = root·4^L + path
//
// where root is the index of the octahedron face (S0…S3, N0…N3) and path
// packs the 2-bit child indices from the top of the tree down to the leaf.
//
// # Queries
//
//   - Lookup: the leaf containing a point
//   - Circle: the leaves intersecting a spherical cap
//   - Arc: the leaves crossed by a great-circle segment
//   - Convex: the leaves intersecting a convex spherical polygon
//
// All queries walk the tree top-down and prune whole subtrees that do not
// intersect the query shape; subtrees fully covered by a cap are emitted as a
// contiguous trixel range without descending further.
package htm
