// Package mesh indexes the celestial sphere into numbered triangular regions
// (trixels) and answers "which regions does this shape touch" queries.
//
// A Mesh owns a small fixed set of named result buffers so that independent
// consumers (drawing, nearest-object search, containment tests) can hold
// outstanding result sets without clobbering each other. A query into a
// buffer replaces whatever that buffer held before; an Iterator walks the
// current contents and can be rewound without re-querying.
//
// Aperture is the draw-time entry point: it applies the configured
// Precessor to the center, widens the radius by ApertureMargin and advances
// the mesh's draw generation (DrawID), which block pools use to pin the
// blocks touched during one pass.
//
// A Mesh is not safe for concurrent use.
package mesh
