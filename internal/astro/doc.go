// Package astro is the chart calculation engine.
//
// It computes ecliptic longitudes for a fixed set of celestial bodies,
// derives zodiac sign and degree, detects pairwise aspects, divides the chart
// into houses, computes the mean lunar nodes and reduces transit aspects into
// a bounded intensity score.
//
// Two position strategies are provided. MockEngine is a deterministic
// simulation keyed by a hash of the birth data; it is reproducible across runs
// and platforms but not astronomically accurate. KeplerEngine evaluates J2000
// mean orbital elements and is accurate to roughly a degree for the planets.
// Both return the same Position shape, so a Calculator can use either.
//
// Everything in this package is a pure function of its inputs and the
// read-only tables below. A Calculator holds no mutable state and is safe for
// concurrent use.
package astro
