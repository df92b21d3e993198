// Package io reads and writes graphs and spanning trees.
//
// # Graph Format
//
// Graphs use a canonical line-oriented text form:
//
//	4
//	0 1
//	0 2
//	2 3
//
// The first line is the vertex count. Every following line holds one edge as
// two whitespace-separated vertex indices. [WriteGraph] emits each edge once,
// normalized so the smaller index comes first, in ascending order, so equal
// graphs always serialize to identical bytes.
//
// [ReadGraph] is more lenient: blank lines are skipped, pairs may appear in
// either orientation and repeated pairs collapse into one edge. Anything else
// (a missing or negative count, a non-integer token, a line without exactly
// two indices, a self-loop or an index out of range) fails with an
// INVALID_FORMAT error naming the offending line. [ImportGraph] additionally
// reports a missing file as NOT_FOUND.
//
// # Tree Format
//
// Spanning trees are exported one vertex per line as "i: parent", with -1
// marking the root:
//
//	0: -1
//	1: 0
//	2: 0
//	3: 2
//
// [WriteTreeJSON] writes the same tree together with its root, leaf count and
// search strategy:
//
//	{"parent": [-1, 0, 0, 2], "root": 0, "leaves": 2, "strategy": "exhaustive"}
//
// # Concurrency
//
// All functions are safe to call concurrently as long as the graph being
// written is not mutated at the same time.
package io
