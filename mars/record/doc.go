// Package record holds the append-only per-iteration histories produced
// by the forward and pruning passes: ForwardPassRecord and
// PruningPassRecord. Both are read-only once the corresponding pass has
// finished and expose length and random-access queries, mirroring the
// trace style of prim_kruskal and flow's augmenting-path bookkeeping.
package record
