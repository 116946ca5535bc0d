// Package aggregator runs the paper search pipeline end to end.
//
// A Search fans the query out to every enabled provider, deduplicates and
// ranks the combined records, optionally persists them, and publishes a
// papers.searched event. BuildGraph scores a paper set into symmetric
// relationship edges, optionally persists the edges, and publishes graph.built.
//
// Persistence and publishing are side effects: their failures are logged and
// counted but never turn a successful search into an error. The only error a
// caller sees from Search is cancellation of its own context.
package aggregator
