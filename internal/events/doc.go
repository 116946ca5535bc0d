// Package events publishes pipeline notifications to Kafka.
//
// Two event types are emitted:
//
//   - papers.searched: after a search has been ranked (and persisted, when a store is configured)
//   - graph.built: after relationship edges have been computed for a paper set
//
// Each message is a JSON envelope keyed by the aggregate id (search id or graph id)
// so that all events of one aggregate land on the same partition. Publishing is
// best effort: callers log and count failures but never fail the request.
package events
