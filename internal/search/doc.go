// Package search turns a free-text medical question into ranked corpus
// passages: query analysis, heuristic scoring over a full corpus snapshot, and
// threshold/top-K selection.
package search
