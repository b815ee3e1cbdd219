// Package orchestration implements the scatter/gather state machine that
// turns one basket simulation into independent units of work. A Launch unit
// splits the path budget across Worker units and submits a Joiner that
// depends on all of their outputs; the Joiner combines the partial results
// once the platform has materialized them. Dispatcher routes each unit to the
// right state from the use-case tag in its options.
package orchestration
