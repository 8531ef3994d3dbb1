// Package pipeline runs named, dependency-ordered pipelines of document
// modules.
//
// A Pipeline is a list of Modules split into input, process and output
// stages. Each Module turns a sequence of documents into a new sequence;
// documents themselves are immutable, so a module that changes a document
// returns a clone. The Scheduler registers pipelines, resolves which of them
// a run needs from the targets and execution policies, and executes them
// level by level over a dag.Engine: pipelines whose dependencies have all
// finished run concurrently. A pipeline reads the results of the pipelines
// it depends on through Context.Outputs.
//
// Any module error fails its pipeline and aborts the run. Outputs of a
// failed or canceled run are discarded.
package pipeline
