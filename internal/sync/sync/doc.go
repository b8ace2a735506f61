// Package sync runs one publish pass: scan, list, plan, apply, report.
//
// A pass runs in three phases. The local scan and the remote listing run
// concurrently and either failing aborts the pass before any mutation. The
// planner then diffs the two views, and only once the full operation set is
// known does the executor apply it.
package sync
