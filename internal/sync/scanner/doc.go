// Package scanner walks a local publish root and reports every regular file
// beneath it as a key relative to the root.
//
// A scan is all or nothing: any directory that cannot be listed or entry that
// cannot be stated fails the scan with a traversal error, so a partial view
// never reaches the planner.
package scanner
