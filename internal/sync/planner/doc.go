// Package planner computes the operation set that reconciles a bucket with a local tree.
//
// Keys only on the local side are added, keys only on the remote side are
// removed and keys on both sides are compared. Only the intersection is ever
// hashed.
package planner
