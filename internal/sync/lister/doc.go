// Package lister reads the complete remote view of a bucket prefix.
//
// A listing is only returned when every page was fetched. A partial view
// would turn every unlisted key into a spurious delete, so any page failure
// fails the whole listing.
package lister
