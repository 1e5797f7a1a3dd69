// Package pattern implements route pattern matching for navigation guards.
//
// A pattern is a path template made of three segment kinds:
//
//	/users          literal: must equal the path segment exactly
//	/users/:id      parameter: matches any single segment, binding "id"
//	/admin/*        wildcard: matches the segment and everything after it
//
// The wildcard is only legal as the final segment. Segment counts must be
// equal unless the pattern ends in a wildcard. Leading and trailing slashes
// are insignificant on both sides.
package pattern
