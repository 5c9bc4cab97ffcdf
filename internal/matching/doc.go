// Package matching decides which registry company, if any, an input record
// refers to.
//
// Resolution runs an ordered list of tiers: identifier lookup, primary name
// search, fallback name search. The first tier that produces a usable
// outcome ends the resolution; when none does the record is a no_match.
// Name tiers accept an exact title match outright and otherwise rank every
// search result with the Scorer, whose points and thresholds come from
// Policy.
//
// Registry failures never escape Resolve. A not-found, timeout or transport
// error is logged and the resolver moves on to the next tier.
package matching
