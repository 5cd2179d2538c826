// Package symbols computes the C symbol names of generated wrappers: proxy
// type names for classes and enums, wrapper function names with their
// module or namespace prefixes, and overload-disambiguated names built from
// per-parameter mangle codes.
//
// Every computed name is memoised on the declaration node, so asking twice
// returns the same value. The Table enforces module-wide uniqueness.
package symbols
