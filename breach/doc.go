// Package breach detects weak and breached passwords.
//
// Two implementations sit behind the same [Checker] interface so callers
// never change when the data source does: [StaticChecker] matches a
// configured list of known-weak fragments, and [KAnonymityChecker] consults
// an external range endpoint by digest prefix so neither the plaintext nor
// its full digest ever leaves the process.
package breach
