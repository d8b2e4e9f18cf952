// Package filtertoken turns free-form filter inputs into a list of discrete,
// removable tokens and folds the active tokens into a flat query mapping.
//
// An Engine holds three pieces of state: the temporary inputs edited by the
// user (State), the ordered list of applied tokens, and the consolidated
// filters derived from those tokens. ApplyCurrent, RemoveToken and ClearAll
// mutate the token list and hand the new consolidation to the caller's
// Fetcher; LoadOptions pulls the selectable options catalog.
//
// Scalar fields produce one token per distinct value. Paired min/max inputs
// (anio, precio, fecha) produce a single range token for the family.
package filtertoken
