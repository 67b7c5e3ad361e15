// Package goalform serves the goal breakdown form over net/http.
//
// GET on the route path renders the empty form. POST on the submit path reads
// the goal field, runs one controller submission against the configured
// backend and answers with the re-rendered page, or with a JSON snapshot
// ({goal, loading, error, results}) when the client prefers
// application/json. The embedded stylesheet is served under the assets path.
package goalform
