// Package session owns the persisted token pair and projects it into the
// current user.
//
// [Store] reads and writes the pair and announces every write on the auth
// bus. [Tracker] keeps a live current-user value, re-evaluating it whenever
// the bus or another context reports a change.
package session
