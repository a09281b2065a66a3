// Package calllog serves the call-history query of the bridge.
//
// [Service.Query] is the inner operation: it returns the matching records
// or a tagged *errors.HostError. [Service.CallsSince] is the boundary
// adapter the UI sees: it never fails, logs any host failure and returns an
// empty slice instead. An empty result is therefore ambiguous between "no
// calls since the timestamp" and "the store could not be queried".
package calllog
