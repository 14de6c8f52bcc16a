package sentinel

import "errors"

// Sentinel errors for infrastructure facts. The connection router, loaders and
// the CDC gateway return these (optionally wrapped) so callers can apply the
// matching containment policy instead of string-matching error text.
//
// These represent factual states about resources, not validation failures:
// - ErrConnection: a tenant database is unreachable; the tree builder skips it
// - ErrParse: a change-event envelope could not be decoded; drop and ack
// - ErrReconciliation: a tenant names a parent missing from the tree; excluded
// - ErrPublishRace: notification topic creation raced another creator; retry the send
// - ErrRuleNotFound: a rule id has no registered implementation; skip with warning
// - ErrNotReady: no snapshot has been published yet
// - ErrNotFound: entity does not exist
var (
	ErrConnection     = errors.New("tenant database unreachable")
	ErrParse          = errors.New("malformed change event")
	ErrReconciliation = errors.New("unresolved parent tenant")
	ErrPublishRace    = errors.New("notification topic creation race")
	ErrRuleNotFound   = errors.New("rule not registered")
	ErrNotReady       = errors.New("configuration not yet available")
	ErrNotFound       = errors.New("not found")
)
