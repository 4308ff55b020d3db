package dedupe

// Package dedupe provides shared singleflight groups used to collapse
// concurrent work on the same battle. Both players poll the same match, so
// without this two requests would race to apply the same timeout or AI turn
// and one of them would always lose the revision check.

import "golang.org/x/sync/singleflight"

// SettleGroup deduplicates battle settlement keyed by keys.SettleKey.
var SettleGroup singleflight.Group
