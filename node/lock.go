package node

import "sync"

// lockView is the node's general lock: a plain sync.RWMutex, given its
// own name so call sites read as "the general lock" rather than an
// anonymous mutex. Readers: statement dispatch, flush's snapshot,
// wait-for predicates. Writers: the Activator (boot and eviction) and
// start/close.
type lockView struct {
	sync.RWMutex
}
