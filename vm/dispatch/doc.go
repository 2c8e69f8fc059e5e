// Package dispatch implements Verdin's call-site dispatch chains:
// per-site polymorphic inline caches over the vm object model.
//
// Each call site owns a singly-linked chain of immutable guard entries.
// An entry remembers one receiver shape, a snapshot of the owning class's
// method-table assumption, and the resolved target (or constant, or
// respond-to proof) for that shape. Dispatch walks the chain head to tail;
// a miss performs full lookup through the object model and prepends a new
// entry with an atomic head swap, so concurrent readers of the old chain
// are never disturbed.
//
// Chains are depth-bounded. A site that outgrows the bound flips
// permanently to megamorphic dispatch: full lookup on every call, no
// further caching.
package dispatch
