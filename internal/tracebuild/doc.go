// Package tracebuild reconstructs a span tree from lifecycle events.
//
// Reconstruction runs in two strictly ordered passes:
//
//   - Builder folds raw events one at a time, merging repeated
//     observations of the same span id and recording parent links.
//   - Finalize runs exactly once over the accumulated state and
//     produces an immutable Trace: child lists inverted from parent
//     links, the root set, the global time bounds, and id lookup.
//
// The builder makes no ordering assumptions across span ids: an End
// for one span may arrive before the Start of another, and duplicate
// observations overwrite earlier ones (last write wins). Derived data
// (children, roots, bounds) is never patched incrementally; it is
// computed from scratch at finalize so duplicate events cannot corrupt
// the tree.
//
// # Usage
//
//	b := tracebuild.NewBuilder()
//	for _, ev := range events {
//		if err := b.Add(ev); err != nil {
//			return err
//		}
//	}
//	tr, err := b.Finalize()
package tracebuild
