// Package diff computes the minimal pending change-set between a remote
// entity snapshot and the operator's desired attributes. It performs no
// I/O; deciding whether and how to apply the change-set belongs to the
// reconciler.
package diff

import (
	"fmt"
	"sort"

	"github.com/wasconverge/wasconverge/internal/domain"
	"github.com/wasconverge/wasconverge/internal/secrets"
)

// DesiredAttrs flattens a resource's desired state into the document
// attribute names the diff compares on. Pool maps fold in under their
// "connectionPool." / "sessionPool." prefixes. Only attributes the
// operator actually set appear: absence is "no opinion", never "clear".
func DesiredAttrs(r *domain.Resource) map[string]string {
	desired := make(map[string]string, len(r.Attributes)+len(r.ConnectionPool)+len(r.SessionPool))
	for k, v := range r.Attributes {
		desired[k] = v
	}
	for k, v := range r.ConnectionPool {
		desired["connectionPool."+k] = v
	}
	for k, v := range r.SessionPool {
		desired["sessionPool."+k] = v
	}
	return desired
}

// Compute compares each desired attribute against the snapshot and
// accumulates everything that differs into one change-set, applied later
// as a single batched mutation.
//
// Secret attributes are compared in plaintext (the stored side is
// deobfuscated first) and recorded in the change-set re-obfuscated, so
// plaintext never leaves this function. Changing an immutable attribute
// of an existing entity fails with a domain.ImmutablePropertyError before
// anything is emitted; immutable attributes that already match are
// silently fine, and on a not-yet-existing entity they are simply part of
// the creation.
func Compute(kind domain.ResourceKind, snap domain.Snapshot, desired map[string]string) (domain.PendingChangeSet, error) {
	attrs := make([]string, 0, len(desired))
	for a := range desired {
		attrs = append(attrs, a)
	}
	sort.Strings(attrs)

	changes := make(domain.PendingChangeSet)
	for _, attr := range attrs {
		if !domain.KnownAttr(kind, attr) {
			return nil, fmt.Errorf("%w: %s does not support attribute %q", domain.ErrInvalidInput, kind, attr)
		}
		want := desired[attr]

		current, present := snap.Attr(attr)
		if snap.Exists && present && domain.IsSecret(kind, attr) {
			plain, err := secrets.Deobfuscate(current)
			if err != nil {
				return nil, err
			}
			current = plain
		}

		if snap.Exists && present && current == want {
			continue
		}
		if snap.Exists && domain.IsImmutable(kind, attr) {
			return nil, &domain.ImmutablePropertyError{Kind: string(kind), Attribute: attr}
		}

		if domain.IsSecret(kind, attr) {
			want = secrets.Obfuscate(want)
		}
		changes.Set(attr, want)
	}
	return changes, nil
}
