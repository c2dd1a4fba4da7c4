// Package classloader decides which anonymous class loader instance a
// desired library set maps onto. Instances carry no operator-assigned
// name, only a store-assigned id that does not survive recreation, so the
// match is structural: a greedy single-pass scoring over the instances of
// the requested delegation mode.
package classloader

import (
	"fmt"

	"github.com/wasconverge/wasconverge/internal/domain"
)

// Match is the outcome of a matching pass for one mode.
//
// When Exists is false, none of the desired libraries appear in any
// instance of the mode and a new instance holding Add must be created.
// When Exists is true, Target identifies the instance to adjust: Add
// lists the desired libraries it lacks, Remove the libraries it carries
// beyond the desired set.
type Match struct {
	Exists bool
	Target domain.ClassLoaderInstance
	Add    []string
	Remove []string
}

// libSet builds set membership over library names. Duplicates inside one
// instance are tolerated; membership is all that matters here.
func libSet(libs []string) map[string]bool {
	set := make(map[string]bool, len(libs))
	for _, l := range libs {
		set[l] = true
	}
	return set
}

// subtract returns the members of a (in a's order, deduplicated) that are
// not in b.
func subtract(a []string, b map[string]bool) []string {
	var out []string
	seen := make(map[string]bool, len(a))
	for _, l := range a {
		if seen[l] || b[l] {
			continue
		}
		seen[l] = true
		out = append(out, l)
	}
	return out
}

// MatchMode scores every instance of the requested mode against the
// desired library set and picks the one needing the fewest additions;
// ties keep the first instance in document order, the only stable signal
// available. Desired libraries may legitimately be spread over several
// instances, so existence is judged against the union of all instances'
// libraries: only when none of the desired libraries appear anywhere in
// the mode is the managed configuration considered absent.
//
// An empty desired set is refused: there is no such thing as a default
// instance to create.
func MatchMode(instances []domain.ClassLoaderInstance, mode domain.ClassLoaderMode, desired []string) (Match, error) {
	if len(desired) == 0 {
		return Match{}, fmt.Errorf("%w: refusing to manage a class loader with no libraries", domain.ErrInvalidInput)
	}

	desiredSet := libSet(desired)
	combined := make(map[string]bool)

	var (
		target    domain.ClassLoaderInstance
		bestAdd   []string
		bestDel   []string
		bestScore = -1
	)

	for _, inst := range instances {
		if inst.Mode != mode {
			continue
		}
		existing := libSet(inst.Libraries)
		for l := range existing {
			combined[l] = true
		}

		addDiff := subtract(desired, existing)
		if bestScore == -1 || len(addDiff) < bestScore {
			bestScore = len(addDiff)
			target = inst
			bestAdd = addDiff
			bestDel = subtract(inst.Libraries, desiredSet)
		}
	}

	if bestScore == -1 {
		// No instance of this mode at all.
		return Match{Exists: false, Add: subtract(desired, nil)}, nil
	}

	combinedDiff := subtract(desired, combined)
	if len(combinedDiff) == len(desiredSet) {
		// Nothing of the desired set is present anywhere in this mode.
		return Match{Exists: false, Add: subtract(desired, nil)}, nil
	}

	return Match{Exists: true, Target: target, Add: bestAdd, Remove: bestDel}, nil
}
