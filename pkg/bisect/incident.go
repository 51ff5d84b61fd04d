package bisect

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// An Incident is one maintenance update referenced in a test job's settings.
// References come in two shapes: a plain incident number, or a repository URL
// in which the incident number is the seventh path segment.
type Incident struct {
	ref string
	id  string
}

// NewIncident creates an incident from a raw settings reference.
func NewIncident(ref string) Incident {
	return Incident{
		ref: ref,
		id:  extractID(ref),
	}
}

// extractID returns the seventh /-delimited segment of a reference URL.
// If the reference has no such segment, the raw reference is the identity.
func extractID(ref string) string {
	segments := strings.Split(ref, "/")
	if len(segments) > 6 && segments[6] != "" {
		return segments[6]
	}
	return ref
}

// Ref returns the raw reference this incident was created from.
func (i Incident) Ref() string {
	return i.ref
}

// ID returns the incident's identity.
func (i Incident) ID() string {
	return i.id
}

// Equal reports whether both incidents resolve to the same identity,
// regardless of how their references spell it.
func (i Incident) Equal(other Incident) bool {
	return i.id == other.id
}

// Compare orders two incidents by numeric identity.
// It returns a negative value if i is older than other, zero if they are the
// same incident and a positive value otherwise.
// Comparing incidents whose identity is not a plain number is an error, so
// only incidents with number-style identities may be ordered.
func (i Incident) Compare(other Incident) (int, error) {
	a, err := strconv.Atoi(i.id)
	if err != nil {
		return 0, fmt.Errorf("incident %q has non-numeric identity %q", i.ref, i.id)
	}
	b, err := strconv.Atoi(other.id)
	if err != nil {
		return 0, fmt.Errorf("incident %q has non-numeric identity %q", other.ref, other.id)
	}
	return a - b, nil
}

// An IncidentSet holds incidents keyed by their identity. Two references
// resolving to the same identity collapse into a single member, the identity
// being the one canonical key for both equality and lookup.
type IncidentSet map[string]Incident

// Add inserts the passed incident into the set, replacing any member with the
// same identity.
func (s IncidentSet) Add(incident Incident) {
	s[incident.ID()] = incident
}

// Contains reports whether the set holds an incident with the passed identity.
func (s IncidentSet) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Diff returns the members of s whose identity is not present in other.
func (s IncidentSet) Diff(other IncidentSet) IncidentSet {
	diff := make(IncidentSet)
	for id, incident := range s {
		if !other.Contains(id) {
			diff[id] = incident
		}
	}
	return diff
}

// Sorted returns the set's members in ascending numeric identity order.
// Fails if any member has a non-numeric identity.
func (s IncidentSet) Sorted() ([]Incident, error) {
	incidents := make([]Incident, 0, len(s))
	for _, incident := range s {
		incidents = append(incidents, incident)
	}

	var sortErr error
	sort.Slice(incidents, func(i, j int) bool {
		cmp, err := incidents[i].Compare(incidents[j])
		if err != nil {
			sortErr = err
		}
		return cmp < 0
	})
	if sortErr != nil {
		return nil, sortErr
	}
	return incidents, nil
}

// Refs returns the raw references of all members, sorted by numeric identity.
func (s IncidentSet) Refs() ([]string, error) {
	incidents, err := s.Sorted()
	if err != nil {
		return nil, err
	}
	refs := make([]string, len(incidents))
	for i, incident := range incidents {
		refs[i] = incident.Ref()
	}
	return refs, nil
}
