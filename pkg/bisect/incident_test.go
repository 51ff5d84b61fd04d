package bisect

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncidentID(t *testing.T) {
	values := []struct {
		ref string
		id  string
	}{
		{"http://download.example.com/ibs/SUSE:/Maintenance:/24618/SUSE_SLE-15_Update/", "24618"},
		{"https://example.com/a/b/c/d/31415/rest", "31415"},
		{"24618", "24618"},
		{"u/1", "u/1"},
		{"", ""},
	}

	for _, v := range values {
		assert.Equal(t, v.id, NewIncident(v.ref).ID(), "Wrong identity for reference %q", v.ref)
		assert.Equal(t, v.ref, NewIncident(v.ref).Ref(), "Raw reference not preserved")
	}
}

func TestIncidentEqual(t *testing.T) {
	// Two spellings of the same incident compare equal by identity
	byURL := NewIncident("http://download.example.com/ibs/SUSE:/Maintenance:/24618/SUSE_SLE-15_Update/")
	byID := NewIncident("24618")

	assert.True(t, byURL.Equal(byID), "Incidents with the same identity should be equal")
	assert.False(t, byURL.Equal(NewIncident("24619")), "Incidents with different identities should not be equal")
}

func TestIncidentCompare(t *testing.T) {
	t.Run("Numeric identities order numerically", func(t *testing.T) {
		cmp, err := NewIncident("9").Compare(NewIncident("10"))
		assert.Nil(t, err, "Compare returned an error")
		assert.Negative(t, cmp, "9 should order before 10")

		cmp, err = NewIncident("10").Compare(NewIncident("9"))
		assert.Nil(t, err, "Compare returned an error")
		assert.Positive(t, cmp, "10 should order after 9")

		cmp, err = NewIncident("10").Compare(NewIncident("10"))
		assert.Nil(t, err, "Compare returned an error")
		assert.Zero(t, cmp, "Equal identities should compare to zero")
	})
	t.Run("Non-numeric identity fails", func(t *testing.T) {
		_, err := NewIncident("u/1").Compare(NewIncident("2"))
		assert.NotNil(t, err, "Comparing a non-numeric identity should fail")

		_, err = NewIncident("1").Compare(NewIncident("u/2"))
		assert.NotNil(t, err, "Comparing against a non-numeric identity should fail")
	})
}

func TestIncidentSetKeysByIdentity(t *testing.T) {
	// The identity is the one canonical key. Two references spelling the
	// same incident must collapse into a single member.
	set := make(IncidentSet)
	set.Add(NewIncident("24618"))
	set.Add(NewIncident("http://download.example.com/ibs/SUSE:/Maintenance:/24618/SUSE_SLE-15_Update/"))

	assert.Len(t, set, 1, "References with the same identity should collapse")
	assert.True(t, set.Contains("24618"), "Set should be keyed by identity")
}

func TestIncidentSetDiff(t *testing.T) {
	good := make(IncidentSet)
	for _, ref := range []string{"1", "2", "3"} {
		good.Add(NewIncident(ref))
	}
	bad := make(IncidentSet)
	for _, ref := range []string{"1", "2", "3", "4"} {
		bad.Add(NewIncident(ref))
	}

	added := bad.Diff(good)
	assert.Len(t, added, 1, "Exactly one incident was added")
	assert.True(t, added.Contains("4"), "Diff should contain the added incident")

	removed := good.Diff(bad)
	assert.Empty(t, removed, "No incident was removed")
}

func TestIncidentSetSorted(t *testing.T) {
	t.Run("Ascending numeric order", func(t *testing.T) {
		set := make(IncidentSet)
		for _, ref := range []string{"10", "2", "33", "9"} {
			set.Add(NewIncident(ref))
		}

		incidents, err := set.Sorted()
		assert.Nil(t, err, "Sorted returned an error")

		ids := make([]string, len(incidents))
		for i, incident := range incidents {
			ids[i] = incident.ID()
		}
		assert.Equal(t, []string{"2", "9", "10", "33"}, ids, "Wrong incident order")
	})
	t.Run("Non-numeric identity fails", func(t *testing.T) {
		set := make(IncidentSet)
		set.Add(NewIncident("1"))
		set.Add(NewIncident("u/2"))

		_, err := set.Sorted()
		assert.NotNil(t, err, "Sorting non-numeric identities should fail")
	})
}
