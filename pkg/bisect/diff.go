package bisect

import (
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// diffLineRegex matches the settings lines of an investigation diff which are
// worth bisecting: an optional leading diff sign, a quoted incident-list
// variable name and its quoted comma-separated value.
var diffLineRegex = regexp.MustCompile(`^([+-])?\s*"([A-Z]+_TEST_(?:ISSUES|REPOS))"\s*:\s*"([^"]*)",?\s*$`)

// A VariableChange holds, for one settings variable, the incidents referenced
// by the last good run (Good) and by the failing run (Bad).
type VariableChange struct {
	Good IncidentSet
	Bad  IncidentSet
}

// A ChangeSet maps settings-variable names to their incident changes.
type ChangeSet map[string]*VariableChange

// ParseDiff scans the "diff to last good" text of a job investigation and
// returns the per-variable incident changes worth bisecting.
//
// Lines not matching the settings-line grammar are skipped, they are not an
// error. Removed lines ("-") contribute to a variable's good set, added lines
// ("+") to its bad set. Unsigned matching lines are unchanged context and
// contribute to neither.
//
// A variable is only retained if both sets are non-empty and the bad set
// contains more than one incident, as there is nothing to narrow down with a
// single candidate. If any retained variable holds repository references,
// only those variables are returned, since repositories supersede the plain
// issue lists referencing the same updates.
func ParseDiff(diff string, log *logrus.Entry) ChangeSet {
	changes := make(ChangeSet)

	for _, line := range strings.Split(diff, "\n") {
		match := diffLineRegex.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if match == nil {
			continue
		}
		sign, key, value := match[1], match[2], match[3]
		if sign == "" {
			// Unchanged context line
			continue
		}

		change, ok := changes[key]
		if !ok {
			change = &VariableChange{
				Good: make(IncidentSet),
				Bad:  make(IncidentSet),
			}
			changes[key] = change
		}

		set := change.Good
		if sign == "+" {
			set = change.Bad
		}
		for _, ref := range strings.Split(value, ",") {
			if ref == "" {
				continue
			}
			set.Add(NewIncident(ref))
		}
	}

	// Drop variables which can't be bisected
	for key, change := range changes {
		if len(change.Good) == 0 || len(change.Bad) <= 1 {
			log.Debugf("Skipping %s: good/bad incident sets of size %d/%d offer nothing to bisect", key, len(change.Good), len(change.Bad))
			delete(changes, key)
		}
	}

	// Prefer repository variables over issue lists
	hasRepos := false
	for key := range changes {
		if strings.HasSuffix(key, "_REPOS") {
			hasRepos = true
			break
		}
	}
	if hasRepos {
		for key := range changes {
			if !strings.HasSuffix(key, "_REPOS") {
				log.Debugf("Skipping %s in favor of repository variables", key)
				delete(changes, key)
			}
		}
	}

	return changes
}
