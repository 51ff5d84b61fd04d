package bisect

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// A BisectionJob describes one derived rerun of the original test with a
// single suspect incident's references removed from the relevant settings.
type BisectionJob struct {
	URL string // URL of the job this bisection stems from

	Suspect string // Identity of the incident excluded by this job

	Test string // The derived test name

	Settings map[string]string // Variable overrides with the suspect's references removed
}

// SynthesizePlan computes the bisection jobs for the passed change set.
//
// The suspects are the incidents present in some variable's bad set but
// absent from its good set. One job is emitted per suspect, in ascending
// numeric identity order, carrying for every variable whose bad set contains
// the suspect an override holding the remaining references.
func SynthesizePlan(url, test string, changes ChangeSet, log *logrus.Entry) ([]BisectionJob, error) {
	suspects := make(IncidentSet)
	for key, change := range changes {
		added := change.Bad.Diff(change.Good)
		removed := change.Good.Diff(change.Bad)
		log.Debugf("%s: %d incidents added, %d removed", key, len(added), len(removed))
		for id, incident := range added {
			suspects[id] = incident
		}
	}

	ordered, err := suspects.Sorted()
	if err != nil {
		return nil, errors.Join(fmt.Errorf("couldn't order suspect incidents"), err)
	}

	jobs := make([]BisectionJob, 0, len(ordered))
	for _, suspect := range ordered {
		settings := make(map[string]string)
		for key, change := range changes {
			if !change.Bad.Contains(suspect.ID()) {
				continue
			}
			remaining := make(IncidentSet)
			for id, incident := range change.Bad {
				if id != suspect.ID() {
					remaining[id] = incident
				}
			}
			refs, err := remaining.Refs()
			if err != nil {
				return nil, errors.Join(fmt.Errorf("couldn't order remaining incidents of %s", key), err)
			}
			settings[key] = strings.Join(refs, ",")
		}

		jobs = append(jobs, BisectionJob{
			URL:      url,
			Suspect:  suspect.ID(),
			Test:     fmt.Sprintf("%s:investigate:bisect_without_%s", test, suspect.ID()),
			Settings: settings,
		})
	}

	return jobs, nil
}
