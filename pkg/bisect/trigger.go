package bisect

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Wabri/scripts/pkg/openqa"
	"github.com/sirupsen/logrus"
)

// investigateMarker is part of the test name of every derived investigation
// job. Its presence means a job is itself already the product of one.
const investigateMarker = ":investigate:"

// repoUnavailableError is the signature of the one recoverable clone failure:
// the suspect updates' repositories have been removed in the meantime, so
// there is nothing left to bisect.
const repoUnavailableError = "the repositories for the below updates are unavailable"

// A Trigger turns one failed job into a set of bisection jobs, one per
// suspect incident, each rerunning the original scenario with that single
// suspect's references removed.
type Trigger struct {
	Client *openqa.Client // Reads job and investigation documents
	CLI    *openqa.CLI    // Clones jobs, sets priorities, posts comments

	PriorityAdd int // Added to the origin job's priority for every created job

	ExcludeGroups *regexp.Regexp // Job groups for which bisection is suppressed, or nil

	// Confirm, if set, is consulted with the amount of synthesized bisection
	// jobs before any job is created. Returning false aborts the run cleanly.
	Confirm func(jobs int) bool

	Log *logrus.Entry
}

// Run processes the job behind the passed URL end-to-end: guard evaluation,
// investigation fetch, diff parsing, plan synthesis, job creation and the
// aggregate comment. A run ending in a guard-triggered skip is not an error.
func (t *Trigger) Run(url string) error {
	host, id, err := openqa.ParseJobURL(url)
	if err != nil {
		return err
	}
	log := t.Log.WithField("job", id)

	job, err := t.Client.Job(host, id)
	if err != nil {
		log.Errorf("Failed to fetch job - %v", err)
		return err
	}

	test := job.Settings["TEST"]
	if test == "" {
		test = job.Test
	}

	if job.Result == "passed" {
		log.Infof("Job passed, no regression to bisect")
		return nil
	}
	if strings.Contains(test, investigateMarker) {
		log.Infof("Job %s is already an investigation job", test)
		return nil
	}
	if job.CloneID != nil {
		log.Infof("Job was already cloned as %d", *job.CloneID)
		return nil
	}
	if job.HasDependencies() {
		log.Infof("Job has parallel or directly chained dependencies, bisecting only isolated jobs")
		return nil
	}

	investigation, err := t.Client.Investigation(host, id)
	if err != nil {
		log.Errorf("Failed to fetch investigation - %v", err)
		return err
	}
	if investigation.DiffToLastGood == "" {
		log.Infof("Investigation has no diff to last good, nothing to compare")
		return nil
	}

	changes := ParseDiff(investigation.DiffToLastGood, log)
	if len(changes) == 0 {
		log.Infof("No bisectable incident changes in diff to last good")
		return nil
	}

	if t.ExcludeGroups != nil && t.ExcludeGroups.MatchString(job.GroupName()) {
		log.Infof("Job group %q is excluded from bisection", job.GroupName())
		return nil
	}

	plan, err := SynthesizePlan(url, test, changes, log)
	if err != nil {
		log.Errorf("Failed to synthesize bisection plan - %v", err)
		return err
	}

	if t.Confirm != nil && !t.Confirm(len(plan)) {
		log.Infof("Not triggering %d bisection jobs, aborted on confirmation", len(plan))
		return nil
	}

	var summary []string
	for _, bisection := range plan {
		created, err := t.triggerBisection(host, id, bisection, log)
		if err != nil {
			return err
		}
		if created == nil {
			// Recoverable clone failure, already commented on
			return nil
		}

		for _, createdID := range created {
			if err := t.CLI.SetJobPriority(host, createdID, job.Priority+t.PriorityAdd); err != nil {
				log.Errorf("Failed to set priority of created job %d - %v", createdID, err)
				return err
			}
			summary = append(summary, fmt.Sprintf("* [%s](%s/t%d)", bisection.Test, host, createdID))
		}
	}

	if len(summary) == 0 {
		return nil
	}
	comment := "Automatic bisect jobs:\n\n" + strings.Join(summary, "\n")
	if err := t.CLI.PostComment(host, id, comment); err != nil {
		log.Errorf("Failed to post aggregate comment - %v", err)
		return err
	}
	return nil
}

// triggerBisection clones the origin job with the bisection's overrides and
// returns the created job ids in ascending order.
//
// A clone failure carrying the repositories-unavailable signature is
// recovered by posting an explanatory comment; it yields a nil slice and no
// error, telling the caller to end the run successfully. Clone output which
// is not a JSON object of created jobs yields an empty slice, the run
// continues with the next suspect.
func (t *Trigger) triggerBisection(host string, originID int64, bisection BisectionJob, log *logrus.Entry) ([]int64, error) {
	settings := make([]string, 0, len(bisection.Settings)+3)
	keys := make([]string, 0, len(bisection.Settings))
	for key := range bisection.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		settings = append(settings, key+"="+bisection.Settings[key])
	}
	settings = append(settings,
		"TEST="+bisection.Test,
		"OPENQA_INVESTIGATE_ORIGIN="+bisection.URL,
		// An empty override, so the clone does not inherit the unmodified repo list
		"MAINT_TEST_REPO=",
	)

	log.Infof("Triggering %s", bisection.Test)
	out, err := t.CLI.CloneJob(bisection.URL, settings)
	if err != nil {
		var cmdErr *openqa.CommandError
		if errors.As(err, &cmdErr) && strings.Contains(cmdErr.Stderr, repoUnavailableError) {
			log.Infof("Not bisecting, repositories are gone - %v", err)
			comment := "Not triggering any bisect jobs because:\n\n" + cmdErr.Stderr
			if err := t.CLI.PostComment(host, originID, comment); err != nil {
				log.Errorf("Failed to post comment about unavailable repositories - %v", err)
				return nil, err
			}
			return nil, nil
		}
		log.Errorf("Failed to clone job for incident %s - %v", bisection.Suspect, err)
		return nil, err
	}

	var createdJobs map[string]int64
	if err := json.Unmarshal(out, &createdJobs); err != nil {
		log.Errorf("Failed to parse clone output for incident %s - %v, output: %s", bisection.Suspect, err, out)
		return []int64{}, nil
	}

	created := make([]int64, 0, len(createdJobs))
	for _, createdID := range createdJobs {
		created = append(created, createdID)
	}
	sort.Slice(created, func(i, j int) bool { return created[i] < created[j] })
	return created, nil
}
