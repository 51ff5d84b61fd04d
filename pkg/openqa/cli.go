package openqa

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// A CLI wraps the external helper commands which mutate openQA state.
// With DryRun set the commands are echoed at info level instead of executed;
// a dry-run clone reports an empty set of created jobs.
type CLI struct {
	Runner Runner // May be nil to run real child processes

	CloneBinary string // The job-cloning helper, openqa-clone-job unless overridden
	CLIBinary   string // The generic API helper, openqa-cli unless overridden

	DryRun bool

	Log *logrus.Entry
}

func (c *CLI) runner() Runner {
	if c.Runner == nil {
		return ExecRunner{}
	}
	return c.Runner
}

// CloneJob clones the job behind url into the same instance, applying the
// passed KEY=value settings overrides. It returns the helper's raw output,
// a JSON object mapping test names to created job ids.
func (c *CLI) CloneJob(url string, settings []string) ([]byte, error) {
	args := []string{"--skip-chained-deps", "--json-output", "--within-instance", url}
	args = append(args, settings...)

	if c.DryRun {
		c.Log.Infof("Dry run: would execute %s %s", c.cloneBinary(), strings.Join(args, " "))
		return []byte("{}"), nil
	}
	return c.runner().Run(c.cloneBinary(), args...)
}

// SetJobPriority sets the priority of the job with the passed id.
func (c *CLI) SetJobPriority(host string, id int64, priority int) error {
	args := []string{"api", "--host", host, "-X", "PUT", fmt.Sprintf("jobs/%d", id), fmt.Sprintf("priority=%d", priority)}

	if c.DryRun {
		c.Log.Infof("Dry run: would execute %s %s", c.cliBinary(), strings.Join(args, " "))
		return nil
	}
	_, err := c.runner().Run(c.cliBinary(), args...)
	return err
}

// PostComment posts a comment with the passed text on the job with the passed id.
func (c *CLI) PostComment(host string, id int64, text string) error {
	args := []string{"api", "--host", host, "-X", "POST", fmt.Sprintf("jobs/%d/comments", id), "text=" + text}

	if c.DryRun {
		c.Log.Infof("Dry run: would execute %s %s", c.cliBinary(), strings.Join(args, " "))
		return nil
	}
	_, err := c.runner().Run(c.cliBinary(), args...)
	return err
}

func (c *CLI) cloneBinary() string {
	if c.CloneBinary == "" {
		return "openqa-clone-job"
	}
	return c.CloneBinary
}

func (c *CLI) cliBinary() string {
	if c.CLIBinary == "" {
		return "openqa-cli"
	}
	return c.CLIBinary
}
