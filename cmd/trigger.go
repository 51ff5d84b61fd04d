package cmd

import (
	"os"
	"regexp"

	"github.com/Wabri/scripts/pkg/bisect"
	"github.com/Wabri/scripts/pkg/openqa"
	"github.com/manifoldco/promptui"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// excludeGroupsEnv overrides the configured group-exclusion pattern.
const excludeGroupsEnv = "OPENQA_EXCLUDE_GROUP_REGEX"

var triggerPriorityAdd int
var triggerDryRun bool
var triggerInteractive bool
var triggerConfig string
var triggerExcludeGroups string

var triggerCmd = &cobra.Command{
	Use:   "trigger url",
	Short: "Trigger bisection jobs for the failed test job behind the given URL",
	Long: `Trigger bisection jobs for the failed test job behind the given URL.

The job's investigation diff against the last known-good run is parsed for
incident-list variables with more than one changed candidate. For every
suspect incident one clone of the original job is created with exactly that
incident's references removed, its priority is raised by the configured
offset, and a single comment listing all created jobs is posted on the
original job.

If the job passed, is itself an investigation job, was already cloned or is
part of a parallel or directly chained cluster, nothing is triggered.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		log := logrus.New()

		// Set logger verbosity
		if verbosity <= 0 {
			log.SetLevel(logrus.FatalLevel)
		} else if verbosity == 1 {
			log.SetLevel(logrus.ErrorLevel)
		} else if verbosity == 2 {
			log.SetLevel(logrus.WarnLevel)
		} else if verbosity == 3 {
			log.SetLevel(logrus.InfoLevel)
		} else {
			log.SetLevel(logrus.DebugLevel)
		}

		config, err := loadConfig()
		if err != nil {
			logrus.Fatalf("Failed to read config - %v", err)
		}
		if cmd.Flags().Changed("priority-add") {
			config.PriorityAdd = triggerPriorityAdd
		}

		pattern := config.ExcludeGroupRegex
		if env, ok := os.LookupEnv(excludeGroupsEnv); ok {
			pattern = env
		}
		if cmd.Flags().Changed("exclude-group-regex") {
			pattern = triggerExcludeGroups
		}
		var excludeGroups *regexp.Regexp
		if pattern != "" {
			excludeGroups, err = regexp.Compile(pattern)
			if err != nil {
				logrus.Fatalf("%s not a valid group exclusion pattern - %v", pattern, err)
			}
		}

		entry := logrus.NewEntry(log)
		trigger := &bisect.Trigger{
			Client: openqa.NewClient(config.RequestTimeout, config.Retry, entry),
			CLI: &openqa.CLI{
				CloneBinary: config.CloneBinary,
				CLIBinary:   config.CLIBinary,
				DryRun:      triggerDryRun,
				Log:         entry,
			},
			PriorityAdd:   config.PriorityAdd,
			ExcludeGroups: excludeGroups,
			Log:           entry,
		}
		if triggerInteractive {
			trigger.Confirm = confirmTrigger
		}

		if err := trigger.Run(args[0]); err != nil {
			logrus.Fatalf("Failed to trigger bisection jobs - %v", err)
		}
	},
}

func loadConfig() (*bisect.Config, error) {
	if triggerConfig == "" {
		return bisect.DefaultConfig()
	}
	file, err := os.Open(triggerConfig)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return bisect.GetConfigFromFile(file)
}

func confirmTrigger(jobs int) bool {
	logrus.Infof("About to trigger %d bisection jobs.", jobs)

	prompt := promptui.Prompt{
		Label:     "Proceed",
		IsConfirm: true,
	}

	_, err := prompt.Run()
	return err == nil
}

func init() {
	rootCmd.AddCommand(triggerCmd)

	triggerCmd.Flags().IntVarP(&triggerPriorityAdd, "priority-add", "p", 100, "Priority offset added to created bisection jobs")
	triggerCmd.Flags().BoolVarP(&triggerDryRun, "dry-run", "n", false, "Echo mutating commands instead of executing them")
	triggerCmd.Flags().BoolVarP(&triggerInteractive, "interactive", "i", false, "Ask for confirmation before triggering any jobs")
	triggerCmd.Flags().StringVarP(&triggerConfig, "config", "c", "", "Path to a yaml config file")
	triggerCmd.Flags().StringVar(&triggerExcludeGroups, "exclude-group-regex", "", "Skip jobs whose group name matches this pattern")
}
