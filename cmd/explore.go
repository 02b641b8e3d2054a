package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/okian/roboscout/internal/adapters/robotevents"
	"github.com/okian/roboscout/internal/explore"
)

func (c *cli) newExploreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "explore <endpoint>",
		Short: "Print the structure of a raw API response",
		Long:  "Endpoints:\n  " + strings.Join(explore.Describe(), "\n  "),
		Args:  cobra.ExactArgs(1),
		RunE:  c.runExplore,
	}
	f := cmd.Flags()
	f.StringVar(&c.exploreID, "id", "", "event or team id for endpoints that need one")
	f.StringToStringVar(&c.exploreFilters, "filter", nil, "query filters, e.g. --filter season=191,program=1")
	f.BoolVar(&c.exploreSave, "save", false, "save the JSON response to a timestamped file")
	f.StringVar(&c.outputDir, "output-dir", "", "directory receiving saved responses")
	return cmd
}

func (c *cli) runExplore(cmd *cobra.Command, args []string) error {
	cfg, log, err := c.setup(cmd)
	if err != nil {
		return err
	}
	if cfg.APIToken == "" {
		token, err := c.prompter().Token()
		if err != nil {
			return err
		}
		cfg.APIToken = token
	}

	client := robotevents.New(append(robotevents.OptionsFromConfig(cfg),
		robotevents.WithLogger(log.Named("robotevents")))...)
	ex := explore.New(client, c.out, cfg.OutputDir).WithClock(c.now)
	_, err = ex.Explore(cmd.Context(), explore.Request{
		Endpoint: args[0],
		ID:       c.exploreID,
		Filters:  c.exploreFilters,
		Save:     c.exploreSave,
	})
	if err != nil {
		return fmt.Errorf("explore %s: %w", args[0], err)
	}
	return nil
}
