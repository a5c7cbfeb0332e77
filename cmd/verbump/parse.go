package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/verbump/verbump/internal/parsing"
)

var parseTag bool

// parseCmd parses one commit message (or tag name) with the configured
// patterns, for debugging configuration.
var parseCmd = &cobra.Command{
	Use:   "parse <text>",
	Short: "Parse a commit message or tag name with the configured patterns",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().BoolVar(&parseTag, "tag", false, "parse the argument as a tag name instead of a commit message")
}

func runParse(cmd *cobra.Command, args []string) error {
	if parseTag {
		details, err := parsing.TagVersion(args[0], cfg.TagPattern)
		if err != nil {
			return err
		}
		fmt.Printf("version:  %s\n", details.Version)
		if details.Scope != "" {
			fmt.Printf("scope:    %s\n", details.Scope)
		}
		return nil
	}

	details, err := parsing.RequireCommitDetails(args[0], cfg.CommitPattern)
	if err != nil {
		return err
	}
	fmt.Printf("type:        %s\n", details.Type)
	if details.Scope != "" {
		fmt.Printf("scope:       %s\n", details.Scope)
	}
	fmt.Printf("breaking:    %t\n", details.Breaking)
	fmt.Printf("description: %s\n", details.Description)
	return nil
}
