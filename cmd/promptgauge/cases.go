package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agusespa/promptgauge/internal/suite"
)

var casesOpts selectionOpts

var casesCmd = &cobra.Command{
	Use:   "cases",
	Short: "List the loaded test cases",
	RunE:  runCases,
}

func init() {
	addSelectionFlags(casesCmd, &casesOpts)
	rootCmd.AddCommand(casesCmd)
}

func runCases(cmd *cobra.Command, args []string) error {
	s, err := suite.Load(casesOpts.casesDir)
	if err != nil {
		return err
	}

	filter := suite.NewFilter(suite.Metadata{}, casesOpts.platform, casesOpts.focus)
	cases := filter.Apply(s.Cases)

	banner("test cases")
	current := ""
	for _, tc := range cases {
		if tc.Category != current {
			current = tc.Category
			fmt.Printf("%s:\n", titleStyle.Render(current))
		}
		verdict := "clean"
		if tc.Expected.Detected {
			verdict = "violation"
		}
		fmt.Printf("  %-24s %-40s [%s] expected: %s\n", tc.ID, tc.Name, tc.Platform, verdict)
	}
	fmt.Printf("\n%d cases in %d categories\n", len(cases), len(s.Categories))
	return nil
}
