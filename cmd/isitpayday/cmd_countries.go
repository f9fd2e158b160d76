package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var countriesCmd = &cobra.Command{
	Use:   "countries",
	Short: "List the countries holidays are available for",
	RunE:  runCountries,
}

func init() {
	rootCmd.AddCommand(countriesCmd)
}

func runCountries(cmd *cobra.Command, args []string) error {
	if err := loadCLIConfig(cmd); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HolidayFetchTimeout+5*time.Second)
	defer cancel()

	stack := buildHolidayStack(ctx, cfg, nil)
	defer stack.Close()

	countries, err := stack.Countries.AvailableCountries(ctx)
	if err != nil {
		return fmt.Errorf("fetch supported countries: %w", err)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, c := range countries {
		fmt.Fprintf(w, "%s\t%s\n", c.CountryCode, c.Name)
	}
	return w.Flush()
}
