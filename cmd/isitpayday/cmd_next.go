package main

import (
	"context"
	"fmt"
	"time"

	"isitpayday/internal/app"
	"isitpayday/internal/domain/payday"
	"isitpayday/internal/infra/config"
	"isitpayday/internal/infra/logger"

	"github.com/spf13/cobra"
)

var (
	nextCountry     string
	nextFrequency   string
	nextMonthlyRule string
	nextDay         int
	nextAnchor      string
	nextWeekday     string
	nextOffset      int
	nextToday       string
	nextStrict      bool
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the next payday",
	Long: `Compute the next payday once and print it.

Flags that are not given fall back to the PAYDAY_* environment profile.

Examples:
  # Last bank day of the month in Denmark
  isitpayday next --country DK --frequency monthly --monthly-rule last_bank_day

  # Every second Friday, counting from a known payday
  isitpayday next --country SE --frequency 14_days --anchor 2024-01-05

  # Weekly on Fridays, as seen from a given date
  isitpayday next --frequency weekly --weekday friday --today 2024-12-27
`,
	RunE: runNext,
}

func init() {
	f := nextCmd.Flags()
	f.StringVar(&nextCountry, "country", "", "ISO 3166-1 alpha-2 country code")
	f.StringVar(&nextFrequency, "frequency", "", "monthly, weekly, 14_days, 28_days, bimonthly, quarterly, semiannual or annual")
	f.StringVar(&nextMonthlyRule, "monthly-rule", "", "last_bank_day, first_bank_day or specific_day")
	f.IntVar(&nextDay, "day", 0, "Day of month for specific_day (1-31)")
	f.StringVar(&nextAnchor, "anchor", "", "A known payday (YYYY-MM-DD) for interval frequencies")
	f.StringVar(&nextWeekday, "weekday", "", "Payday weekday for weekly pay (name or 0=Monday..6=Sunday)")
	f.IntVar(&nextOffset, "offset", 0, "Calendar days before the last bank day")
	f.StringVar(&nextToday, "today", "", "Compute as of this date (YYYY-MM-DD) instead of today")
	f.BoolVar(&nextStrict, "strict", false, "Never report today as the next payday")
	rootCmd.AddCommand(nextCmd)
}

// loadCLIConfig loads configuration and keeps log output off stdout.
func loadCLIConfig(cmd *cobra.Command) error {
	var err error
	cfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger.InitCLI(cfg, cmd.ErrOrStderr())
	return nil
}

func runNext(cmd *cobra.Command, args []string) error {
	if err := loadCLIConfig(cmd); err != nil {
		return err
	}

	params, err := nextParams(cmd, cfg.DefaultProfile)
	if err != nil {
		return err
	}

	today := payday.DateOf(time.Now())
	if nextToday != "" {
		today, err = payday.ParseDate(nextToday)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
	}

	policy := cfg.TodayPolicy
	if nextStrict {
		policy = payday.StrictlyFuture
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), cfg.HolidayFetchTimeout+5*time.Second)
	defer cancel()

	stack := buildHolidayStack(ctx, cfg, nil)
	defer stack.Close()

	engine := app.NewPaydayEngine(stack.Cached, policy, logger.Component("engine"), nil)
	res, err := engine.ComputeParams(ctx, params, today)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Next payday: %s (%s)\n", res.Date, payday.WeekdayOf(res.Date))
	if res.IsPayday(today) {
		fmt.Fprintln(out, "Today is payday!")
	} else {
		fmt.Fprintf(out, "Days left: %d\n", res.Date.DaysSince(today))
	}
	if res.Degraded {
		fmt.Fprintln(out, "Warning: holidays could not be fetched, only weekends were skipped.")
	}
	return nil
}

// nextParams overlays the flags that were set on the environment profile.
func nextParams(cmd *cobra.Command, base payday.Params) (payday.Params, error) {
	p := base
	flags := cmd.Flags()

	if flags.Changed("country") {
		p.Country = nextCountry
	}
	if flags.Changed("frequency") {
		p.Frequency = nextFrequency
	}
	if flags.Changed("monthly-rule") {
		p.MonthlyRule = nextMonthlyRule
	}
	if flags.Changed("day") {
		day := nextDay
		p.SpecificDay = &day
	}
	if flags.Changed("anchor") {
		p.AnchorDate = nextAnchor
	}
	if flags.Changed("weekday") {
		wd, err := payday.ParseWeekday(nextWeekday)
		if err != nil {
			return p, err
		}
		idx := payday.WeekdayIndex(wd)
		p.Weekday = &idx
	}
	if flags.Changed("offset") {
		offset := nextOffset
		p.BankOffset = &offset
	}
	return p, nil
}
