package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Skufu/CareFusion/internal/assessment"
	"github.com/Skufu/CareFusion/internal/config"
	"github.com/Skufu/CareFusion/internal/platform/db"
	"github.com/Skufu/CareFusion/internal/risk"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			if cfg.DatabaseURL == "" {
				return fmt.Errorf("DATABASE_URL is required to run migrations")
			}
			return db.Migrate(cfg.DatabaseURL, newLogger(cfg))
		},
	})
	return cmd
}

func assessCmd() *cobra.Command {
	var mental, physical, userID string
	cmd := &cobra.Command{
		Use:   "assess",
		Short: "Run one risk assessment and print the routed outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := bootstrap(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			if userID == "" {
				userID = a.cfg.DefaultUserID
			}

			var session risk.Session[assessment.Outcome]
			if err := session.Submit(); err != nil {
				return err
			}
			out, err := a.assessments.Assess(cmd.Context(), userID, mental, physical)
			if err != nil {
				_ = session.Fail(err)
				return err
			}
			if err := session.Resolve(out); err != nil {
				return err
			}

			printOutcome(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&mental, "mental", "", "mental and emotional state, in the patient's words")
	cmd.Flags().StringVar(&physical, "physical", "", "physical symptoms, in the patient's words")
	cmd.Flags().StringVar(&userID, "user", "", "patient id the result is recorded under (default DEFAULT_USER_ID)")
	_ = cmd.MarkFlagRequired("mental")
	_ = cmd.MarkFlagRequired("physical")
	return cmd
}

func classifyCmd() *cobra.Command {
	var overall, mental, physical float64
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify scores with the local risk policy, without calling the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("config error: %w", err)
			}
			policy, err := risk.LoadPolicy(cfg.RiskPolicyFile)
			if err != nil {
				return err
			}
			level, route := policy.Classify(overall, mental, physical)
			printClassification(cmd.OutOrStdout(), level, route)
			return nil
		},
	}
	cmd.Flags().Float64Var(&overall, "overall", 0, "overall risk score, 0 to 100")
	cmd.Flags().Float64Var(&mental, "mental", 0, "mental score, 0 to 100")
	cmd.Flags().Float64Var(&physical, "physical", 0, "physical score, 0 to 100")
	_ = cmd.MarkFlagRequired("overall")
	return cmd
}

func levelColor(l risk.Level) *color.Color {
	switch risk.DisplayFor(l).Color {
	case "red":
		return color.New(color.FgRed, color.Bold)
	case "orange":
		return color.New(color.FgHiRed)
	case "amber":
		return color.New(color.FgYellow)
	default:
		return color.New(color.FgGreen)
	}
}

func printClassification(w io.Writer, level risk.Level, route risk.Route) {
	bold := color.New(color.Bold)
	levelColor(level).Fprintf(w, "%s\n", risk.DisplayFor(level).Label)
	bold.Fprint(w, "Route:  ")
	fmt.Fprintf(w, "%s -> %s\n", route, risk.Target(route))
}

func printOutcome(w io.Writer, out assessment.Outcome) {
	r := out.Result
	printClassification(w, r.Level, r.Route)

	bold := color.New(color.Bold)
	bold.Fprint(w, "Scores: ")
	fmt.Fprintf(w, "overall %.0f, mental %.0f, physical %.0f\n", r.OverallRisk, r.MentalScore, r.PhysicalScore)
	bold.Fprint(w, "Why:    ")
	fmt.Fprintln(w, r.Reasoning)

	if len(r.Recommendations) > 0 {
		bold.Fprintln(w, "Recommendations:")
		for i, rec := range r.Recommendations {
			fmt.Fprintf(w, "  %d. %s\n", i+1, rec)
		}
	}
	if !out.Saved {
		color.New(color.FgYellow).Fprintln(w, "Note: this result could not be saved to history.")
	}
	fmt.Fprintln(w, strings.Repeat("-", 40))
}
