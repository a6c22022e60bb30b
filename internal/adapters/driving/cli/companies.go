package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	companiesJSON    bool
	resolveThreshold float64
)

var companiesCmd = &cobra.Command{
	Use:   "companies",
	Short: "Company roster and name resolution",
}

var companiesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List companies with stored reports",
	Args:  cobra.NoArgs,
	RunE:  runCompaniesList,
}

var companiesResolveCmd = &cobra.Command{
	Use:   "resolve [name]",
	Short: "Resolve a company mention to its registered name",
	Long: `Resolves an abbreviation, English name or misspelling to the
canonical company name. Synonyms are checked first, then fuzzy matching
against the roster.`,
	Example: `  storm companies resolve 삼전
  storm companies resolve --threshold 80 "Hyundai Motor"`,
	Args: cobra.ExactArgs(1),
	RunE: runCompaniesResolve,
}

var companiesRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Reload the roster used for name resolution",
	Args:  cobra.NoArgs,
	RunE:  runCompaniesRefresh,
}

func init() {
	companiesListCmd.Flags().BoolVar(&companiesJSON, "json", false, "output names as JSON")
	companiesResolveCmd.Flags().Float64Var(&resolveThreshold, "threshold", 0,
		"fuzzy match cutoff from 0 to 100 (0 = configured default)")
	companiesCmd.AddCommand(companiesListCmd, companiesResolveCmd, companiesRefreshCmd)
	rootCmd.AddCommand(companiesCmd)
}

func runCompaniesList(cmd *cobra.Command, _ []string) error {
	if companyService == nil {
		return notConfigured("company")
	}

	names, err := companyService.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list companies: %w", err)
	}

	if companiesJSON {
		if names == nil {
			names = []string{}
		}
		return printJSON(cmd, names)
	}

	if len(names) == 0 {
		cmd.Println("No companies found.")
		return nil
	}
	for _, name := range names {
		cmd.Printf("  %s\n", name)
	}
	cmd.Printf("\n%d companies\n", len(names))
	return nil
}

func runCompaniesResolve(cmd *cobra.Command, args []string) error {
	if companyService == nil {
		return notConfigured("company")
	}
	if resolveThreshold < 0 || resolveThreshold > 100 {
		return fmt.Errorf("threshold must be between 0 and 100, got %g", resolveThreshold)
	}

	name, ok := companyService.Resolve(args[0], resolveThreshold)
	if !ok {
		cmd.Printf("%s: no confident match\n", args[0])
		return nil
	}
	cmd.Printf("%s -> %s\n", args[0], name)
	return nil
}

func runCompaniesRefresh(cmd *cobra.Command, _ []string) error {
	if companyService == nil {
		return notConfigured("company")
	}

	n, err := companyService.Refresh(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to refresh companies: %w", err)
	}
	cmd.Printf("Loaded %d companies\n", n)
	return nil
}
