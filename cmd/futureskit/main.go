// futureskit — futures symbology, contract chains, and continuous series.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/futureskit/api"
	"github.com/seenimoa/futureskit/internal/config"
	"github.com/seenimoa/futureskit/internal/datasource"
	"github.com/seenimoa/futureskit/internal/futures"
	"github.com/seenimoa/futureskit/internal/notation"
	"github.com/seenimoa/futureskit/internal/symbology"
	"github.com/seenimoa/futureskit/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "futureskit",
	Short: "futureskit — futures symbology, chains, and continuous series",
	Long: `futureskit
A toolkit for futures market plumbing: symbol notation parsing, vendor
symbology conversion, contract chain loading, roll schedules, and
back-adjusted continuous price series.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("provider", "", "data source override (demo, yahoo, tradingview, refinitiv)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(chainCmd)
	rootCmd.AddCommand(seriesCmd)
	rootCmd.AddCommand(scheduleCmd)
	rootCmd.AddCommand(newsCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(statusCmd)
}

// sourceFor builds the configured data source with vendor mappings for a root.
func sourceFor(cmd *cobra.Command, root string) datasource.FuturesDataSource {
	provider := cfg.Datasource.Provider
	if override, _ := cmd.Flags().GetString("provider"); override != "" {
		provider = override
	}

	vendors := symbology.VendorMap(cfg.VendorMap(root))
	switch strings.ToLower(provider) {
	case "yahoo":
		return datasource.NewYahoo(vendors)
	case "tradingview":
		return datasource.NewTradingView()
	case "refinitiv":
		return datasource.NewRefinitivWithBaseURL(cfg.Datasource.RefinitivBaseURL)
	default:
		return datasource.NewDemo(time.Time{}, 0)
	}
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("futureskit %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Parse Command ---

var parseCmd = &cobra.Command{
	Use:   "parse [symbol]",
	Short: "Parse a futures symbol",
	Long: `Parse a futures symbol into its components.

Examples:
  futureskit parse BRN_2026F
  futureskit parse CL26Z
  futureskit parse BRN.n.1`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := notation.Parse(args[0])

		fmt.Printf("Symbol:     %s\n", args[0])
		fmt.Printf("Canonical:  %s\n", p.String())
		fmt.Printf("Root:       %s\n", p.Root)
		if p.Continuous {
			fmt.Printf("Continuous: yes (rule %s, contract %d)\n", p.RollRule, p.ContractIndex)
		} else if p.Year != 0 {
			fmt.Printf("Year:       %d\n", p.Year)
			fmt.Printf("Month:      %s\n", p.Month)
		}
		for _, warning := range p.Warnings {
			fmt.Printf("⚠️  %s\n", warning)
		}
		if !p.IsValid() {
			return fmt.Errorf("could not parse symbol: %s", args[0])
		}
		return nil
	},
}

// --- Convert Command ---

var convertCmd = &cobra.Command{
	Use:   "convert [symbol]",
	Short: "Convert a symbol to vendor formats",
	Long: `Convert a futures symbol to one or all vendor symbology formats.

Examples:
  futureskit convert BRN_2026F
  futureskit convert BRN_2026F --format cme
  futureskit convert CL.n.1 --format tradingview`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := notation.Parse(args[0])
		if !p.IsValid() {
			return fmt.Errorf("could not parse symbol: %s", args[0])
		}

		vendors := symbology.VendorMap(cfg.VendorMap(p.Root))
		format, _ := cmd.Flags().GetString("format")

		if format != "" {
			converted, ok := symbology.Convert(p, format, vendors)
			if !ok {
				return fmt.Errorf("cannot convert %s to format %q", args[0], format)
			}
			fmt.Println(converted)
			return nil
		}

		for _, f := range symbology.Formats() {
			if converted, ok := symbology.Convert(p, f, vendors); ok {
				fmt.Printf("  %-12s %s\n", f+":", converted)
			}
		}
		return nil
	},
}

func init() {
	convertCmd.Flags().String("format", "", "target format (cme, ice, bloomberg, tradingview, refinitiv, ...)")
}

// --- Chain Command ---

var chainCmd = &cobra.Command{
	Use:   "chain [root]",
	Short: "List the contract chain for a root symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root := strings.ToUpper(args[0])
		source := sourceFor(cmd, root)

		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		contracts, err := source.ContractChain(ctx, root)
		if err != nil {
			return fmt.Errorf("failed to load chain: %w", err)
		}

		withData, _ := cmd.Flags().GetBool("data")
		if withData {
			contracts, err = datasource.LoadChainData(ctx, source, contracts)
			if err != nil {
				return err
			}
		}

		fmt.Printf("📜 %s contract chain (%s, %d contracts)\n\n", root, source.Name(), len(contracts))
		for _, c := range contracts {
			line := fmt.Sprintf("  %-12s", c.Canonical())
			if !c.ExpiryDate.IsZero() {
				line += fmt.Sprintf("  expires %s", utils.FormatDate(c.ExpiryDate))
			}
			if c.Data != nil {
				line += fmt.Sprintf("  (%d rows)", c.Data.Len())
			}
			fmt.Println(line)
		}
		return nil
	},
}

func init() {
	chainCmd.Flags().Bool("data", false, "prefetch price data for every contract")
}

// --- Series Command ---

var seriesCmd = &cobra.Command{
	Use:   "series [symbol]",
	Short: "Build a continuous price series",
	Long: `Build a stitched, optionally back-adjusted continuous series for a
continuous symbol in ROOT.rule.index notation.

Examples:
  futureskit series CL.n.1
  futureskit series BRN.c.2 --field settlement --start 2025-01-01`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 120*time.Second)
		defer cancel()

		cont, err := continuousFromArg(ctx, cmd, args[0])
		if err != nil {
			return err
		}

		field, _ := cmd.Flags().GetString("field")
		if field == "" {
			field = cfg.Continuous.Field
		}
		start, end, err := dateRangeFlags(cmd)
		if err != nil {
			return err
		}

		series, err := cont.Series(ctx, field, start, end)
		if err != nil {
			return err
		}

		fmt.Printf("📈 %s %s (%d points)\n\n", cont.Symbol(), field, len(series))
		tail, _ := cmd.Flags().GetInt("tail")
		points := series
		if tail > 0 && len(points) > tail {
			points = points[len(points)-tail:]
		}
		for _, p := range points {
			fmt.Printf("  %s  %10.2f\n", utils.FormatDate(p.Date), p.Value)
		}
		return nil
	},
}

func init() {
	seriesCmd.Flags().String("field", "", "price field to stitch (default from config)")
	seriesCmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	seriesCmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
	seriesCmd.Flags().Int("tail", 30, "print only the last N points (0 = all)")
}

// --- Schedule Command ---

var scheduleCmd = &cobra.Command{
	Use:   "schedule [symbol]",
	Short: "Show the roll schedule for a continuous symbol",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		cont, err := continuousFromArg(ctx, cmd, args[0])
		if err != nil {
			return err
		}

		start, end, err := dateRangeFlags(cmd)
		if err != nil {
			return err
		}

		schedule := cont.Schedule(start, end)
		fmt.Printf("🔄 %s roll schedule (%d rolls)\n\n", cont.Symbol(), len(schedule.Rolls))
		for _, roll := range schedule.Rolls {
			fmt.Printf("  %s  %s → %s\n",
				utils.FormatDate(roll.Date), roll.From.Canonical(), roll.To.Canonical())
		}

		if active, ok := cont.ActiveContract(time.Now().UTC()); ok {
			fmt.Printf("\n  active today: %s\n", active.Canonical())
		}
		return nil
	},
}

func init() {
	scheduleCmd.Flags().String("start", "", "start date (YYYY-MM-DD)")
	scheduleCmd.Flags().String("end", "", "end date (YYYY-MM-DD)")
}

// --- News Command ---

var newsCmd = &cobra.Command{
	Use:   "news [root]",
	Short: "Show commodity market news",
	Long: `Show market-wide commodity news, or news filtered for one root symbol.

Examples:
  futureskit news
  futureskit news CL --limit 5`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
		defer cancel()

		limit, _ := cmd.Flags().GetInt("limit")
		news := datasource.NewNews()

		if len(args) == 1 {
			root := strings.ToUpper(args[0])
			items, err := news.CommodityNews(ctx, root, limit)
			if err != nil {
				return err
			}
			fmt.Printf("📰 %s news (%d articles)\n\n", root, len(items))
			for _, a := range items {
				fmt.Printf("  [%s] %s\n    %s\n", a.Source, a.Title, a.URL)
			}
			return nil
		}

		items, err := news.MarketNews(ctx, limit)
		if err != nil {
			return err
		}
		fmt.Printf("📰 Commodity market news (%d articles)\n\n", len(items))
		for _, a := range items {
			fmt.Printf("  [%s] %s\n    %s\n", a.Source, a.Title, a.URL)
		}
		return nil
	},
}

func init() {
	newsCmd.Flags().Int("limit", 10, "maximum number of articles")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := api.NewServer(cfg)
		if err != nil {
			return err
		}

		addr := fmt.Sprintf("%s:%d", cfg.API.Host, cfg.API.Port)
		fmt.Printf("🌐 Starting futureskit API server on %s\n", addr)
		return srv.ListenAndServe(addr)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show system status and configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  futureskit — System Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:     %s (%s)\n", version, commit)
		fmt.Printf("  Time (UTC):  %s\n", time.Now().UTC().Format("2006-01-02 15:04:05"))
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Data Source:  %s\n", cfg.Datasource.Provider)
		fmt.Printf("    Default Roll: %s (offset %d, adjust %s)\n",
			cfg.Continuous.Roll, cfg.Continuous.Offset, cfg.Continuous.Adjust)
		fmt.Printf("    API Server:   %s:%d\n", cfg.API.Host, cfg.API.Port)
		fmt.Println()

		if len(cfg.Vendors) > 0 {
			fmt.Println("  Vendor Mappings:")
			for root, vc := range cfg.Vendors {
				fmt.Printf("    %-6s", root)
				if vc.RefinitivSymbol != "" {
					fmt.Printf(" refinitiv=%s", vc.RefinitivSymbol)
				}
				if vc.TradingViewSymbol != "" {
					fmt.Printf(" tradingview=%s:%s", vc.TradingViewExchange, vc.TradingViewSymbol)
				}
				if vc.YahooSymbol != "" {
					fmt.Printf(" yahoo=%s", vc.YahooSymbol)
				}
				fmt.Println()
			}
		}
		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}

// --- Helpers ---

// continuousFromArg resolves a CLI symbol argument into a loaded continuous
// future, rejecting non-continuous symbols with a usage hint.
func continuousFromArg(ctx context.Context, cmd *cobra.Command, symbol string) (*futures.ContinuousFuture, error) {
	p := notation.Parse(symbol)
	vendors := symbology.VendorMap(cfg.VendorMap(p.Root))
	source := sourceFor(cmd, p.Root)

	_, cont, err := futures.FromNotation(ctx, symbol, source, vendors)
	if err != nil {
		return nil, err
	}
	if cont == nil {
		return nil, fmt.Errorf("not a continuous symbol: %s; use ROOT.rule.index notation", symbol)
	}
	return cont, nil
}

// dateRangeFlags reads the optional --start/--end flags.
func dateRangeFlags(cmd *cobra.Command) (time.Time, time.Time, error) {
	var start, end time.Time
	var err error

	if v, _ := cmd.Flags().GetString("start"); v != "" {
		start, err = utils.ParseDate(v)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date; use YYYY-MM-DD")
		}
	}
	if v, _ := cmd.Flags().GetString("end"); v != "" {
		end, err = utils.ParseDate(v)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date; use YYYY-MM-DD")
		}
	}
	return start, end, nil
}
