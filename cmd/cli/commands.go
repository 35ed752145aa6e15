package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"rebase-sim/internal/analysis"
	"rebase-sim/internal/backtest"
	"rebase-sim/internal/config"
	"rebase-sim/internal/data"
	"rebase-sim/internal/model"
	"rebase-sim/internal/protocol"
	"rebase-sim/internal/strategy"
)

func newRootCmd(out io.Writer) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "rebase-sim",
		Short:         "Simulate staking, bonding and epoch economics of a rebase token",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			}
		},
	}
	root.SetOut(out)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log bond and rebase events")

	root.AddCommand(
		newStakingCmd(),
		newBondingCmd(),
		newEpochsCmd(),
		newRestakeCmd(),
		newSweepCmd(),
		newCompareCmd(),
	)
	return root
}

type horizonFlags struct {
	principal, price, rebaseRate float64
	periodLen, rebasePerDay      int
	pricesFile, outPath          string
}

func (f *horizonFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.principal, "principal", 10000, "Amount invested ($)")
	cmd.Flags().Float64Var(&f.price, "price", 8700, "Token price ($)")
	cmd.Flags().Float64Var(&f.rebaseRate, "rebase-rate", 0.9695, "Growth per rebase (percent)")
	cmd.Flags().IntVar(&f.periodLen, "period-len", model.DefaultPeriodLen, "Horizon in days")
	cmd.Flags().IntVar(&f.rebasePerDay, "rebase-per-day", model.DefaultRebasePerDay, "Rebases per day")
	cmd.Flags().StringVar(&f.pricesFile, "prices", "", "Optional JSON price schedule, one price per rebase")
	cmd.Flags().StringVar(&f.outPath, "out", "", "Optional ledger CSV output path")
}

func (f *horizonFlags) prices(n int) ([]float64, error) {
	if f.pricesFile == "" {
		return nil, nil
	}
	series, err := data.LoadPriceSeriesJSON(f.pricesFile)
	if err != nil {
		return nil, err
	}
	return data.Take(series, n)
}

func newStakingCmd() *cobra.Command {
	var f horizonFlags
	cmd := &cobra.Command{
		Use:   "staking",
		Short: "Compound a staked position over the horizon",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p := model.StakingParams{
				Principal:    f.principal,
				Price:        f.price,
				RebaseRate:   f.rebaseRate,
				PeriodLen:    f.periodLen,
				RebasePerDay: f.rebasePerDay,
			}
			prices, err := f.prices(p.Periods())
			if err != nil {
				return err
			}
			res, err := strategy.StakingWithPrices(p, prices)
			if err != nil {
				return err
			}
			if err := writeLedger(f.outPath, res.Ledger); err != nil {
				return err
			}
			final := res.Final()
			fmt.Fprintf(cmd.OutOrStdout(), "staking: periods=%d roi=%.4f%% apy=%.2f%% final balance=%.6f value=$%.2f\n",
				res.Periods(), res.ROI*100, res.APY*100, final.Balance, final.Value)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

type bondingFlags struct {
	horizonFlags
	bondDiscount, fee float64
	restake           string
	restakeEvery      int
}

func (f *bondingFlags) register(cmd *cobra.Command) {
	f.horizonFlags.register(cmd)
	cmd.Flags().Float64Var(&f.bondDiscount, "bond-discount", 6, "Bond discount off market price (percent)")
	cmd.Flags().Float64Var(&f.fee, "fee", model.DefaultFee, "Flat fee per step ($)")
	cmd.Flags().StringVar(&f.restake, "restake", "", `Restake pattern, e.g. "TTFT..." (default: always)`)
	cmd.Flags().IntVar(&f.restakeEvery, "restake-every", 0, "Restake every k-th step instead of a pattern")
}

func (f *bondingFlags) params() (model.BondingParams, error) {
	fee := f.fee
	return config.BondingConfig{
		Principal:    f.principal,
		Price:        f.price,
		RebaseRate:   f.rebaseRate,
		BondDiscount: f.bondDiscount,
		PeriodLen:    f.periodLen,
		RebasePerDay: f.rebasePerDay,
		Fee:          &fee,
		Restake:      f.restake,
		RestakeEvery: f.restakeEvery,
	}.ToModelParams()
}

func newBondingCmd() *cobra.Command {
	var f bondingFlags
	cmd := &cobra.Command{
		Use:   "bonding",
		Short: "Bond at a discount, vest linearly and optionally restake claims",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := f.params()
			if err != nil {
				return err
			}
			prices, err := f.prices(p.Periods())
			if err != nil {
				return err
			}
			res, err := strategy.BondingWithPrices(p, prices)
			if err != nil {
				return err
			}
			if err := writeLedger(f.outPath, res.Ledger); err != nil {
				return err
			}
			printBonding(cmd.OutOrStdout(), res)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func printBonding(w io.Writer, res *backtest.Result[backtest.BondingRow]) {
	final := res.Final()
	fmt.Fprintf(w, "bonding: periods=%d roi=%.4f%% apy=%.2f%% final bonded=%.6f notstaked=%.6f staked=%.6f value=$%.2f\n",
		res.Periods(), res.ROI*100, res.APY*100, final.Bonded, final.NotStaked, final.Staked, final.Value)
}

func newEpochsCmd() *cobra.Command {
	var (
		supply, price          float64
		epochs                 int
		mcapFrac, treasuryFrac float64
		fixed                  float64
		pricesFile             string
	)
	cmd := &cobra.Command{
		Use:   "epochs",
		Short: "Drive protocol treasury, supply and index through bond-and-rebase epochs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pc := config.ProtocolConfig{
				InitialSupply: supply,
				Epochs:        epochs,
				Price:         price,
				PricesFile:    pricesFile,
			}
			switch {
			case cmd.Flags().Changed("bond-treasury-fraction"):
				pc.BondPolicy = config.BondPolicyConfig{Kind: "treasury_fraction", Fraction: treasuryFrac}
			case cmd.Flags().Changed("bond-fixed"):
				pc.BondPolicy = config.BondPolicyConfig{Kind: "fixed", Amount: fixed}
			default:
				pc.BondPolicy = config.BondPolicyConfig{Kind: "market_cap_fraction", Fraction: mcapFrac}
			}
			return runProtocol(cmd.OutOrStdout(), pc)
		},
	}
	cmd.Flags().Float64Var(&supply, "supply", 1_000_000, "Initial token supply")
	cmd.Flags().Float64Var(&price, "price", 500, "Constant token price ($)")
	cmd.Flags().IntVar(&epochs, "epochs", 30, "Number of epochs")
	cmd.Flags().Float64Var(&mcapFrac, "bond-mcap-fraction", 0.1, "Bond this share of market cap every epoch")
	cmd.Flags().Float64Var(&treasuryFrac, "bond-treasury-fraction", 0, "Bond this share of the treasury every epoch")
	cmd.Flags().Float64Var(&fixed, "bond-fixed", 0, "Bond this $ amount every epoch")
	cmd.Flags().StringVar(&pricesFile, "prices", "", "Optional JSON price schedule, one price per epoch")
	return cmd
}

func runProtocol(w io.Writer, pc config.ProtocolConfig) error {
	if err := pc.Validate(); err != nil {
		return err
	}
	prices, err := pc.PriceSource()
	if err != nil {
		return err
	}
	policy, err := pc.BondPolicy.ToPolicy()
	if err != nil {
		return err
	}
	state, err := protocol.New(pc.InitialSupply,
		protocol.WithSink(func(d protocol.Dashboard) { fmt.Fprintln(w, d.String()) }),
		protocol.WithLogger(log.Logger),
	)
	if err != nil {
		return err
	}
	settlements, err := protocol.Run(state, prices, policy, pc.Epochs)
	if err != nil {
		return err
	}
	for _, st := range settlements {
		ev := log.Debug().Int("epoch", st.Epoch).Float64("roi", st.ROI).Float64("apy", st.APY)
		if runway, err := st.Runway(); err == nil {
			ev = ev.Float64("runway", runway)
		}
		ev.Msg("settled")
	}
	return nil
}

func newRestakeCmd() *cobra.Command {
	var (
		f           bondingFlags
		maxInterval int
	)
	cmd := &cobra.Command{
		Use:   "restake",
		Short: "Rank restake policies (always, never, every k steps) for a bond",
		RunE: func(cmd *cobra.Command, _ []string) error {
			f.restake, f.restakeEvery = "", 0
			p, err := f.params()
			if err != nil {
				return err
			}
			best, ranked, err := analysis.BestRestakePolicy(p, maxInterval)
			if err != nil {
				return err
			}
			printRanking(cmd.OutOrStdout(), ranked)
			fmt.Fprintf(cmd.OutOrStdout(), "best: %s\n", best.Name)
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().IntVar(&maxInterval, "max-interval", 5, "Largest k for the every-k policies")
	return cmd
}

func newSweepCmd() *cobra.Command {
	var (
		f     horizonFlags
		rates []float64
	)
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Staking ROI/APY across rebase rates",
		RunE: func(cmd *cobra.Command, _ []string) error {
			base := model.StakingParams{
				Principal:    f.principal,
				Price:        f.price,
				PeriodLen:    f.periodLen,
				RebasePerDay: f.rebasePerDay,
			}
			points, err := analysis.SweepRebaseRate(base, rates)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%-12s %-12s %-12s\n", "rate%", "roi%", "apy%")
			for _, pt := range points {
				fmt.Fprintf(w, "%-12.4f %-12.4f %-12.2f\n", pt.RebaseRate, pt.ROI*100, pt.APY*100)
			}
			return nil
		},
	}
	f.register(cmd)
	cmd.Flags().Float64SliceVar(&rates, "rates", []float64{0.25, 0.5, 0.75, 0.9695, 1.25}, "Rebase rates to evaluate (percent)")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var cfgPath string
	cmd := &cobra.Command{
		Use:     "compare",
		Aliases: []string{"run"},
		Short:   "Run a scenario file and rank its compare variations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			log.Debug().Str("config", cfgPath).Msg(cfg.Describe())
			w := cmd.OutOrStdout()

			if cfg.Staking != nil {
				res, err := strategy.Staking(cfg.Staking.ToModelParams())
				if err != nil {
					return err
				}
				fmt.Fprintf(w, "staking: periods=%d roi=%.4f%% apy=%.2f%%\n", res.Periods(), res.ROI*100, res.APY*100)
			}
			if cfg.Bonding != nil {
				p, err := cfg.Bonding.ToModelParams()
				if err != nil {
					return err
				}
				res, err := strategy.BondingWithRestake(p)
				if err != nil {
					return err
				}
				printBonding(w, res)
			}
			if len(cfg.Compare) > 0 {
				candidates := make([]analysis.Candidate, 0, len(cfg.Compare))
				for _, v := range cfg.Compare {
					s, err := cfg.Strategy(v)
					if err != nil {
						return err
					}
					candidates = append(candidates, analysis.Candidate{Name: v.Name, Strategy: s})
				}
				ranked, err := analysis.RankByROI(candidates)
				if err != nil {
					return err
				}
				printRanking(w, ranked)
			}
			if cfg.Protocol != nil {
				return runProtocol(w, *cfg.Protocol)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&cfgPath, "config", "", "Path to YAML scenario")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func printRanking(w io.Writer, ranked []analysis.Ranked) {
	fmt.Fprintf(w, "%-4s %-18s %-10s %-12s %-12s %-14s\n", "rank", "name", "strategy", "roi%", "apy%", "final$")
	for i, r := range ranked {
		fmt.Fprintf(w, "%-4d %-18s %-10s %-12.4f %-12.2f %-14.2f\n",
			i+1, r.Name, r.Strategy, r.ROI*100, r.APY*100, r.FinalValue)
	}
}

func writeLedger[R backtest.Row](path string, ledger []R) error {
	if path == "" {
		return nil
	}
	// ensure output dir exists
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := backtest.WriteLedgerCSV(path, ledger); err != nil {
		return err
	}
	log.Info().Int("rows", len(ledger)).Str("path", path).Msg("wrote ledger")
	return nil
}
