package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"rebase-sim/internal/backtest"
	"rebase-sim/internal/data"
	"rebase-sim/internal/model"
	"rebase-sim/internal/protocol"
	"rebase-sim/internal/strategy"
)

// Demo:
// - stake $10,000 at $8,700 with a 0.9695% rebase for 5 days
// - bond the same amount at a 6% discount and restake every claim
// - run 30 protocol epochs at $500, bonding 10% of market cap each epoch
func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	staking, err := strategy.Staking(model.NewStakingParams(10000, 8700, 0.9695))
	if err != nil {
		log.Fatal().Err(err).Msg("staking")
	}
	fmt.Println("=== staking ===")
	for i, r := range staking.Ledger {
		fmt.Printf("%2d  balance=%.6f  value=$%.2f\n", i, r.Balance, r.Value)
	}
	fmt.Printf("ROI %.4f%%  APY %.2f%%\n\n", staking.ROI*100, staking.APY*100)

	bonding, err := strategy.BondingWithRestake(model.NewBondingParams(10000, 8700, 0.9695, 6))
	if err != nil {
		log.Fatal().Err(err).Msg("bonding")
	}
	fmt.Println("=== bonding (restake every claim) ===")
	printBonding(bonding)

	fmt.Println("=== protocol epochs ===")
	var dashboards []protocol.Dashboard
	state, err := protocol.New(1_000_000, protocol.WithSink(protocol.Collect(&dashboards)))
	if err != nil {
		log.Fatal().Err(err).Msg("protocol")
	}
	if _, err := protocol.Run(state, data.ConstantPrice(500), protocol.MarketCapFraction(0.1), 30); err != nil {
		log.Fatal().Err(err).Msg("epochs")
	}
	for _, d := range dashboards {
		fmt.Println(d.String())
	}
}

func printBonding(res *backtest.Result[backtest.BondingRow]) {
	for i, r := range res.Ledger {
		fmt.Printf("%2d  bonded=%.6f  notstaked=%.6f  staked=%.6f  value=$%.2f\n",
			i, r.Bonded, r.NotStaked, r.Staked, r.Value)
	}
	fmt.Printf("ROI %.4f%%  APY %.2f%%\n\n", res.ROI*100, res.APY*100)
}
