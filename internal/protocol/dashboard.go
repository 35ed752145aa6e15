package protocol

import (
	"github.com/rs/zerolog/log"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Dashboard is the post-settlement view of one epoch, as printed by the epoch driver.
type Dashboard struct {
	Epoch     int     `json:"epoch"`
	Treasury  float64 `json:"treasury"`
	Supply    float64 `json:"supply"`
	Price     float64 `json:"price"`
	Index     float64 `json:"index"`
	MarketCap float64 `json:"market_cap"`
}

// Sink receives a dashboard every time an epoch settles.
type Sink func(Dashboard)

var printer = message.NewPrinter(language.English)

// String renders the dashboard as one human-readable line. The layout is not a
// contract; only the field set is.
func (d Dashboard) String() string {
	return printer.Sprintf(
		"Epoch %2d | Treasury: $%.0f, Supply: %.0f OHM, Price: $%.2f, Index: %.2f, MCap: $%.0f",
		d.Epoch, d.Treasury, d.Supply, d.Price, d.Index, d.MarketCap,
	)
}

// LogSink writes the dashboard to the global zerolog logger.
func LogSink(d Dashboard) {
	log.Info().
		Int("epoch", d.Epoch).
		Float64("treasury", d.Treasury).
		Float64("supply", d.Supply).
		Float64("price", d.Price).
		Float64("index", d.Index).
		Float64("mcap", d.MarketCap).
		Msg("dashboard")
}

// Collect returns a sink that appends every dashboard to dst.
func Collect(dst *[]Dashboard) Sink {
	return func(d Dashboard) { *dst = append(*dst, d) }
}

// Tee fans a dashboard out to several sinks; nil entries are skipped.
func Tee(sinks ...Sink) Sink {
	return func(d Dashboard) {
		for _, s := range sinks {
			if s != nil {
				s(d)
			}
		}
	}
}
