package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

// Row is a ledger row that can be exported as CSV.
type Row interface {
	Header() []string
	Record() []string
}

func (StakingRow) Header() []string { return []string{"balance", "value"} }

func (r StakingRow) Record() []string {
	return []string{fmtFloat(r.Balance), fmtFloat(r.Value)}
}

func (BondingRow) Header() []string {
	return []string{"bonded", "notstaked", "staked", "balance", "value"}
}

func (r BondingRow) Record() []string {
	return []string{
		fmtFloat(r.Bonded),
		fmtFloat(r.NotStaked),
		fmtFloat(r.Staked),
		fmtFloat(r.Balance()),
		fmtFloat(r.Value),
	}
}

func WriteLedgerCSV[R Row](path string, ledger []R) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return EncodeLedgerCSV(f, ledger)
}

// EncodeLedgerCSV writes an "index" column followed by the row fields.
func EncodeLedgerCSV[R Row](out io.Writer, ledger []R) error {
	w := csv.NewWriter(out)

	var zero R
	header := append([]string{"index"}, zero.Header()...)
	if err := w.Write(header); err != nil {
		return err
	}

	for i, r := range ledger {
		row := append([]string{strconv.Itoa(i)}, r.Record()...)
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
