package domain

// Row maps a column name to its value.
type Row map[string]any

// Table is an ordered list of uniform rows, ready for a spreadsheet or CSV writer.
type Table struct {
	Columns []string `json:"columns"`
	Rows    []Row    `json:"rows"`
}

// Column names shared by every projection of analysis results.
const (
	ColBidAmount         = "Bid Amount"
	ColPrizeAmount       = "Prize Amount"
	ColWinnerInstallment = "Winner Installment"
	ColTotalPaid         = "Total Paid"
	ColNetInterestCost   = "Net Interest Cost"
	ColEffectiveInterest = "Effective Interest Rate"
	ColPeriodIRR         = "Period IRR"
	ColAnnualIRR         = "Annual IRR"
	ColFrequency         = "Frequency per Year"
	ColError             = "Error"
)
