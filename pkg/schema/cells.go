package schema

// Well-known cell ids shared by the HTKK form layouts. The VAT declaration
// addresses its totals by ct-number; the corporate forms use named cells.
const (
	CellInputVAT    CellID = "ct24" // deductible input VAT
	CellOutputVAT   CellID = "ct28" // total output VAT declared
	CellRevenueAt5  CellID = "ct30" // revenue taxed at 5%
	CellVATAt5      CellID = "ct31" // VAT on ct30
	CellRevenueAt10 CellID = "ct32" // revenue taxed at 10%
	CellVATAt10     CellID = "ct33" // VAT on ct32
	CellTotalVAT    CellID = "ct35" // ct31 + ct33
	CellVATPayable  CellID = "ct36" // max(ct35 - ct24, 0)

	CellRevenue  CellID = "revenue"
	CellExpenses CellID = "expenses"
	CellProfit   CellID = "profit"
	CellTax      CellID = "corporate_tax"

	CellAnnualIncome CellID = "annual_income"
)
