package curriculum

import "github.com/abhisek/boki/internal/catalog"

// UnrankedOrder is the learning order of topics missing from the matrix.
const UnrankedOrder = 999

// OrderEntry ranks a topic in the recommended study sequence.
type OrderEntry struct {
	Topic catalog.Topic
	Order int
}

func entry(order int, category, sub, pattern string) OrderEntry {
	return OrderEntry{
		Topic: catalog.Topic{Category: category, Subcategory: sub, Pattern: pattern},
		Order: order,
	}
}

// DefaultOrderMatrix lists topics in the order they are best learned.
var DefaultOrderMatrix = []OrderEntry{
	entry(1, "cash_deposit", "cash_transactions", "other_cash"),
	entry(2, "sales_purchase", "basic_trading", "basic_four"),
	entry(3, "cash_deposit", "other_deposits", "savings_account"),
	entry(4, "cash_deposit", "cash_transactions", "cash_shortage"),
	entry(5, "cash_deposit", "cash_transactions", "petty_cash"),
	entry(6, "cash_deposit", "checking_account", "checking_basic"),
	entry(7, "sales_purchase", "basic_trading", "advance_payment"),
	entry(8, "sales_purchase", "returns_discounts", ""),
	entry(9, "receivable_payable", "accounts_receivable_payable", ""),
	entry(10, "cash_deposit", "checking_account", "overdraft"),
	entry(11, "sales_purchase", "shipping_costs", ""),
	entry(12, "receivable_payable", "notes", ""),
	entry(13, "salary_tax", "salary_payment", ""),
	entry(14, "fixed_asset", "acquisition", ""),
	entry(15, "fixed_asset", "depreciation", "straight_line"),
	entry(16, "adjustment", "provisions", "bad_debt"),
	entry(17, "adjustment", "accruals", ""),
	entry(18, "sales_purchase", "year_end_adjustment", "cost_of_sales"),
	entry(19, "adjustment", "other_adjustments", "closing_entries"),
	entry(20, "cash_book", "", ""),
	entry(21, "subsidiary_ledgers", "", ""),
	entry(22, "account_entries", "", ""),
	entry(23, "trial_balance", "", ""),
}

// LearningOrder returns the position of t in the matrix. The first row with
// the same category wins, provided its subcategory and pattern agree with t
// wherever both sides specify them.
func LearningOrder(t catalog.Topic) int {
	for _, e := range DefaultOrderMatrix {
		if e.Topic.Category != t.Category {
			continue
		}
		if !agree(e.Topic.Subcategory, t.Subcategory) || !agree(e.Topic.Pattern, t.Pattern) {
			continue
		}
		return e.Order
	}
	return UnrankedOrder
}

func agree(a, b string) bool {
	return a == "" || b == "" || a == b
}
