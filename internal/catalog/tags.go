package catalog

import "strings"

// Matcher matches a raw tag when every All substring is present and no None
// substring is. Comparison is case-folded.
type Matcher struct {
	All  []string
	None []string
}

// Matches reports whether raw satisfies the matcher.
func (m Matcher) Matches(raw string) bool {
	s := strings.ToLower(raw)
	if len(m.All) == 0 {
		return false
	}
	for _, sub := range m.All {
		if !strings.Contains(s, strings.ToLower(sub)) {
			return false
		}
	}
	for _, sub := range m.None {
		if strings.Contains(s, strings.ToLower(sub)) {
			return false
		}
	}
	return true
}

// TagRule rewrites a raw tag matching Match to the canonical Tag.
type TagRule struct {
	Match Matcher
	Tag   string
}

func rule(tag string, all ...string) TagRule {
	return TagRule{Match: Matcher{All: all}, Tag: tag}
}

// DefaultTagRules is evaluated top to bottom; the first match wins, so
// specific spellings sit above the generic ones they contain.
var DefaultTagRules = []TagRule{
	// Cash and deposits
	rule("cash-shortage", "現金過不足"),
	rule("cash-shortage", "cash shortage"),
	rule("cash-shortage", "cash over and short"),
	rule("petty-cash", "小口現金"),
	rule("petty-cash", "petty cash"),
	rule("cash-book", "現金出納帳"),
	rule("cash-book", "cash book"),
	{Match: Matcher{All: []string{"現金"}, None: []string{"小口"}}, Tag: "cash-transactions"},
	{Match: Matcher{All: []string{"cash"}, None: []string{"petty"}}, Tag: "cash-transactions"},
	rule("overdraft", "当座", "借越"),
	rule("overdraft", "overdraft"),
	rule("checking-account", "当座"),
	rule("checking-account", "checking"),
	rule("savings-account", "普通預金"),
	rule("savings-account", "savings"),
	rule("time-deposit", "定期預金"),
	rule("time-deposit", "time deposit"),

	// Subsidiary books, ahead of the receivable and sales rules they overlap.
	rule("receivable-ledger", "売掛金元帳"),
	rule("receivable-ledger", "receivable ledger"),
	rule("sales-journal", "売上帳"),
	rule("sales-journal", "sales journal"),
	rule("purchase-journal", "仕入帳"),
	rule("purchase-journal", "purchase journal"),
	rule("general-ledger", "総勘定元帳"),
	rule("general-ledger", "general ledger"),

	// Notes before receivables and payables.
	rule("notes-receivable", "手形", "受取"),
	rule("notes-receivable", "notes receivable"),
	rule("notes-payable", "手形", "支払"),
	rule("notes-payable", "notes payable"),
	rule("notes", "手形"),
	rule("notes", "promissory"),
	rule("accounts-receivable", "売掛"),
	rule("accounts-receivable", "accounts receivable"),
	rule("accounts-payable", "買掛"),
	rule("accounts-payable", "accounts payable"),
	rule("loans-receivable", "貸付"),
	rule("loans-receivable", "loan receivable"),
	rule("loans-payable", "借入"),
	rule("loans-payable", "loan payable"),

	// Merchandise trading
	rule("cost-of-sales", "売上原価"),
	rule("cost-of-sales", "cost of sales"),
	rule("cost-of-sales", "cost of goods sold"),
	rule("advance-payment", "前払金"),
	rule("advance-payment", "前受金"),
	rule("advance-payment", "advance payment"),
	rule("advance-payment", "advance receipt"),
	rule("returns-allowances", "返品"),
	rule("returns-allowances", "値引"),
	rule("returns-allowances", "sales return"),
	rule("returns-allowances", "purchase return"),
	rule("shipping-costs", "諸掛"),
	rule("shipping-costs", "freight"),
	rule("shipping-costs", "shipping"),
	rule("basic-trading", "商品売買"),
	rule("basic-trading", "基本売買"),
	rule("basic-trading", "merchandise"),

	// Payroll and taxes
	rule("salary-payment", "給与"),
	rule("salary-payment", "給料"),
	rule("salary-payment", "salary"),
	rule("salary-payment", "payroll"),
	rule("withholding-tax", "源泉"),
	rule("withholding-tax", "withholding"),
	rule("resident-tax", "住民税"),
	rule("resident-tax", "resident tax"),
	rule("social-insurance", "社会保険"),
	rule("social-insurance", "健康保険"),
	rule("social-insurance", "厚生年金"),
	rule("social-insurance", "social insurance"),
	rule("corporate-tax", "法人税"),
	rule("corporate-tax", "corporate tax"),

	// Fixed assets
	rule("depreciation", "減価償却"),
	rule("depreciation", "depreciation"),
	rule("asset-sale", "固定資産", "売却"),
	rule("asset-sale", "asset sale"),
	rule("asset-retirement", "固定資産", "除却"),
	rule("asset-retirement", "asset retirement"),
	rule("asset-acquisition", "固定資産"),
	rule("asset-acquisition", "fixed asset"),

	// Year-end adjustments
	rule("bad-debt-allowance", "貸倒"),
	rule("bad-debt-allowance", "bad debt"),
	rule("provisions", "引当金"),
	rule("provisions", "provision"),
	rule("prepaid-expenses", "前払", "費用"),
	rule("prepaid-expenses", "prepaid expense"),
	rule("unearned-revenue", "前受", "収益"),
	rule("unearned-revenue", "unearned revenue"),
	rule("accrued-revenue", "未収"),
	rule("accrued-revenue", "accrued revenue"),
	rule("accrued-expenses", "未払"),
	rule("accrued-expenses", "accrued expense"),
	rule("accruals", "経過勘定"),
	rule("accruals", "accrual"),
	rule("closing-entries", "決算振替"),
	rule("closing-entries", "closing entr"),

	// Trial balances
	rule("total-trial-balance", "合計試算表"),
	rule("total-trial-balance", "total trial balance"),
	rule("balance-trial-balance", "残高試算表"),
	rule("balance-trial-balance", "balance trial balance"),
}

// Topic locates a canonical tag in the study strategy.
type Topic struct {
	Category    string
	Subcategory string
	Pattern     string
}

func topic(category, sub, pattern string) Topic {
	return Topic{Category: category, Subcategory: sub, Pattern: pattern}
}

// DefaultTopics maps canonical tags to strategy topics.
var DefaultTopics = map[string]Topic{
	"cash-transactions": topic("cash_deposit", "cash_transactions", ""),
	"cash-shortage":     topic("cash_deposit", "cash_transactions", "cash_shortage"),
	"petty-cash":        topic("cash_deposit", "cash_transactions", "petty_cash"),
	"checking-account":  topic("cash_deposit", "checking_account", ""),
	"overdraft":         topic("cash_deposit", "checking_account", "overdraft"),
	"savings-account":   topic("cash_deposit", "other_deposits", "savings_account"),
	"time-deposit":      topic("cash_deposit", "other_deposits", "time_deposit"),

	"basic-trading":      topic("sales_purchase", "basic_trading", ""),
	"advance-payment":    topic("sales_purchase", "basic_trading", "advance_payment"),
	"returns-allowances": topic("sales_purchase", "returns_discounts", ""),
	"shipping-costs":     topic("sales_purchase", "shipping_costs", ""),
	"cost-of-sales":      topic("sales_purchase", "year_end_adjustment", "cost_of_sales"),

	"accounts-receivable": topic("receivable_payable", "accounts_receivable_payable", "receivable_management"),
	"accounts-payable":    topic("receivable_payable", "accounts_receivable_payable", "payable_management"),
	"notes":               topic("receivable_payable", "notes", ""),
	"notes-receivable":    topic("receivable_payable", "notes", "notes_receivable"),
	"notes-payable":       topic("receivable_payable", "notes", "notes_payable"),
	"loans-receivable":    topic("receivable_payable", "loans", "lending"),
	"loans-payable":       topic("receivable_payable", "loans", "borrowing"),

	"salary-payment":   topic("salary_tax", "salary_payment", ""),
	"withholding-tax":  topic("salary_tax", "withholding_tax", "income_tax"),
	"resident-tax":     topic("salary_tax", "withholding_tax", "resident_tax"),
	"social-insurance": topic("salary_tax", "withholding_tax", "social_insurance"),
	"corporate-tax":    topic("salary_tax", "corporate_tax", ""),

	"asset-acquisition": topic("fixed_asset", "acquisition", ""),
	"depreciation":      topic("fixed_asset", "depreciation", ""),
	"asset-sale":        topic("fixed_asset", "disposal", "sale"),
	"asset-retirement":  topic("fixed_asset", "disposal", "retirement"),

	"provisions":         topic("adjustment", "provisions", ""),
	"bad-debt-allowance": topic("adjustment", "provisions", "bad_debt"),
	"accruals":           topic("adjustment", "accruals", ""),
	"prepaid-expenses":   topic("adjustment", "accruals", "prepaid_accrued"),
	"unearned-revenue":   topic("adjustment", "accruals", "prepaid_accrued"),
	"accrued-revenue":    topic("adjustment", "accruals", "accrued_deferred"),
	"accrued-expenses":   topic("adjustment", "accruals", "accrued_deferred"),
	"closing-entries":    topic("adjustment", "other_adjustments", "closing_entries"),

	"cash-book":         topic("cash_book", "", ""),
	"sales-journal":     topic("subsidiary_ledgers", "sales_ledger", ""),
	"purchase-journal":  topic("subsidiary_ledgers", "purchase_ledger", ""),
	"receivable-ledger": topic("subsidiary_ledgers", "receivable_ledger", ""),
	"general-ledger":    topic("account_entries", "general_ledger", ""),

	"total-trial-balance":   topic("trial_balance", "total_trial_balance", ""),
	"balance-trial-balance": topic("trial_balance", "balance_trial_balance", ""),
}

var canonicalTags = func() map[string]bool {
	m := make(map[string]bool, len(DefaultTagRules))
	for _, r := range DefaultTagRules {
		m[r.Tag] = true
	}
	return m
}()

// NormalizeTag returns the canonical form of a single raw tag. Canonical
// tags map to themselves.
func NormalizeTag(raw string) string {
	t := strings.TrimSpace(raw)
	if lower := strings.ToLower(t); canonicalTags[lower] {
		return lower
	}
	for _, r := range DefaultTagRules {
		if r.Match.Matches(t) {
			return r.Tag
		}
	}
	return strings.ToLower(t)
}

// NormalizeTags canonicalizes raw tags, dropping blanks and duplicates while
// keeping first-seen order.
func NormalizeTags(raw []string) []string {
	out := make([]string, 0, len(raw))
	seen := make(map[string]bool, len(raw))
	for _, r := range raw {
		if strings.TrimSpace(r) == "" {
			continue
		}
		t := NormalizeTag(r)
		if seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

// TopicFor returns the topic of the first normalized tag that has one.
func TopicFor(tags []string) (Topic, bool) {
	for _, t := range NormalizeTags(tags) {
		if tp, ok := DefaultTopics[t]; ok {
			return tp, true
		}
	}
	return Topic{}, false
}
