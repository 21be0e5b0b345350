package app

import (
	"ledger-engine/internal/core"

	"github.com/shopspring/decimal"
)

// The result types are the wire shapes both adapters render. Monetary
// amounts are fixed two-decimal strings so JSON consumers never see float
// artifacts.

// WarningDTO is one data-quality finding attached to a result.
type WarningDTO struct {
	Kind   string `json:"kind"`
	Source string `json:"source,omitempty"`
	Ref    string `json:"ref,omitempty"`
	Detail string `json:"detail"`
}

// LedgerDTO is one ledger row inside a statement group.
type LedgerDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Balance string `json:"balance"`
}

// GroupDTO is one node of the nested statement tree.
type GroupDTO struct {
	ID       string      `json:"id"`
	Name     string      `json:"name"`
	Ledgers  []LedgerDTO `json:"ledgers,omitempty"`
	Children []GroupDTO  `json:"children,omitempty"`
	Total    string      `json:"total"`
}

// SectionDTO is one statement bucket with its rolled-up total.
type SectionDTO struct {
	Label  string     `json:"label"`
	Groups []GroupDTO `json:"groups,omitempty"`
	Total  string     `json:"total"`
}

// BalanceSheetResult is returned by GetBalanceSheet.
type BalanceSheetResult struct {
	BuildID                   string       `json:"build_id"`
	AsOf                      string       `json:"as_of"`
	Assets                    SectionDTO   `json:"assets"`
	Liabilities               SectionDTO   `json:"liabilities"`
	Equity                    SectionDTO   `json:"equity"`
	ProfitAndLoss             string       `json:"profit_and_loss"`
	TotalAssets               string       `json:"total_assets"`
	TotalLiabilities          string       `json:"total_liabilities"`
	TotalEquity               string       `json:"total_equity"`
	TotalLiabilitiesAndEquity string       `json:"total_liabilities_and_equity"`
	IdentityDelta             string       `json:"identity_delta"`
	Balanced                  bool         `json:"balanced"`
	Warnings                  []WarningDTO `json:"warnings,omitempty"`
}

// ProfitAndLossResult is returned by GetProfitAndLoss.
type ProfitAndLossResult struct {
	BuildID   string       `json:"build_id"`
	AsOf      string       `json:"as_of"`
	Income    SectionDTO   `json:"income"`
	Expense   SectionDTO   `json:"expense"`
	NetProfit string       `json:"net_profit"`
	Warnings  []WarningDTO `json:"warnings,omitempty"`
}

// TrialBalanceRowDTO is one ledger line of the trial balance.
type TrialBalanceRowDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Debit  string `json:"debit"`
	Credit string `json:"credit"`
}

// TrialBalanceResult is returned by GetTrialBalance.
type TrialBalanceResult struct {
	BuildID     string               `json:"build_id"`
	AsOf        string               `json:"as_of"`
	Rows        []TrialBalanceRowDTO `json:"rows"`
	TotalDebit  string               `json:"total_debit"`
	TotalCredit string               `json:"total_credit"`
	Balanced    bool                 `json:"balanced"`
	Warnings    []WarningDTO         `json:"warnings,omitempty"`
}

func money(d decimal.Decimal) string { return d.StringFixed(2) }

func toWarningDTOs(warnings []core.Warning) []WarningDTO {
	out := make([]WarningDTO, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, WarningDTO{
			Kind:   string(w.Kind),
			Source: w.Source,
			Ref:    w.Ref,
			Detail: w.Detail,
		})
	}
	return out
}

func toGroupDTO(node core.GroupNode) GroupDTO {
	dto := GroupDTO{ID: node.GroupID, Name: node.Name, Total: money(node.Total)}
	for _, l := range node.Ledgers {
		dto.Ledgers = append(dto.Ledgers, LedgerDTO{ID: l.LedgerID, Name: l.Name, Balance: money(l.Balance)})
	}
	for _, child := range node.Children {
		dto.Children = append(dto.Children, toGroupDTO(child))
	}
	return dto
}

func toSectionDTO(label string, sec core.Section) SectionDTO {
	dto := SectionDTO{Label: label, Total: money(sec.Total)}
	for _, g := range sec.Groups {
		dto.Groups = append(dto.Groups, toGroupDTO(g))
	}
	return dto
}

func toBalanceSheetResult(buildID string, bs *core.BalanceSheet) *BalanceSheetResult {
	return &BalanceSheetResult{
		BuildID:                   buildID,
		AsOf:                      bs.Cutoff.Format("2006-01-02"),
		Assets:                    toSectionDTO("Assets", bs.Assets),
		Liabilities:               toSectionDTO("Liabilities", bs.Liabilities),
		Equity:                    toSectionDTO("Equity", bs.Equity),
		ProfitAndLoss:             money(bs.ProfitAndLoss),
		TotalAssets:               money(bs.TotalAssets),
		TotalLiabilities:          money(bs.TotalLiabilities),
		TotalEquity:               money(bs.TotalEquity),
		TotalLiabilitiesAndEquity: money(bs.TotalLiabilitiesAndEquity),
		IdentityDelta:             money(bs.IdentityDelta),
		Balanced:                  bs.Balanced,
		Warnings:                  toWarningDTOs(bs.Warnings),
	}
}

func toProfitAndLossResult(buildID string, pl *core.ProfitAndLoss) *ProfitAndLossResult {
	return &ProfitAndLossResult{
		BuildID:   buildID,
		AsOf:      pl.Cutoff.Format("2006-01-02"),
		Income:    toSectionDTO("Income", pl.Income),
		Expense:   toSectionDTO("Expense", pl.Expense),
		NetProfit: money(pl.NetProfit),
		Warnings:  toWarningDTOs(pl.Warnings),
	}
}

func toTrialBalanceResult(buildID string, tb *core.TrialBalance) *TrialBalanceResult {
	result := &TrialBalanceResult{
		BuildID:     buildID,
		AsOf:        tb.Cutoff.Format("2006-01-02"),
		TotalDebit:  money(tb.TotalDebit),
		TotalCredit: money(tb.TotalCredit),
		Balanced:    tb.Balanced,
		Warnings:    toWarningDTOs(tb.Warnings),
	}
	for _, row := range tb.Rows {
		result.Rows = append(result.Rows, TrialBalanceRowDTO{
			ID: row.LedgerID, Name: row.Name,
			Debit: money(row.Debit), Credit: money(row.Credit),
		})
	}
	return result
}
