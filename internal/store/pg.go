package store

import (
	"context"
	"fmt"
	"time"

	"ledger-engine/internal/core"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Store implements every core read repository over Postgres. All queries
// are plain reads; the engine never writes through this type.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) ListAccountGroups(ctx context.Context) ([]core.AccountGroup, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, nature, COALESCE(parent_id, ''), level, sort_key, allows_posting
		FROM account_groups
		ORDER BY sort_key, name, id`)
	if err != nil {
		return nil, fmt.Errorf("query account groups: %w", err)
	}
	defer rows.Close()

	var groups []core.AccountGroup
	for rows.Next() {
		var g core.AccountGroup
		var nature string
		if err := rows.Scan(&g.ID, &g.Name, &nature, &g.ParentID, &g.Level, &g.SortKey, &g.AllowsPosting); err != nil {
			return nil, fmt.Errorf("scan account group: %w", err)
		}
		g.Nature = core.Nature(nature)
		groups = append(groups, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("account group rows: %w", err)
	}
	return groups, nil
}

func (s *Store) ListLedgerAccounts(ctx context.Context) ([]core.LedgerAccount, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, group_id, nature, normal_side,
		       opening_amount, opening_side, opening_as_of,
		       COALESCE(system_role, ''), tracks_stock
		FROM ledger_accounts
		ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query ledger accounts: %w", err)
	}
	defer rows.Close()

	var ledgers []core.LedgerAccount
	for rows.Next() {
		var l core.LedgerAccount
		var nature, normalSide, openingSide, role string
		if err := rows.Scan(
			&l.ID, &l.Name, &l.GroupID, &nature, &normalSide,
			&l.OpeningAmount, &openingSide, &l.OpeningAsOf,
			&role, &l.TracksStock,
		); err != nil {
			return nil, fmt.Errorf("scan ledger account: %w", err)
		}
		l.Nature = core.Nature(nature)
		l.NormalSide = core.Side(normalSide)
		l.OpeningSide = core.Side(openingSide)
		l.Role = core.SystemRole(role)
		ledgers = append(ledgers, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ledger account rows: %w", err)
	}
	return ledgers, nil
}

func (s *Store) ListJournalVouchers(ctx context.Context, upTo time.Time) ([]core.JournalVoucher, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT v.id, v.date, v.narration, l.ledger_id, l.debit, l.credit
		FROM journal_vouchers v
		JOIN voucher_lines l ON l.voucher_id = v.id
		WHERE v.date <= $1::date
		ORDER BY v.date, v.id, l.line_no`, upTo.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query journal vouchers: %w", err)
	}
	defer rows.Close()

	var vouchers []core.JournalVoucher
	index := make(map[string]int)
	for rows.Next() {
		var (
			id, narration, ledgerID string
			date                    time.Time
			debit, credit           decimal.Decimal
		)
		if err := rows.Scan(&id, &date, &narration, &ledgerID, &debit, &credit); err != nil {
			return nil, fmt.Errorf("scan voucher line: %w", err)
		}
		i, ok := index[id]
		if !ok {
			vouchers = append(vouchers, core.JournalVoucher{ID: id, Date: date, Narration: narration})
			i = len(vouchers) - 1
			index[id] = i
		}
		vouchers[i].Lines = append(vouchers[i].Lines, core.VoucherLine{
			LedgerID: ledgerID, Debit: debit, Credit: credit,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("voucher rows: %w", err)
	}
	return vouchers, nil
}

func (s *Store) ListSalesInvoices(ctx context.Context, upTo time.Time) ([]core.SalesInvoice, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, date, customer_ledger_id, grand_total, taxable_value
		FROM sales_invoices
		WHERE date <= $1::date
		ORDER BY date, id`, upTo.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query sales invoices: %w", err)
	}
	defer rows.Close()

	var invoices []core.SalesInvoice
	index := make(map[string]int)
	for rows.Next() {
		var inv core.SalesInvoice
		if err := rows.Scan(&inv.ID, &inv.Date, &inv.CustomerLedgerID, &inv.GrandTotal, &inv.TaxableValue); err != nil {
			return nil, fmt.Errorf("scan sales invoice: %w", err)
		}
		index[inv.ID] = len(invoices)
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sales invoice rows: %w", err)
	}
	if len(invoices) == 0 {
		return nil, nil
	}

	taxRows, err := s.pool.Query(ctx, `
		SELECT t.invoice_id, t.label, COALESCE(t.system_role, ''), t.amount
		FROM invoice_taxes t
		JOIN sales_invoices i ON i.id = t.invoice_id
		WHERE i.date <= $1::date
		ORDER BY t.invoice_id, t.id`, upTo.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("query invoice taxes: %w", err)
	}
	defer taxRows.Close()

	for taxRows.Next() {
		var (
			invoiceID, label, role string
			amount                 decimal.Decimal
		)
		if err := taxRows.Scan(&invoiceID, &label, &role, &amount); err != nil {
			return nil, fmt.Errorf("scan invoice tax: %w", err)
		}
		if i, ok := index[invoiceID]; ok {
			invoices[i].Taxes = append(invoices[i].Taxes, core.TaxLine{
				Label: label, Role: core.SystemRole(role), Amount: amount,
			})
		}
	}
	if err := taxRows.Err(); err != nil {
		return nil, fmt.Errorf("invoice tax rows: %w", err)
	}
	return invoices, nil
}

// ListStockValuations derives the valuation snapshot in the database:
// quantity on hand times weighted-average unit cost, grouped by the ledger
// label each stock item is classified under.
func (s *Store) ListStockValuations(ctx context.Context) ([]core.StockValuation, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT ledger_label, COALESCE(SUM(qty_on_hand * unit_cost), 0)
		FROM stock_items
		GROUP BY ledger_label
		ORDER BY ledger_label`)
	if err != nil {
		return nil, fmt.Errorf("query stock valuations: %w", err)
	}
	defer rows.Close()

	var valuations []core.StockValuation
	for rows.Next() {
		var v core.StockValuation
		if err := rows.Scan(&v.LedgerLabel, &v.Value); err != nil {
			return nil, fmt.Errorf("scan stock valuation: %w", err)
		}
		valuations = append(valuations, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stock valuation rows: %w", err)
	}
	return valuations, nil
}
