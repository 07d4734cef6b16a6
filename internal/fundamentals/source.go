package fundamentals

import (
	"fmt"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// Source defines the interface for fetching fundamental data for one symbol.
// Each operation may fail independently; a complete snapshot needs all of
// them.
type Source interface {
	Ratios(symbol string) (model.Ratios, error)
	IncomeSheet(symbol string) (model.StatementTable, error)
	BalanceSheet(symbol string) (model.StatementTable, error)
	SummarySheet(symbol string) (model.StatementTable, error)
	CurrentPrice(symbol string) (float64, error)
	Name() string
}

// Snapshot gathers everything the source knows about one symbol. Failure of
// any single fetch makes the whole snapshot unavailable, which the batch
// orchestrator treats as a per-instrument skip.
func Snapshot(src Source, symbol string) (*model.FundamentalsSnapshot, error) {
	ratios, err := src.Ratios(symbol)
	if err != nil {
		return nil, fmt.Errorf("ratios for %s: %w", symbol, err)
	}
	income, err := src.IncomeSheet(symbol)
	if err != nil {
		return nil, fmt.Errorf("income sheet for %s: %w", symbol, err)
	}
	balance, err := src.BalanceSheet(symbol)
	if err != nil {
		return nil, fmt.Errorf("balance sheet for %s: %w", symbol, err)
	}
	summary, err := src.SummarySheet(symbol)
	if err != nil {
		return nil, fmt.Errorf("summary sheet for %s: %w", symbol, err)
	}
	price, err := src.CurrentPrice(symbol)
	if err != nil {
		return nil, fmt.Errorf("current price for %s: %w", symbol, err)
	}
	return &model.FundamentalsSnapshot{
		Symbol:       symbol,
		CurrentPrice: price,
		Ratios:       ratios,
		Income:       income,
		Balance:      balance,
		Summary:      summary,
	}, nil
}

// MockSource returns fixed data for development and testing.
type MockSource struct {
	Price    float64
	Fixed    model.Ratios
	Sheet    model.StatementTable
	Err      error
	PriceErr error
}

func (m *MockSource) Name() string { return "mock" }

func (m *MockSource) Ratios(_ string) (model.Ratios, error) {
	if m.Err != nil {
		return model.Ratios{}, m.Err
	}
	return m.Fixed, nil
}

func (m *MockSource) IncomeSheet(_ string) (model.StatementTable, error) {
	return m.sheet("Income")
}

func (m *MockSource) BalanceSheet(_ string) (model.StatementTable, error) {
	return m.sheet("Balance")
}

func (m *MockSource) SummarySheet(_ string) (model.StatementTable, error) {
	return m.sheet("Summary")
}

func (m *MockSource) CurrentPrice(_ string) (float64, error) {
	if m.PriceErr != nil {
		return 0, m.PriceErr
	}
	if m.Err != nil {
		return 0, m.Err
	}
	return m.Price, nil
}

func (m *MockSource) sheet(title string) (model.StatementTable, error) {
	if m.Err != nil {
		return model.StatementTable{}, m.Err
	}
	if m.Sheet.Header != nil {
		t := m.Sheet
		t.Title = title
		return t, nil
	}
	return model.StatementTable{
		Title:  title,
		Header: []string{"LINE ITEM", "2023", "2024"},
		Rows:   [][]string{{"Revenue", "100.0", "110.0"}},
	}, nil
}
