package fundamentals

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// ICSource implements Source by scraping an Investors Chronicle style
// markets site: a summary tearsheet with a price quote and key ratios, and a
// financials tearsheet with income/balance/summary statement tables.
type ICSource struct {
	BaseURL string
	Client  *http.Client
}

// NewICSource creates a scraper with optional proxy support.
func NewICSource(baseURL, proxyURL string) *ICSource {
	if baseURL == "" {
		baseURL = "https://markets.investorschronicle.co.uk"
	}
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	return &ICSource{
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
	}
}

func (s *ICSource) Name() string { return "investors-chronicle" }

func (s *ICSource) fetchDoc(path, symbol string) (*goquery.Document, error) {
	u := fmt.Sprintf("%s%s?s=%s:LSE", s.BaseURL, path, url.QueryEscape(symbol))
	req, err := http.NewRequest("GET", u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := s.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return doc, nil
}

// Ratios scrapes the six calculated line items from the summary tearsheet.
// Individually missing values come back nil; only transport or parse
// failures error.
func (s *ICSource) Ratios(symbol string) (model.Ratios, error) {
	doc, err := s.fetchDoc("/data/equities/tearsheet/summary", symbol)
	if err != nil {
		return model.Ratios{}, err
	}

	ratios := model.Ratios{
		CurrentRatio:        findLabelledValue(doc, "Current ratio"),
		ROCEPct:             findLabelledValue(doc, "Return on capital employed", "ROCE"),
		EarningsYieldPctTTM: findLabelledValue(doc, "Earnings yield"),
		NAV:                 findLabelledValue(doc, "Net asset value", "NAV"),
		NAVPerShare:         findLabelledValue(doc, "NAV per share"),
	}

	// NAV/share as % of price is derived, not published.
	if ratios.NAVPerShare != nil {
		if price := findLabelledValue(doc, "Price", "Last price"); price != nil && *price != 0 {
			pct := *ratios.NAVPerShare / *price * 100.0
			ratios.NAVPerShareAsPctOfPrice = &pct
		}
	}
	return ratios, nil
}

func (s *ICSource) IncomeSheet(symbol string) (model.StatementTable, error) {
	return s.statement(symbol, "Income")
}

func (s *ICSource) BalanceSheet(symbol string) (model.StatementTable, error) {
	return s.statement(symbol, "Balance")
}

func (s *ICSource) SummarySheet(symbol string) (model.StatementTable, error) {
	return s.statement(symbol, "Summary")
}

func (s *ICSource) statement(symbol, keyword string) (model.StatementTable, error) {
	doc, err := s.fetchDoc("/data/equities/tearsheet/financials", symbol)
	if err != nil {
		return model.StatementTable{}, err
	}
	table, ok := findStatementTable(doc, keyword)
	if !ok {
		return model.StatementTable{}, fmt.Errorf("%s statement not found for %s", strings.ToLower(keyword), symbol)
	}
	return table, nil
}

// CurrentPrice scrapes the quote from the summary tearsheet.
func (s *ICSource) CurrentPrice(symbol string) (float64, error) {
	doc, err := s.fetchDoc("/data/equities/tearsheet/summary", symbol)
	if err != nil {
		return 0, err
	}
	if quote := strings.TrimSpace(doc.Find(".mod-tearsheet-overview__quote .mod-ui-data-list__value").First().Text()); quote != "" {
		if v := parseNumeric(quote); v != nil {
			return *v, nil
		}
	}
	if v := findLabelledValue(doc, "Price", "Last price"); v != nil {
		return *v, nil
	}
	return 0, fmt.Errorf("no quote found for %s", symbol)
}

// findLabelledValue scans label/value rows (table rows and dt/dd pairs) for
// the first label matching any of the given prefixes, case-insensitively.
func findLabelledValue(doc *goquery.Document, labels ...string) *float64 {
	var out *float64

	match := func(label string) bool {
		for _, want := range labels {
			if strings.HasPrefix(strings.ToLower(label), strings.ToLower(want)) {
				return true
			}
		}
		return false
	}

	doc.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td, th")
		if cells.Length() < 2 {
			return true
		}
		label := strings.TrimSpace(cells.First().Text())
		if !match(label) {
			return true
		}
		out = parseNumeric(strings.TrimSpace(cells.Last().Text()))
		return false
	})
	if out != nil {
		return out
	}

	doc.Find("dt").EachWithBreak(func(_ int, dt *goquery.Selection) bool {
		if !match(strings.TrimSpace(dt.Text())) {
			return true
		}
		out = parseNumeric(strings.TrimSpace(dt.Next().Text()))
		return false
	})
	return out
}

// findStatementTable locates the statement table whose caption or nearest
// preceding heading contains the keyword.
func findStatementTable(doc *goquery.Document, keyword string) (model.StatementTable, bool) {
	var table model.StatementTable
	found := false
	lower := strings.ToLower(keyword)

	doc.Find("table").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		title := strings.TrimSpace(sel.Find("caption").First().Text())
		if title == "" {
			title = strings.TrimSpace(sel.PrevFiltered("h2, h3").First().Text())
		}
		if !strings.Contains(strings.ToLower(title), lower) {
			return true
		}
		table = parseStatementTable(sel, title)
		found = true
		return false
	})
	return table, found
}

func parseStatementTable(sel *goquery.Selection, title string) model.StatementTable {
	out := model.StatementTable{Title: title}

	sel.Find("thead tr").First().Find("th, td").Each(func(_ int, cell *goquery.Selection) {
		out.Header = append(out.Header, strings.TrimSpace(cell.Text()))
	})

	sel.Find("tbody tr").Each(func(_ int, row *goquery.Selection) {
		var cells []string
		row.Find("th, td").Each(func(_ int, cell *goquery.Selection) {
			cells = append(cells, strings.TrimSpace(cell.Text()))
		})
		if len(cells) > 0 {
			out.Rows = append(out.Rows, cells)
		}
	})
	return out
}

// parseNumeric parses a scraped figure, tolerating currency symbols, commas,
// percent signs and parenthesised negatives. Returns nil for blank or
// placeholder values.
func parseNumeric(raw string) *float64 {
	cleaned := strings.TrimSpace(raw)
	if cleaned == "" || cleaned == "-" || strings.EqualFold(cleaned, "n/a") {
		return nil
	}

	negative := false
	if strings.HasPrefix(cleaned, "(") && strings.HasSuffix(cleaned, ")") {
		negative = true
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	for _, strip := range []string{",", "£", "$", "€", "%", "p", "m", "bn"} {
		cleaned = strings.ReplaceAll(cleaned, strip, "")
	}
	cleaned = strings.TrimSpace(cleaned)

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return nil
	}
	if negative {
		v = -v
	}
	return &v
}
