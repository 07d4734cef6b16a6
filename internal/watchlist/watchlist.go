package watchlist

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/InPursuitOfHisOwnHat/spongecake-autoreport/internal/model"
)

// Load reads the watchlist file: one `symbol,display_name` pair per line,
// lines starting with '#' are comments, blank lines are ignored. File order
// is preserved and becomes the section order of the final report.
func Load(path string) ([]model.WatchlistEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open watchlist: %w", err)
	}
	defer f.Close()

	var entries []model.WatchlistEntry
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		symbol, name, ok := strings.Cut(line, ",")
		if !ok {
			return nil, fmt.Errorf("watchlist line %d: expected symbol,display_name, got %q", lineNo, line)
		}
		symbol = strings.TrimSpace(symbol)
		name = strings.TrimSpace(name)
		if symbol == "" || name == "" {
			return nil, fmt.Errorf("watchlist line %d: empty symbol or display name", lineNo)
		}
		if seen[symbol] {
			return nil, fmt.Errorf("watchlist line %d: duplicate symbol %s", lineNo, symbol)
		}
		seen[symbol] = true
		entries = append(entries, model.WatchlistEntry{Symbol: symbol, DisplayName: name})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read watchlist: %w", err)
	}
	return entries, nil
}
