package render

import "github.com/kv-base-hack/crypto-dashboard/common"

// CoinOptions is the display name -> coin id choice set of one pass.
// Names keep the upstream order.
type CoinOptions struct {
	Names []string
	ids   map[string]string
}

// NewCoinOptions builds the option set. When two coins share a display name
// the first one wins, the list is ordered by market cap so that is the larger
// coin. Coins that lost their name are returned so the caller can report them.
func NewCoinOptions(coins []common.CoinSummary) (CoinOptions, []common.CoinSummary) {
	opts := CoinOptions{
		Names: make([]string, 0, len(coins)),
		ids:   make(map[string]string, len(coins)),
	}
	var dropped []common.CoinSummary
	for _, c := range coins {
		if _, exist := opts.ids[c.Name]; exist {
			dropped = append(dropped, c)
			continue
		}
		opts.ids[c.Name] = c.ID
		opts.Names = append(opts.Names, c.Name)
	}
	return opts, dropped
}

func (o CoinOptions) ID(name string) (string, bool) {
	id, ok := o.ids[name]
	return id, ok
}

func (o CoinOptions) Len() int {
	return len(o.Names)
}

// Resolved is a selection checked against the current option sets.
type Resolved struct {
	CoinName string
	CoinID   string
	Range    common.TimeRange
}

// Selection returns the selection the pass actually used.
func (r Resolved) Selection() common.Selection {
	return common.Selection{Coin: r.CoinName, Range: r.Range.Label}
}

// Resolve maps an operator selection onto the current options. Unknown values
// fall back to the first option, like a dropdown whose choices changed.
// It returns false when there is no coin to choose from.
func Resolve(sel common.Selection, opts CoinOptions) (Resolved, bool) {
	if opts.Len() == 0 {
		return Resolved{}, false
	}

	name := sel.Coin
	id, ok := opts.ID(name)
	if !ok {
		name = opts.Names[0]
		id = opts.ids[name]
	}

	timeRange, ok := common.TimeRangeByLabel(sel.Range)
	if !ok {
		timeRange = common.TimeRanges[0]
	}

	return Resolved{
		CoinName: name,
		CoinID:   id,
		Range:    timeRange,
	}, true
}
