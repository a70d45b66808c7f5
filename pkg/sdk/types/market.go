package types

// Market is a gamma API market.
type Market struct {
	ID            string  `json:"id"`
	Question      string  `json:"question"`
	ConditionID   string  `json:"conditionId"`
	Slug          string  `json:"slug"`
	ClobTokenIDs  string  `json:"clobTokenIds"`
	Outcomes      string  `json:"outcomes"`
	OutcomePrices string  `json:"outcomePrices"`
	Active        bool    `json:"active"`
	Closed        bool    `json:"closed"`
	StartDate     string  `json:"startDate"`
	EndDate       string  `json:"endDate"`
	Category      string  `json:"category"`
	Volume        string  `json:"volume"`
	Liquidity     string  `json:"liquidity"`
	BestBid       float64 `json:"bestBid"`
	BestAsk       float64 `json:"bestAsk"`
}
