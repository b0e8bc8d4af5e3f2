package model

// ContractInfo captures the observed contract fields behind a grid cell.
type ContractInfo struct {
	Symbol       string  `json:"symbol"`
	LastPrice    float64 `json:"last_price"`
	Bid          float64 `json:"bid"`
	Ask          float64 `json:"ask"`
	Volume       int64   `json:"volume"`
	OpenInterest int64   `json:"open_interest"`
}
