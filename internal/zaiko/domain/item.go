package domain

// Item is a tracked storeroom article. Min/Max bound the wanted stock
// level; Supplier references a supplier row when known. Updated is unix
// seconds of the last mutation.
type Item struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Current  float64  `json:"current"`
	Supplier *int64   `json:"supplier"`
	Link     *string  `json:"link"`
	Updated  int64    `json:"updated"`
}

// ShortageItem is an item whose stock has fallen to or below its minimum,
// with the order size needed to restock to the maximum.
type ShortageItem struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Location string  `json:"location"`
	Min      float64 `json:"min"`
	Current  float64 `json:"current"`
	Order    float64 `json:"order"`
}

// StockUpdate is one entry of a bulk stock take.
type StockUpdate struct {
	ItemID int64   `json:"id"`
	Amount float64 `json:"amount"`
}

// StockEntry is one point of an item's stock-level history.
type StockEntry struct {
	Amount float64 `json:"amount"`
	Time   int64   `json:"time"`
}

// Stats summarises a club's inventory for the dashboard.
type Stats struct {
	Items     int64 `json:"items"`
	Suppliers int64 `json:"suppliers"`
	Shortages int64 `json:"shortages"`
}
