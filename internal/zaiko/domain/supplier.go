package domain

// Supplier is a vendor a club orders from. Username/Password are the
// club's shared ordering credentials, stored as entered.
type Supplier struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Link     *string `json:"link"`
	Notes    *string `json:"notes"`
	Username *string `json:"username"`
	Password *string `json:"password"`
	Updated  int64   `json:"updated"`
}

// SupplierRef is the compact id/name pair used by item pickers.
type SupplierRef struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
