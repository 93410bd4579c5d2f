package domain

// CategoryList is the single document holding the storefront's category
// names in display order.
type CategoryList struct {
	Categories []string `json:"categories"`
}
