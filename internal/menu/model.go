package menu

// Size is a priced variant of a menu item. When a size is chosen its price
// replaces the item's base price.
type Size struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// Addon is an optional extra priced on top of the item/size price.
type Addon struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

type Item struct {
	ID           string
	RestaurantID string
	Name         string
	// Price is the base price in whole rupees.
	Price     int
	Sizes     []Size
	Addons    []Addon
	Available bool
}

// Menu is one restaurant's current menu, indexed for checkout re-pricing.
type Menu struct {
	items map[string]Item
}

func New(items []Item) *Menu {
	m := &Menu{items: make(map[string]Item, len(items))}
	for _, it := range items {
		m.items[it.ID] = it
	}
	return m
}

// UnitPrice resolves one (item, size, addons) selection against the menu and
// returns the server-side unit price plus the item's display name. Prices are
// always derived here, never taken from the client.
func (m *Menu) UnitPrice(itemID, size string, addons []string) (int, string, error) {
	it, ok := m.items[itemID]
	if !ok || !it.Available {
		return 0, "", ErrItemUnavailable
	}

	price := it.Price
	if size != "" {
		found := false
		for _, s := range it.Sizes {
			if s.Name == size {
				price = s.Price
				found = true
				break
			}
		}
		if !found {
			return 0, "", ErrItemUnavailable
		}
	}

	for _, want := range addons {
		found := false
		for _, a := range it.Addons {
			if a.Name == want {
				price += a.Price
				found = true
				break
			}
		}
		if !found {
			return 0, "", ErrItemUnavailable
		}
	}

	return price, it.Name, nil
}
