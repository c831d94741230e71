package deck

import "strconv"

// Composition summarizes a deck's makeup, weighted by quantity.
type Composition struct {
	TotalCards int              `json:"total_cards"`
	ByRole     map[Role]int     `json:"by_role"`
	ByCategory map[Category]int `json:"by_category"`
	TotalPrice float64          `json:"total_price"` // cardmarket price
}

// Composition counts cards per role and category and totals the cardmarket price.
// Prices the catalog reports in an unparseable form count as zero.
func (d *Deck) Composition() *Composition {
	comp := &Composition{
		ByRole:     make(map[Role]int, len(Roles)),
		ByCategory: make(map[Category]int, len(Categories)),
	}
	for _, r := range Roles {
		comp.ByRole[r] = 0
	}
	for _, c := range Categories {
		comp.ByCategory[c] = 0
	}

	for _, c := range d.Cards {
		comp.TotalCards += c.Quantity
		comp.ByRole[c.Role] += c.Quantity
		comp.ByCategory[c.Category] += c.Quantity

		price, err := strconv.ParseFloat(c.Price.Cardmarket, 64)
		if err == nil {
			comp.TotalPrice += price * float64(c.Quantity)
		}
	}

	return comp
}
