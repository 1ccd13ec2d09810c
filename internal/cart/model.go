package cart

import "strings"

type Item struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"productId"`
	Quantity  int     `json:"quantity"`
	Size      *string `json:"size,omitempty"`
	Color     *string `json:"color,omitempty"`
}

// Cart is a user's single shopping cart. Its methods never mutate the
// receiver; they return the new value and leave persistence to the caller.
type Cart struct {
	ID     int64  `json:"id"`
	UserID int64  `json:"userId"`
	Items  []Item `json:"items"`
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// AddItem merges quantity into the line for the same product, size and
// colour, or appends a new line with ID 0. It returns the updated cart and
// the affected line.
func (c Cart) AddItem(productID int64, quantity int, size, color *string) (Cart, Item) {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)

	for i, it := range items {
		if it.ProductID == productID && sameOption(it.Size, size) && sameOption(it.Color, color) {
			items[i].Quantity += quantity
			c.Items = items
			return c, items[i]
		}
	}

	item := Item{ProductID: productID, Quantity: quantity, Size: size, Color: color}
	c.Items = append(items, item)
	return c, item
}

// UpdateQuantity sets the quantity of one line. ok is false when the line is
// not in the cart.
func (c Cart) UpdateQuantity(itemID int64, quantity int) (Cart, Item, bool) {
	items := make([]Item, len(c.Items))
	copy(items, c.Items)

	for i := range items {
		if items[i].ID == itemID {
			items[i].Quantity = quantity
			c.Items = items
			return c, items[i], true
		}
	}
	return c, Item{}, false
}

// RemoveItem drops one line. ok is false when the line is not in the cart.
func (c Cart) RemoveItem(itemID int64) (Cart, bool) {
	items := make([]Item, 0, len(c.Items))
	found := false
	for _, it := range c.Items {
		if it.ID == itemID {
			found = true
			continue
		}
		items = append(items, it)
	}
	c.Items = items
	return c, found
}

func (c Cart) Find(itemID int64) (Item, bool) {
	for _, it := range c.Items {
		if it.ID == itemID {
			return it, true
		}
	}
	return Item{}, false
}

func (c Cart) ProductIDs() []int64 {
	seen := make(map[int64]struct{}, len(c.Items))
	ids := make([]int64, 0, len(c.Items))
	for _, it := range c.Items {
		if _, ok := seen[it.ProductID]; ok {
			continue
		}
		seen[it.ProductID] = struct{}{}
		ids = append(ids, it.ProductID)
	}
	return ids
}

func sameOption(a, b *string) bool {
	if a == nil || *a == "" {
		return b == nil || *b == ""
	}
	if b == nil {
		return false
	}
	return strings.EqualFold(*a, *b)
}
