package catalog

import "github.com/gyaneshwarpardhi/productflow/internal/graph"

// Item is one product record from the catalog source.
type Item struct {
	ID        int      `json:"id"`
	Title     string   `json:"title"`
	Category  string   `json:"category,omitempty"`
	Price     float64  `json:"price"`
	Thumbnail string   `json:"thumbnail,omitempty"`
	Images    []string `json:"images"`
}

// ProductData converts the item into the payload carried by a canvas node.
func (it Item) ProductData() graph.ProductData {
	images := make([]string, len(it.Images))
	copy(images, it.Images)
	return graph.ProductData{
		Name:   it.Title,
		Price:  it.Price,
		Images: images,
	}
}

// Resolve implements condition.EvalContext for catalog filter expressions.
// Known fields: id, title, category, price, images (the image count).
func (it Item) Resolve(path []string) (interface{}, bool) {
	if len(path) != 1 {
		return nil, false
	}
	switch path[0] {
	case "id":
		return float64(it.ID), true
	case "title":
		return it.Title, true
	case "category":
		return it.Category, true
	case "price":
		return it.Price, true
	case "images":
		return float64(len(it.Images)), true
	}
	return nil, false
}
