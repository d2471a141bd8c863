package models

// RecommendRequest is the HTTP payload for one pricing decision. All fields
// are required; Price is yesterday's realized company price.
type RecommendRequest struct {
	Date       string   `json:"date" validate:"required,datetime=2006-01-02"`
	Price      *float64 `json:"price" validate:"required,gt=0"`
	Cost       *float64 `json:"cost" validate:"required,gt=0"`
	Comp1Price *float64 `json:"comp1_price" validate:"required,gt=0"`
	Comp2Price *float64 `json:"comp2_price" validate:"required,gt=0"`
	Comp3Price *float64 `json:"comp3_price" validate:"required,gt=0"`
}
