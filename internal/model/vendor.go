package model

// Vendor is one entry of the vendor registry supplied by the catalog
// collaborator.
type Vendor struct {
	ID                  string `json:"id"`
	Name                string `json:"name"`
	Type                string `json:"type,omitempty"` // e.g. supermarket, farm_box, market_stand
	FulfillmentEstimate string `json:"fulfillment_estimate,omitempty"`
	Priority            int    `json:"priority,omitempty"` // lower = preferred; 0 = unranked
}
