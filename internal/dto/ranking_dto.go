package dto

import "crmventas/internal/ranking"

type RankingFilter struct {
	Month           string `form:"month"`
	ActivationGroup string `form:"activationGroup"`
	// Product is nil when the parameter is absent; an empty value matches
	// every product.
	Product *string `form:"-"`
}

// RankingTabsResponse is always served with 200; Success is false and Error
// set when the month's leads could not be read.
type RankingTabsResponse struct {
	Success         bool         `json:"success"`
	Error           string       `json:"error,omitempty"`
	Month           string       `json:"month"`
	ActivationGroup string       `json:"activationGroup"`
	Product         string       `json:"product"`
	Tabs            ranking.Tabs `json:"tabs"`
}
