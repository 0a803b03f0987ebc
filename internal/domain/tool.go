package domain

import "time"

type ToolStatus string

const (
	ToolStatusAvailable   ToolStatus = "AVAILABLE"
	ToolStatusUnavailable ToolStatus = "UNAVAILABLE"
)

type ToolCondition string

const (
	ToolConditionExcellent  ToolCondition = "EXCELLENT"
	ToolConditionGood       ToolCondition = "GOOD"
	ToolConditionAcceptable ToolCondition = "ACCEPTABLE"
	ToolConditionDamaged    ToolCondition = "DAMAGED/NEEDS_REPAIR"
)

// Tool is the catalog's read-only view of a rentable item.
type Tool struct {
	ID               int32         `json:"id"`
	OwnerID          int32         `json:"owner_id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Categories       []string      `json:"categories"`
	PricePerDayCents int32         `json:"price_per_day_cents"`
	DepositCents     int32         `json:"deposit_cents"`
	Condition        ToolCondition `json:"condition"`
	Metro            string        `json:"metro"`
	Status           ToolStatus    `json:"status"`
	CreatedOn        time.Time     `json:"created_on"`
	DeletedOn        *time.Time    `json:"deleted_on,omitempty"`
}

func (t *Tool) Rentable() bool {
	return t.Status == ToolStatusAvailable && t.DeletedOn == nil
}
