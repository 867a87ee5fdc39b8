package models

// PlanInfo is a catalog entry shown on the plan picker screen.
type PlanInfo struct {
	ID       Plan    `json:"id"`
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Interval string  `json:"interval"`
}

// Plans is the fixed demo catalog. Amounts are SOL per month.
func Plans() []PlanInfo {
	return []PlanInfo{
		{ID: PlanBasic, Name: "Basic", Amount: 0.1, Interval: IntervalMonth},
		{ID: PlanPro, Name: "Pro", Amount: 0.5, Interval: IntervalMonth},
		{ID: PlanEnterprise, Name: "Enterprise", Amount: 2.0, Interval: IntervalMonth},
	}
}

// PlanAmount returns the monthly price for a plan, or 0 for an unknown plan.
func PlanAmount(p Plan) float64 {
	for _, info := range Plans() {
		if info.ID == p {
			return info.Amount
		}
	}
	return 0
}
