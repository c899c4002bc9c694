package domain

// UsageSnapshot is the usage of the current billing period.
type UsageSnapshot struct {
	Name         string `json:"name"`
	PlanInterval string `json:"plan-interval"`
	Quota        int64  `json:"quota"`
	Rollover     string `json:"rollover"`
	Unit         string `json:"unit"`
	Usage        int64  `json:"usage"`
}

// PercentUsed returns usage as a percentage of quota, or 0 without a quota.
func (u UsageSnapshot) PercentUsed() float64 {
	if u.Quota <= 0 {
		return 0
	}
	return float64(u.Usage) / float64(u.Quota) * 100
}

func (u UsageSnapshot) Remaining() int64 {
	if u.Usage >= u.Quota {
		return 0
	}
	return u.Quota - u.Usage
}
