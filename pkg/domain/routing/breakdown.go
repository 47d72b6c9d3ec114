package routing

import "math"

// ScoreBreakdown holds the seven sub-scores behind a routing decision.
type ScoreBreakdown struct {
	DataComplexity           int `json:"dataComplexity" yaml:"dataComplexity"`
	IntegrationComplexity    int `json:"integrationComplexity" yaml:"integrationComplexity"`
	UserScale                int `json:"userScale" yaml:"userScale"`
	SecurityRequirements     int `json:"securityRequirements" yaml:"securityRequirements"`
	AvailabilityRequirements int `json:"availabilityRequirements" yaml:"availabilityRequirements"`
	CustomizationNeeds       int `json:"customizationNeeds" yaml:"customizationNeeds"`
	TimeToMarket             int `json:"timeToMarket" yaml:"timeToMarket"`
}

// Values returns all seven sub-scores in a fixed order.
func (b ScoreBreakdown) Values() []int {
	return []int{
		b.DataComplexity,
		b.IntegrationComplexity,
		b.UserScale,
		b.SecurityRequirements,
		b.AvailabilityRequirements,
		b.CustomizationNeeds,
		b.TimeToMarket,
	}
}

// Average is the unweighted mean of the seven sub-scores.
func (b ScoreBreakdown) Average() float64 {
	values := b.Values()
	sum := 0
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// Score is the average rounded half up.
func (b ScoreBreakdown) Score() int {
	return int(math.Floor(b.Average() + 0.5))
}

// Factor is one row of the score table.
type Factor struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Score int    `json:"score"`
	Level string `json:"level"`
}

// Factors returns the six scored factors in report order. Time to market is
// an input, not a finding, so it is left out.
func (b ScoreBreakdown) Factors() []Factor {
	rows := []Factor{
		{Key: "dataComplexity", Label: "Data Complexity", Score: b.DataComplexity},
		{Key: "integrationComplexity", Label: "Integration Complexity", Score: b.IntegrationComplexity},
		{Key: "userScale", Label: "User Scale", Score: b.UserScale},
		{Key: "securityRequirements", Label: "Security Requirements", Score: b.SecurityRequirements},
		{Key: "availabilityRequirements", Label: "Availability Requirements", Score: b.AvailabilityRequirements},
		{Key: "customizationNeeds", Label: "Customization Needs", Score: b.CustomizationNeeds},
	}
	for i := range rows {
		rows[i].Level = Level(rows[i].Score)
	}
	return rows
}

// Level buckets a sub-score into Low, Medium or High.
func Level(score int) string {
	switch {
	case score < 30:
		return "Low"
	case score < 60:
		return "Medium"
	default:
		return "High"
	}
}
