package routing_test

import (
	"testing"

	"github.com/felixgeelhaar/intakerouter/pkg/domain/intake"
	"github.com/felixgeelhaar/intakerouter/pkg/domain/routing"
)

func TestClassify_RuleOrder(t *testing.T) {
	cfg := routing.DefaultConfig()
	buyish := routing.ScoreBreakdown{
		DataComplexity: 20, IntegrationComplexity: 10, UserScale: 10,
		SecurityRequirements: 10, AvailabilityRequirements: 40, CustomizationNeeds: 20, TimeToMarket: 50,
	}

	tests := []struct {
		name   string
		mutate func(b *routing.ScoreBreakdown)
		class  intake.DataClassification
		want   routing.DeliveryPath
	}{
		{"baseline is buy", func(b *routing.ScoreBreakdown) {}, intake.ClassificationPublic, routing.PathBuy},
		{"restricted overrides buy", func(b *routing.ScoreBreakdown) {}, intake.ClassificationRestricted, routing.PathCritical},
		{"unknown classification fails closed", func(b *routing.ScoreBreakdown) {}, "classified", routing.PathCritical},
		{"security at threshold is not critical", func(b *routing.ScoreBreakdown) { b.SecurityRequirements = 80 }, intake.ClassificationPublic, routing.PathBuy},
		{"security above threshold", func(b *routing.ScoreBreakdown) { b.SecurityRequirements = 81 }, intake.ClassificationPublic, routing.PathCritical},
		{"availability above threshold", func(b *routing.ScoreBreakdown) { b.AvailabilityRequirements = 90 }, intake.ClassificationPublic, routing.PathCritical},
		{"critical beats product grade", func(b *routing.ScoreBreakdown) {
			b.AvailabilityRequirements = 90
			b.IntegrationComplexity = 100
		}, intake.ClassificationInternal, routing.PathCritical},
		{"customization above threshold", func(b *routing.ScoreBreakdown) { b.CustomizationNeeds = 75 }, intake.ClassificationInternal, routing.PathProductGrade},
		{"high average", func(b *routing.ScoreBreakdown) {
			b.DataComplexity, b.UserScale, b.SecurityRequirements = 70, 100, 75
			b.AvailabilityRequirements, b.IntegrationComplexity, b.CustomizationNeeds = 60, 60, 60
		}, intake.ClassificationConfidential, routing.PathProductGrade},
		{"disposable needs urgency", func(b *routing.ScoreBreakdown) { b.TimeToMarket = 71 }, intake.ClassificationPublic, routing.PathAIDisposable},
		{"disposable needs small audience", func(b *routing.ScoreBreakdown) {
			b.TimeToMarket = 90
			b.UserScale = 50
		}, intake.ClassificationPublic, routing.PathBuy},
		{"config default", func(b *routing.ScoreBreakdown) { b.CustomizationNeeds = 30 }, intake.ClassificationInternal, routing.PathConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := buyish
			tt.mutate(&b)
			d := routing.Classify(b, tt.class, cfg)
			if d.Path != tt.want {
				t.Errorf("path = %s, want %s (rule %s, reasons %v)", d.Path, tt.want, d.Rule, d.Reasons)
			}
			if len(d.Reasons) == 0 {
				t.Error("decision carries no reasons")
			}
		})
	}
}

func TestClassify_UsesConfiguredThresholds(t *testing.T) {
	cfg := routing.DefaultConfig()
	cfg.Thresholds.BuyIntegration = 5

	b := routing.ScoreBreakdown{
		DataComplexity: 20, IntegrationComplexity: 10, UserScale: 10,
		SecurityRequirements: 10, AvailabilityRequirements: 40, CustomizationNeeds: 20, TimeToMarket: 50,
	}
	if d := routing.Classify(b, intake.ClassificationPublic, cfg); d.Path != routing.PathConfig {
		t.Errorf("path = %s, want CONFIG", d.Path)
	}
}

func TestClassify_IsTotal(t *testing.T) {
	cfg := routing.DefaultConfig()
	values := []int{0, 29, 30, 35, 40, 60, 70, 71, 80, 81, 85, 86, 100}
	for _, v := range values {
		for _, w := range values {
			b := routing.ScoreBreakdown{
				DataComplexity: v, IntegrationComplexity: w, UserScale: v,
				SecurityRequirements: w, AvailabilityRequirements: v, CustomizationNeeds: w, TimeToMarket: v,
			}
			for _, c := range intake.AllClassifications() {
				if d := routing.Classify(b, c, cfg); !d.Path.IsValid() {
					t.Fatalf("invalid path %q for %+v", d.Path, b)
				}
			}
		}
	}
}

func TestParseDeliveryPath(t *testing.T) {
	tests := []struct {
		in      string
		want    routing.DeliveryPath
		wantErr bool
	}{
		{"BUY", routing.PathBuy, false},
		{"product-grade", routing.PathProductGrade, false},
		{"ai_disposable", routing.PathAIDisposable, false},
		{"configure", routing.PathConfig, false},
		{"outsourced", "", true},
	}
	for _, tt := range tests {
		got, err := routing.ParseDeliveryPath(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDeliveryPath(%q) = %q, %v", tt.in, got, err)
		}
	}
}
