package routing

import (
	"fmt"
	"strings"
)

// DeliveryPath is how an approved intake will be sourced or built.
type DeliveryPath string

const (
	PathBuy          DeliveryPath = "BUY"
	PathConfig       DeliveryPath = "CONFIG"
	PathAIDisposable DeliveryPath = "AI_DISPOSABLE"
	PathProductGrade DeliveryPath = "PRODUCT_GRADE"
	PathCritical     DeliveryPath = "CRITICAL"
)

var pathLabels = map[DeliveryPath]string{
	PathBuy:          "Buy (Commercial Off-the-Shelf)",
	PathConfig:       "Configure (Low-Code Platform)",
	PathAIDisposable: "AI Disposable",
	PathProductGrade: "Product Grade Development",
	PathCritical:     "Critical System Development",
}

// AllPaths returns the paths from lightest to heaviest delivery effort.
func AllPaths() []DeliveryPath {
	return []DeliveryPath{PathBuy, PathConfig, PathAIDisposable, PathProductGrade, PathCritical}
}

func (p DeliveryPath) IsValid() bool {
	_, ok := pathLabels[p]
	return ok
}

// Label is the human-readable name used in reports.
func (p DeliveryPath) Label() string {
	if l, ok := pathLabels[p]; ok {
		return l
	}
	return string(p)
}

func (p DeliveryPath) String() string {
	return string(p)
}

// ParseDeliveryPath accepts the enum value in any case, with '-' or '_'.
func ParseDeliveryPath(raw string) (DeliveryPath, error) {
	p := DeliveryPath(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")))
	if p == "CONFIGURE" {
		p = PathConfig
	}
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPath, raw)
	}
	return p, nil
}
