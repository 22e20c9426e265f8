package stock

import "strings"

// GasBrand identifies a cylinder brand carried by shops.
type GasBrand string

const (
	BrandLaugfs GasBrand = "Laugfs"
	BrandLitro  GasBrand = "Litro"
)

// IsValid checks if the brand is a known GasBrand
func (b GasBrand) IsValid() bool {
	switch b {
	case BrandLaugfs, BrandLitro:
		return true
	}
	return false
}

// String returns the string representation of GasBrand
func (b GasBrand) String() string {
	return string(b)
}

// GasType is the canonical qualitative cylinder size. Requests may also
// arrive in the physical-weight vocabulary (2.3kg/5kg/12.5kg); those are
// translated to the canonical form at the boundary via CanonicalGasType.
type GasType string

const (
	GasTypeSmall  GasType = "Small"
	GasTypeMedium GasType = "Medium"
	GasTypeLarge  GasType = "Large"
)

// IsValid checks if the type is a canonical GasType
func (t GasType) IsValid() bool {
	switch t {
	case GasTypeSmall, GasTypeMedium, GasTypeLarge:
		return true
	}
	return false
}

// String returns the string representation of GasType
func (t GasType) String() string {
	return string(t)
}

// WeightLabel returns the physical-weight label for the canonical size
func (t GasType) WeightLabel() string {
	switch t {
	case GasTypeSmall:
		return "2.3kg"
	case GasTypeMedium:
		return "5kg"
	case GasTypeLarge:
		return "12.5kg"
	}
	return ""
}

// canonicalByLabel maps every accepted external spelling (weight labels,
// bare weights, qualitative names, any casing) to the canonical size.
var canonicalByLabel = map[string]GasType{
	"2.3kg":  GasTypeSmall,
	"2.3":    GasTypeSmall,
	"small":  GasTypeSmall,
	"5kg":    GasTypeMedium,
	"5":      GasTypeMedium,
	"medium": GasTypeMedium,
	"12.5kg": GasTypeLarge,
	"12.5":   GasTypeLarge,
	"large":  GasTypeLarge,
}

// CanonicalGasType translates an externally supplied gas type label into the
// canonical qualitative form. Returns false when the label matches neither
// vocabulary.
func CanonicalGasType(raw string) (GasType, bool) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if t, ok := canonicalByLabel[normalized]; ok {
		return t, true
	}
	return "", false
}
