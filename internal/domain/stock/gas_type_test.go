package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalGasType(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  GasType
		ok    bool
	}{
		{"weight label small", "2.3kg", GasTypeSmall, true},
		{"weight label medium", "5kg", GasTypeMedium, true},
		{"weight label large", "12.5kg", GasTypeLarge, true},
		{"bare weight", "12.5", GasTypeLarge, true},
		{"qualitative exact", "Small", GasTypeSmall, true},
		{"qualitative lower", "medium", GasTypeMedium, true},
		{"qualitative upper", "LARGE", GasTypeLarge, true},
		{"surrounding spaces", "  5kg  ", GasTypeMedium, true},
		{"unknown label", "7kg", "", false},
		{"empty", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := CanonicalGasType(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGasTypeWeightLabel(t *testing.T) {
	assert.Equal(t, "2.3kg", GasTypeSmall.WeightLabel())
	assert.Equal(t, "5kg", GasTypeMedium.WeightLabel())
	assert.Equal(t, "12.5kg", GasTypeLarge.WeightLabel())
}

func TestGasBrandIsValid(t *testing.T) {
	assert.True(t, BrandLaugfs.IsValid())
	assert.True(t, BrandLitro.IsValid())
	assert.False(t, GasBrand("Shell").IsValid())
}
