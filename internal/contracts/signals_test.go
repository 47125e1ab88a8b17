package contracts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalSet_DuplicateCodesDoNotDoubleCount(t *testing.T) {
	otc := Signal{Code: "OTC_EXCHANGE", Category: CategoryStructural, Weight: 3}
	vol := Signal{Code: "VOLUME_EXPLOSION_HIGH", Category: CategoryPattern, Weight: 3}

	set := NewSignalSet(otc, vol)
	assert.Equal(t, 6, set.TotalScore())

	assert.False(t, set.Add(otc))
	assert.False(t, set.Add(Signal{Code: "OTC_EXCHANGE", Weight: 99}))
	assert.Equal(t, 6, set.TotalScore())
	assert.Equal(t, 2, set.Len())
	assert.Equal(t, []string{"OTC_EXCHANGE", "VOLUME_EXPLOSION_HIGH"}, set.Codes())
}

func TestSignalSet_SignalsReturnsCopy(t *testing.T) {
	set := NewSignalSet(Signal{Code: "A", Weight: 1})
	out := set.Signals()
	out[0].Weight = 100
	assert.Equal(t, 1, set.TotalScore())
	assert.True(t, set.Has("A"))
	assert.False(t, set.Has("B"))
}

func TestParseRiskLevel(t *testing.T) {
	tests := []struct {
		in   string
		want RiskLevel
		ok   bool
	}{
		{"LOW", RiskLow, true},
		{"MEDIUM", RiskMedium, true},
		{"HIGH", RiskHigh, true},
		{"INSUFFICIENT", RiskInsufficient, true},
		{"high", "", false},
		{"CRITICAL", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRiskLevel(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCategoryValid(t *testing.T) {
	assert.True(t, CategoryContract.Valid())
	assert.False(t, Category("SOCIAL").Valid())
}

func TestParseAssetType(t *testing.T) {
	assert.Equal(t, AssetCrypto, ParseAssetType(" Crypto "))
	assert.Equal(t, AssetStock, ParseAssetType("stock"))
	assert.Equal(t, AssetStock, ParseAssetType(""))
}
