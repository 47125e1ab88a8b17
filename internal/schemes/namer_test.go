package schemes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/scamdunk/internal/contracts"
)

func TestSchemeID_Pinned(t *testing.T) {
	tests := []struct {
		symbol string
		date   string
		want   string
	}{
		{"acme", "2024-03-01", "SCH-ACME-s9n6o0"},
		{"XYZ", "2024-01-15", "SCH-XYZ-s7a000"},
		{" abcd ", "2024-03-05", "SCH-ABCD-s9ulc0"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got, err := SchemeID(tt.symbol, tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := SchemeID("ACME", "03/01/2024")
	assert.Error(t, err)
}

func TestName(t *testing.T) {
	tests := []struct {
		name string
		rec  contracts.SchemeRecord
		want string
	}{
		{
			name: "sector with promotion",
			rec:  contracts.SchemeRecord{Symbol: "ACME", Sector: "Technology", PromotionPlatforms: []string{"twitter"}},
			want: "ACME Technology Promotion Scheme",
		},
		{
			name: "industry fallback",
			rec:  contracts.SchemeRecord{Symbol: "BIO", Industry: "Biotechnology"},
			want: "BIO Biotechnology Price Surge Scheme",
		},
		{
			name: "penny stock fallback",
			rec:  contracts.SchemeRecord{Symbol: "XYZQ"},
			want: "XYZQ Penny Stock Price Surge Scheme",
		},
		{
			name: "ended overrides promotion",
			rec: contracts.SchemeRecord{
				Symbol: "ACME", Sector: "Energy", Status: contracts.StatusPumpAndDumpEnded,
				PromoterAccounts: []contracts.PromoterAccount{{Platform: "reddit", Identifier: "u1"}},
			},
			want: "ACME Energy Pump-and-Dump Scheme",
		},
		{
			name: "accounts alone count as promotion",
			rec: contracts.SchemeRecord{
				Symbol:           "ACME",
				PromoterAccounts: []contracts.PromoterAccount{{Platform: "reddit", Identifier: "u1"}},
			},
			want: "ACME Penny Stock Promotion Scheme",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Name(&tt.rec))
		})
	}
}

func TestSlug(t *testing.T) {
	assert.Equal(t, "acme-technology-promotion-scheme", Slug("ACME Technology Promotion Scheme"))
	assert.Equal(t, "acme-energy-pump-and-dump-scheme", Slug("ACME Energy Pump-and-Dump Scheme"))
	assert.Equal(t, "foo-bar", Slug("  Foo--Bar!! "))
	assert.Equal(t, "", Slug("!!!"))
}
