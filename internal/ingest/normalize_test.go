package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ginjaninja78/funding-dashboard/internal/config"
	"github.com/ginjaninja78/funding-dashboard/internal/types"
)

func TestApplyAction(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		action config.NormalizationAction
		want   string
	}{
		{"trim", "  Pune ", config.NormalizationAction{Type: "trim"}, "Pune"},
		{"collapse spaces", "New \t  Delhi", config.NormalizationAction{Type: "collapse_spaces"}, "New Delhi"},
		{"uppercase", "fintech", config.NormalizationAction{Type: "uppercase"}, "FINTECH"},
		{"lowercase", "FinTech", config.NormalizationAction{Type: "lowercase"}, "fintech"},
		{"title", "nEW dELHI", config.NormalizationAction{Type: "title"}, "New Delhi"},
		{"replace", "E-Commerce", config.NormalizationAction{Type: "replace", Find: "-", Value: ""}, "ECommerce"},
		{"replace without find", "E-Commerce", config.NormalizationAction{Type: "replace"}, "E-Commerce"},
		{"lookup exact", "Bangalore", config.NormalizationAction{Type: "lookup", LookupTable: map[string]string{"Bangalore": "Bengaluru"}}, "Bengaluru"},
		{"lookup case insensitive", "BANGALORE", config.NormalizationAction{Type: "lookup", LookupTable: map[string]string{"Bangalore": "Bengaluru"}}, "Bengaluru"},
		{"lookup miss", "Pune", config.NormalizationAction{Type: "lookup", LookupTable: map[string]string{"Bangalore": "Bengaluru"}}, "Pune"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ApplyAction(tt.value, tt.action)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplyAction_LookupCaseCollisionIsStable(t *testing.T) {
	action := config.NormalizationAction{Type: "lookup", LookupTable: map[string]string{
		"bangalore": "Bengaluru (lower)",
		"BANGALORE": "Bengaluru (upper)",
		"Bangalore": "Bengaluru (title)",
	}}

	for i := 0; i < 50; i++ {
		got, err := ApplyAction("bAnGaLoRe", action)
		require.NoError(t, err)
		require.Equal(t, "Bengaluru (upper)", got)
	}

	got, err := ApplyAction("bangalore", action)
	require.NoError(t, err)
	assert.Equal(t, "Bengaluru (lower)", got)
}

func TestApplyAction_UnknownType(t *testing.T) {
	_, err := ApplyAction("x", config.NormalizationAction{Type: "reverse"})
	assert.Error(t, err)
}

func TestNormalizer_ChainsActionsPerField(t *testing.T) {
	n := NewNormalizer([]config.NormalizationRule{
		{Field: "industry", Actions: []config.NormalizationAction{{Type: "trim"}, {Type: "lowercase"}}},
		{Field: "industry", Actions: []config.NormalizationAction{{Type: "title"}}},
		{Field: "amount_usd", Actions: []config.NormalizationAction{{Type: "uppercase"}}},
		{Field: "nonsense", Actions: []config.NormalizationAction{{Type: "uppercase"}}},
	})

	got, err := n.Normalize(types.FieldIndustry, "  CONSUMER internet ")
	require.NoError(t, err)
	assert.Equal(t, "Consumer Internet", got)

	got, err = n.Normalize(types.FieldCity, "pune")
	require.NoError(t, err)
	assert.Equal(t, "pune", got)
}

func TestNormalizer_NormalizeRecord(t *testing.T) {
	n := NewNormalizer([]config.NormalizationRule{
		{Field: "investment_type", Actions: []config.NormalizationAction{
			{Type: "lookup", LookupTable: map[string]string{"PrivateEquity": "Private Equity"}},
		}},
	})
	r := &types.Record{StartupName: "Ola", InvestmentType: "privateequity"}

	require.NoError(t, n.NormalizeRecord(r))

	assert.Equal(t, "Private Equity", r.InvestmentType)
	assert.Equal(t, "Ola", r.StartupName)
}

func TestNormalizer_Nil(t *testing.T) {
	var n *Normalizer

	got, err := n.Normalize(types.FieldCity, "Pune")
	require.NoError(t, err)
	assert.Equal(t, "Pune", got)
	assert.NoError(t, n.NormalizeRecord(&types.Record{}))
}
