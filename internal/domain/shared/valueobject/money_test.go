package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCurrency_Exponent(t *testing.T) {
	tests := []struct {
		currency Currency
		exponent int32
	}{
		{USD, 2},
		{EUR, 2},
		{GBP, 2},
		{JPY, 0},
	}

	for _, tt := range tests {
		t.Run(string(tt.currency), func(t *testing.T) {
			assert.Equal(t, tt.exponent, tt.currency.Exponent())
		})
	}
}

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.50), USD)
		require.NoError(t, err)
		assert.Equal(t, "100.50 USD", m.String())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(1), "")
		assert.Error(t, err)
	})

	t.Run("rounds half-up to currency exponent", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(10.005), USD)
		require.NoError(t, err)
		assert.Equal(t, "10.01 USD", m.String())
	})

	t.Run("rounds to whole units for zero-exponent currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromFloat(100.5), JPY)
		require.NoError(t, err)
		assert.Equal(t, "101 JPY", m.String())
	})
}

func TestNewMoneyFromMinorUnits(t *testing.T) {
	tests := []struct {
		name     string
		units    int64
		currency Currency
		expected string
	}{
		{"USD cents", 12345, USD, "123.45 USD"},
		{"negative cents", -500, EUR, "-5.00 EUR"},
		{"whole yen", 1500, JPY, "1500 JPY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewMoneyFromMinorUnits(tt.units, tt.currency)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, m.String())
			assert.Equal(t, tt.units, m.MinorUnits())
		})
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	hundred := MustNewMoney(decimal.NewFromInt(100), USD)
	forty := MustNewMoney(decimal.NewFromInt(40), USD)

	t.Run("add", func(t *testing.T) {
		sum, err := hundred.Add(forty)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(140)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := hundred.Subtract(forty)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(60)))
	})

	t.Run("negate", func(t *testing.T) {
		neg := forty.Negate()
		assert.True(t, neg.IsNegative())
		assert.True(t, neg.Negate().Equals(forty))
	})

	t.Run("abs", func(t *testing.T) {
		neg := forty.Negate()
		assert.True(t, neg.Abs().Equals(forty))
	})

	t.Run("add rejects mixed currencies", func(t *testing.T) {
		euros := MustNewMoney(decimal.NewFromInt(10), EUR)
		_, err := hundred.Add(euros)
		assert.Error(t, err)
	})

	t.Run("subtract rejects mixed currencies", func(t *testing.T) {
		euros := MustNewMoney(decimal.NewFromInt(10), EUR)
		_, err := hundred.Subtract(euros)
		assert.Error(t, err)
	})
}

func TestMoney_Percent(t *testing.T) {
	m := MustNewMoney(decimal.NewFromInt(200), USD)

	pct := m.Percent(decimal.NewFromFloat(2.5))
	assert.Equal(t, "5.00 USD", pct.String())

	// Result is rounded half-up to currency precision
	odd := MustNewMoney(decimal.NewFromFloat(10.01), USD)
	assert.Equal(t, "0.50 USD", odd.Percent(decimal.NewFromInt(5)).String())
}

func TestMoney_Min(t *testing.T) {
	a := MustNewMoney(decimal.NewFromInt(30), USD)
	b := MustNewMoney(decimal.NewFromInt(20), USD)

	smaller, err := a.Min(b)
	require.NoError(t, err)
	assert.True(t, smaller.Equals(b))

	_, err = a.Min(MustNewMoney(decimal.NewFromInt(20), GBP))
	assert.Error(t, err)
}

func TestMoney_Comparisons(t *testing.T) {
	a := MustNewMoney(decimal.NewFromInt(10), USD)
	b := MustNewMoney(decimal.NewFromInt(20), USD)

	lt, err := a.LessThan(b)
	require.NoError(t, err)
	assert.True(t, lt)

	gt, err := b.GreaterThan(a)
	require.NoError(t, err)
	assert.True(t, gt)

	gte, err := b.GreaterThanOrEqual(b)
	require.NoError(t, err)
	assert.True(t, gte)

	assert.True(t, Zero(USD).IsZero())
	assert.True(t, a.IsPositive())
	assert.True(t, a.Negate().IsNegative())
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := MustNewMoney(decimal.NewFromFloat(99.99), EUR)

	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, m.Equals(decoded))
}

func TestMoney_UnmarshalJSON_Invalid(t *testing.T) {
	var m Money

	err := json.Unmarshal([]byte(`{"amount":"abc","currency":"USD"}`), &m)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`{"amount":"1.00","currency":""}`), &m)
	assert.Error(t, err)
}

func TestMoney_ScanAndValue(t *testing.T) {
	m := MustNewMoney(decimal.NewFromFloat(42.42), USD)

	v, err := m.Value()
	require.NoError(t, err)
	assert.Equal(t, "42.42", v)

	var scanned Money
	require.NoError(t, scanned.Scan("42.42"))
	rebound, err := scanned.WithCurrency(USD)
	require.NoError(t, err)
	assert.True(t, m.Equals(rebound))

	assert.Error(t, scanned.Scan(3.14))
}
