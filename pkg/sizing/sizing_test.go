package sizing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMinTradeSize(t *testing.T) {
	tests := []struct {
		name        string
		minNotional string
		price       string
		expected    string
	}{
		{
			name:        "exact division",
			minNotional: "10",
			price:       "100",
			expected:    "0.1",
		},
		{
			name:        "rounds up not down",
			minNotional: "10",
			price:       "3",
			expected:    "3.333334",
		},
		{
			name:        "high price asset",
			minNotional: "10",
			price:       "80000",
			expected:    "0.000125",
		},
		{
			name:        "twenty dollar profile",
			minNotional: "20",
			price:       "3000",
			expected:    "0.006667",
		},
		{
			name:        "sub dollar price",
			minNotional: "10",
			price:       "0.37",
			expected:    "27.027028",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			minNotional := decimal.RequireFromString(tt.minNotional)
			price := decimal.RequireFromString(tt.price)

			qty, err := MinTradeSize(minNotional, price)
			require.NoError(t, err)
			assert.True(t, decimal.RequireFromString(tt.expected).Equal(qty),
				"expected %s, got %s", tt.expected, qty)

			// the sized order must always satisfy the exchange minimum
			assert.True(t, qty.Mul(price).GreaterThanOrEqual(minNotional),
				"notional %s below minimum %s", qty.Mul(price), minNotional)
		})
	}
}

func TestMinTradeSizeNotionalAlwaysSatisfied(t *testing.T) {
	minNotional := decimal.NewFromInt(10)
	prices := []string{"0.0001", "0.37", "1", "3", "7.77", "99.99", "2000", "80000", "123456.78"}

	previous := decimal.Decimal{}
	for i, p := range prices {
		price := decimal.RequireFromString(p)
		qty, err := MinTradeSize(minNotional, price)
		require.NoError(t, err)

		assert.True(t, qty.Mul(price).GreaterThanOrEqual(minNotional),
			"price %s: notional %s below minimum", p, qty.Mul(price))

		// sizing is monotonically non-increasing in price
		if i > 0 {
			assert.True(t, qty.LessThanOrEqual(previous),
				"sizing increased from %s to %s as price rose to %s", previous, qty, p)
		}
		previous = qty
	}
}

func TestMinTradeSizeInvalidInputs(t *testing.T) {
	_, err := MinTradeSize(decimal.NewFromInt(10), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = MinTradeSize(decimal.NewFromInt(10), decimal.NewFromInt(-5))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = MinTradeSize(decimal.Zero, decimal.NewFromInt(100))
	assert.Error(t, err)
}

func TestBrackets(t *testing.T) {
	tests := []struct {
		name       string
		entry      string
		takeProfit string
		stopLoss   string
	}{
		{
			name:       "round numbers",
			entry:      "100",
			takeProfit: "120",
			stopLoss:   "80",
		},
		{
			name:       "typical eth entry",
			entry:      "2000",
			takeProfit: "2400",
			stopLoss:   "1600",
		},
		{
			name:       "rounds away from entry",
			entry:      "33.33",
			takeProfit: "40",    // 39.996 rounded up
			stopLoss:   "26.66", // 26.664 rounded down
		},
		{
			name:       "tiny price",
			entry:      "0.05",
			takeProfit: "0.06",
			stopLoss:   "0.04",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := decimal.RequireFromString(tt.entry)

			tp, sl, err := Brackets(entry)
			require.NoError(t, err)

			assert.True(t, decimal.RequireFromString(tt.takeProfit).Equal(tp),
				"take profit: expected %s, got %s", tt.takeProfit, tp)
			assert.True(t, decimal.RequireFromString(tt.stopLoss).Equal(sl),
				"stop loss: expected %s, got %s", tt.stopLoss, sl)

			assert.True(t, tp.GreaterThan(entry), "take profit must sit above entry")
			assert.True(t, sl.LessThan(entry), "stop loss must sit below entry")
		})
	}
}

func TestBracketsInvalidEntry(t *testing.T) {
	_, _, err := Brackets(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = TakeProfit(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrInvalidPrice)

	_, err = StopLoss(decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}
