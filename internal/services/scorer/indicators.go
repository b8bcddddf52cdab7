package scorer

import (
	"fmt"

	"github.com/cinar/indicator/v2/helper"
	"github.com/cinar/indicator/v2/momentum"
	"github.com/cinar/indicator/v2/trend"
	"github.com/shopspring/decimal"
)

// indicatorSummary holds the technical context attached to each asset in
// the scoring prompt.
type indicatorSummary struct {
	RSI14 decimal.Decimal
	EMA20 decimal.Decimal
}

func summarizeIndicators(closes []decimal.Decimal) (indicatorSummary, error) {
	rsi, err := lastRSI(closes, 14)
	if err != nil {
		return indicatorSummary{}, err
	}
	ema, err := lastEMA(closes, 20)
	if err != nil {
		return indicatorSummary{}, err
	}
	return indicatorSummary{RSI14: rsi, EMA20: ema}, nil
}

func lastRSI(closes []decimal.Decimal, period int) (decimal.Decimal, error) {
	if len(closes) < period+1 {
		return decimal.Zero, fmt.Errorf("not enough data points for RSI: need %d, got %d", period+1, len(closes))
	}

	rsi := momentum.NewRsiWithPeriod[float64](period)
	values := helper.ChanToSlice(rsi.Compute(helper.SliceToChan(decimalsToFloat64(closes))))
	if len(values) == 0 {
		return decimal.Zero, fmt.Errorf("RSI produced no values")
	}
	return decimal.NewFromFloat(values[len(values)-1]), nil
}

func lastEMA(closes []decimal.Decimal, period int) (decimal.Decimal, error) {
	if len(closes) < period {
		return decimal.Zero, fmt.Errorf("not enough data points for EMA: need %d, got %d", period, len(closes))
	}

	ema := trend.NewEmaWithPeriod[float64](period)
	values := helper.ChanToSlice(ema.Compute(helper.SliceToChan(decimalsToFloat64(closes))))
	if len(values) == 0 {
		return decimal.Zero, fmt.Errorf("EMA produced no values")
	}
	return decimal.NewFromFloat(values[len(values)-1]), nil
}

func decimalsToFloat64(decimals []decimal.Decimal) []float64 {
	result := make([]float64, len(decimals))
	for i, d := range decimals {
		result[i], _ = d.Float64()
	}
	return result
}
