package scorer

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/voxtrade/riskpilot/internal/domain"
)

// systemPrompt instructs the model to return machine-readable risk scores.
const systemPrompt = `You are a cryptocurrency risk analyst. For every token you are given,
assess its current risk on a 0-100 scale where 0 is safest and 100 is riskiest.
Base the assessment on the supplied price and indicator data, volatility and
liquidity characteristics of the token.

Respond with ONLY a JSON object in this exact shape, no prose:
{"tokens": [{"name": "BTC", "risk_score": 35}]}`

type assetContext struct {
	asset      domain.Asset
	price      decimal.Decimal
	indicators *indicatorSummary
}

func buildUserPrompt(contexts []assetContext) string {
	var b strings.Builder

	b.WriteString("Assess the risk for these tokens:\n\n")
	for _, ctx := range contexts {
		fmt.Fprintf(&b, "- %s: last price %s", ctx.asset.Base(), ctx.price.String())
		if ctx.indicators != nil {
			fmt.Fprintf(&b, ", RSI14 %s, EMA20 %s",
				ctx.indicators.RSI14.StringFixed(2),
				ctx.indicators.EMA20.StringFixed(2))
		}
		b.WriteString("\n")
	}
	b.WriteString("\nReturn one entry per token, using the token symbol as the name.")

	return b.String()
}
