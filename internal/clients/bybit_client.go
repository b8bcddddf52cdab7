package clients

import (
	"github.com/hirokisan/bybit/v2"
)

// NewBybitClient builds an authenticated Bybit V5 REST client.
func NewBybitClient(apiKey, apiSecret string) *bybit.Client {
	return bybit.NewClient().WithAuth(apiKey, apiSecret)
}
