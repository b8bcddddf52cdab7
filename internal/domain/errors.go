package domain

import "github.com/pkg/errors"

// ErrPriceNotAvailable is returned by market-data providers when an asset
// has no quotable price this cycle. The loop skips the asset and moves on.
var ErrPriceNotAvailable = errors.New("price not available")
