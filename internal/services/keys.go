package services

import "time"

const (
	KeySettleRateLimit = "settle:ratelimit:%s"

	// Minimum spacing between settlements for one account.
	DefaultSettleInterval = time.Second
)
