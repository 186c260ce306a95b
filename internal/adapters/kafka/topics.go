package kafka

// Topic names for ledger and price-feed events
const (
	// TopicOptionLifecycle carries option state transitions, keyed by symbol:id
	TopicOptionLifecycle = "options.lifecycle"

	// TopicPriceTicks carries observed oracle prices, keyed by symbol
	TopicPriceTicks = "prices.ticks"
)
