package storage

import "time"

const (
	KEY_SNAPSHOT = "storage::snapshot"
	KEY_LOOKUP   = "storage::lookup"
)

const (
	FIELD_STATE      = "state"
	FIELD_ORDERBOOK  = "orderbook"
	FIELD_UPDATED_AT = "updated_at"
)

const DefaultLookupTTL = 10 * time.Minute

func snapshotKey(market string) string {
	return KEY_SNAPSHOT + "::" + market
}

func lookupKey(table string) string {
	return KEY_LOOKUP + "::" + table
}
