package constants

import "time"

// DefaultNavigateDelay lets the success notice render before the shell
// navigates to the record view.
const DefaultNavigateDelay = 500 * time.Millisecond

// DefaultCurrency is used when a record carries no currency code.
const DefaultCurrency = "USD"
