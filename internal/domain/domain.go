// Package domain holds the shared value objects and sentinel errors of envdex.
package domain

// KeyPrefix namespaces every envdex key in the shared database.
const KeyPrefix = "envdex:"
