// Package constants defines shared domain-level constants.
package constants

// Pub/Sub provider names accepted in configuration.
const (
	PubSubProviderGoogle = "google"
	PubSubProviderLocal  = "local"
)
