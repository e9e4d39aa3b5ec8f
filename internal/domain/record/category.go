package record

// Category classifies a record into a fixed, closed set of domains.
type Category string

const (
	// CategoryDatabase covers database connections and credentials.
	CategoryDatabase Category = "database"
	// CategoryAuth covers authentication and session secrets.
	CategoryAuth Category = "auth"
	// CategoryPayment covers payment provider credentials.
	CategoryPayment Category = "payment"
	// CategoryAI covers AI/LLM service configuration.
	CategoryAI Category = "ai"
	// CategoryStorage covers object and file storage.
	CategoryStorage Category = "storage"
	// CategoryMessaging covers email, SMS, and message brokers.
	CategoryMessaging Category = "messaging"
	// CategoryAnalytics covers analytics and tracking services.
	CategoryAnalytics Category = "analytics"
	// CategoryMonitoring covers observability and alerting services.
	CategoryMonitoring Category = "monitoring"
	// CategoryInfra covers deployment and infrastructure settings.
	CategoryInfra Category = "infra"
	// CategoryOther is the catch-all.
	CategoryOther Category = "other"
)

// Categories lists every valid category.
var Categories = []Category{
	CategoryDatabase, CategoryAuth, CategoryPayment, CategoryAI,
	CategoryStorage, CategoryMessaging, CategoryAnalytics,
	CategoryMonitoring, CategoryInfra, CategoryOther,
}

// IsValid reports whether c belongs to the closed category set.
func (c Category) IsValid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}
