package events

// Subjects published by the recommendation service.
const (
	SubjectRecommendCompleted = "yojana.recommend.completed"
	SubjectCatalogReloaded    = "yojana.catalog.reloaded"
)

const (
	StreamName   = "YOJANA"
	StreamMaxAge = "168h"
)
