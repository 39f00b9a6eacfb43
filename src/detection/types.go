package detection

import "ewaste-server-go/src/core/image"

// Form fields of a detection request.
const (
	FieldImage = "image"
	FieldItem  = "item"
)

// LegacyPath is the camera widget's original endpoint.
const LegacyPath = "/camera-ai-api/"

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status         string             `json:"status"`
	Provider       string             `json:"provider"`
	NeedsImage     bool               `json:"needs_image"`
	VocabularySize int                `json:"vocabulary_size"`
	Image          image.ImageMetrics `json:"image"`
}
