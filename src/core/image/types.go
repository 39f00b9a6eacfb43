package image

// Decoded is an image payload that passed validation.
type Decoded struct {
	MIMEType string // image/jpeg or image/png
	Format   string // jpeg or png
	Data     []byte
	Width    int
	Height   int
}

// Prepared is what a provider sends upstream: possibly downscaled, always a real image.
type Prepared struct {
	MIMEType string
	Format   string
	Data     []byte
	Resized  bool
}

// ImageMetrics 图片处理统计信息
type ImageMetrics struct {
	TotalProcessed int64 `json:"total_processed"`
	Resized        int64 `json:"resized"`
	Passthrough    int64 `json:"passthrough"`
	Failed         int64 `json:"failed"`
}
