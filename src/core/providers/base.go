package providers

// Provider 所有提供者的基础接口
type Provider interface {
	// Initialize builds long-lived client handles; called once at startup.
	Initialize() error
	// Cleanup releases those handles on shutdown.
	Cleanup() error
}
