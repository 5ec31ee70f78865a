package ai

// CallOptions tune how a provider builds its requests. Zero values mean
// "use the provider default".
type CallOptions struct {
	// Model overrides the provider's configured model.
	Model string
	// Temperature sets the sampling temperature when non-nil.
	Temperature *float64
	// MaxTokens caps the completion length when non-nil.
	MaxTokens *int
	// JSONResponse asks the model for a JSON object response.
	JSONResponse bool
}

// Merge returns options where every field set in override replaces the
// corresponding field of the receiver.
func (options CallOptions) Merge(override CallOptions) CallOptions {
	merged := options
	if override.Model != "" {
		merged.Model = override.Model
	}
	if override.Temperature != nil {
		temperature := *override.Temperature
		merged.Temperature = &temperature
	}
	if override.MaxTokens != nil {
		maxTokens := *override.MaxTokens
		merged.MaxTokens = &maxTokens
	}
	if override.JSONResponse {
		merged.JSONResponse = true
	}
	return merged
}
