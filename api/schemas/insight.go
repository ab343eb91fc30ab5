package schemas

// -- Insight Generation Schemas --

// GenerationOptions tunes a single generation call.
type GenerationOptions struct {
	Temperature     float32 `json:"temperature"`
	ForceJSONFormat bool    `json:"force_json_format"`
}

// GenerationRequest carries the prompts for one call to the generative
// language service.
type GenerationRequest struct {
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	Options      GenerationOptions `json:"options"`
}
