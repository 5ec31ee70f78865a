// Package gemini implements [ai.Provider] for Google's Gemini models through
// their OpenAI-compatible chat-completion endpoint.
//
// Build a [Config] with [NewConfig] or [ConfigFromEnv] (GEMINI_API_KEY,
// GEMINI_API_BASE_URL, GEMINI_MODEL) and pass it to [New]:
//
//	config, err := gemini.ConfigFromEnv(gemini.WithModel(gemini.ModelGemini20Flash))
//	if err != nil {
//	    return err
//	}
//	provider, err := gemini.New(config)
//
// Requests are encoded and decoded by the chatcompletion package; streaming
// answers are exposed as an [*ai.ResultStream].
package gemini
