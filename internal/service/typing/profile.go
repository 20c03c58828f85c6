package typing

// Profile maps a decoy personality to its pacing parameters.
type Profile struct {
	BaseCharsPerSecond float64
	PauseMultiplier    float64
	Variation          float64
}

// Modifier adjusts pacing for an emotional state, independent of personality.
type Modifier struct {
	SpeedMultiplier   float64
	VariationIncrease float64
}

// DefaultProfiles returns the five shipped typing personalities.
// social_media_bot is the fastest typist, catfish_suspicious the slowest.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		"normal":             {BaseCharsPerSecond: 40, PauseMultiplier: 1.0, Variation: 0.15},
		"social_media_bot":   {BaseCharsPerSecond: 70, PauseMultiplier: 0.6, Variation: 0.10},
		"catfish_suspicious": {BaseCharsPerSecond: 12, PauseMultiplier: 2.2, Variation: 0.25},
		"romance_scammer":    {BaseCharsPerSecond: 28, PauseMultiplier: 1.4, Variation: 0.20},
		"tech_support_agent": {BaseCharsPerSecond: 55, PauseMultiplier: 0.8, Variation: 0.12},
	}
}

// DefaultModifiers returns the six shipped emotional-state modifiers.
func DefaultModifiers() map[string]Modifier {
	return map[string]Modifier{
		"excited":   {SpeedMultiplier: 0.70, VariationIncrease: 0.05},
		"nervous":   {SpeedMultiplier: 1.20, VariationIncrease: 0.15},
		"angry":     {SpeedMultiplier: 0.80, VariationIncrease: 0.10},
		"hesitant":  {SpeedMultiplier: 1.50, VariationIncrease: 0.20},
		"confident": {SpeedMultiplier: 0.85, VariationIncrease: 0.05},
		"tired":     {SpeedMultiplier: 1.30, VariationIncrease: 0.10},
	}
}
