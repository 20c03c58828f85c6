package typing

import (
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"
)

// Thinking-pause increments, in seconds, accumulated per feature of the text.
const (
	pausePerSentence = 0.30
	pausePerComma    = 0.15
	pausePerLongWord = 0.20
	pausePerDigit    = 0.10
	pausePerCapsWord = 0.25

	longWordRunes = 7
)

// DefaultMinDelay and DefaultMaxDelay clamp every computed delay.
const (
	DefaultMinDelay = 0.5
	DefaultMaxDelay = 8.0
)

// Engine computes human-like typing delays for outbound decoy messages.
type Engine struct {
	profiles  map[string]Profile
	modifiers map[string]Modifier
	minDelay  float64
	maxDelay  float64

	mu      sync.Mutex
	uniform func() float64 // returns a value in [0, 1)
}

// Option customizes an Engine.
type Option func(*Engine)

// WithDelayBounds overrides the clamp range.
func WithDelayBounds(minDelay, maxDelay float64) Option {
	return func(e *Engine) {
		if minDelay > 0 {
			e.minDelay = minDelay
		}
		if maxDelay > 0 {
			e.maxDelay = maxDelay
		}
	}
}

// WithUniform replaces the random source; used by tests to pin variation.
func WithUniform(f func() float64) Option {
	return func(e *Engine) {
		if f != nil {
			e.uniform = f
		}
	}
}

// NewEngine builds an Engine with the default profile and modifier tables.
func NewEngine(opts ...Option) *Engine {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	e := &Engine{
		profiles:  DefaultProfiles(),
		modifiers: DefaultModifiers(),
		minDelay:  DefaultMinDelay,
		maxDelay:  DefaultMaxDelay,
		uniform:   rng.Float64,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ComputeDelay returns the simulated typing time in seconds for text under
// the named personality, optionally adjusted by an emotional state. Unknown
// personality keys fall back to "normal"; unknown emotion keys apply no
// modifier. Empty text yields the configured minimum delay.
func (e *Engine) ComputeDelay(text, personality, emotion string) float64 {
	if strings.TrimSpace(text) == "" {
		return e.minDelay
	}

	profile, ok := e.profiles[personality]
	if !ok {
		profile = e.profiles["normal"]
	}

	baseDelay := float64(utf8.RuneCountInString(text)) / profile.BaseCharsPerSecond
	thinking := thinkingTime(text) * profile.PauseMultiplier

	total := (baseDelay + thinking) * e.variationFactor(profile.Variation)

	if mod, ok := e.modifiers[emotion]; ok {
		total *= mod.SpeedMultiplier
		total *= e.variationFactor(mod.VariationIncrease)
	}

	return e.clampAndRound(total)
}

// variationFactor draws a uniform value from [1-v, 1+v].
func (e *Engine) variationFactor(v float64) float64 {
	if v <= 0 {
		return 1
	}
	e.mu.Lock()
	u := e.uniform()
	e.mu.Unlock()
	return 1 - v + 2*v*u
}

func (e *Engine) clampAndRound(seconds float64) float64 {
	if seconds < e.minDelay {
		seconds = e.minDelay
	}
	if seconds > e.maxDelay {
		seconds = e.maxDelay
	}
	return math.Round(seconds*100) / 100
}

// thinkingTime accumulates fixed pauses for punctuation and word features.
func thinkingTime(text string) float64 {
	var pause float64

	for _, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?':
			pause += pausePerSentence
		case r == ',':
			pause += pausePerComma
		case unicode.IsDigit(r):
			pause += pausePerDigit
		}
	}

	for _, word := range strings.Fields(text) {
		trimmed := strings.TrimFunc(word, func(r rune) bool { return !unicode.IsLetter(r) && !unicode.IsDigit(r) })
		if utf8.RuneCountInString(trimmed) >= longWordRunes {
			pause += pausePerLongWord
		}
		if isAllCapsWord(trimmed) {
			pause += pausePerCapsWord
		}
	}

	return pause
}

// isAllCapsWord reports whether word is entirely uppercase letters and longer
// than one rune.
func isAllCapsWord(word string) bool {
	if utf8.RuneCountInString(word) <= 1 {
		return false
	}
	for _, r := range word {
		if !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
