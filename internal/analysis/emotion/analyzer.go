package emotion

import "strings"

// Label is an emotional-state key understood by the typing delay engine.
type Label string

const (
	Neutral   Label = "neutral"
	Excited   Label = "excited"
	Nervous   Label = "nervous"
	Angry     Label = "angry"
	Hesitant  Label = "hesitant"
	Confident Label = "confident"
	Tired     Label = "tired"
)

// Decision carries the inferred state for the decoy's next reply.
type Decision struct {
	Emotion Label
	Score   int
}

// ModifierKey returns the typing-engine modifier key, or "" when the state
// is neutral and no modifier should apply.
func (d Decision) ModifierKey() string {
	if d.Emotion == Neutral {
		return ""
	}
	return string(d.Emotion)
}

var keywordBuckets = map[Label][]string{
	Excited: {
		"amazing", "awesome", "incredible", "can't wait", "cant wait", "wow", "omg",
		"really?", "no way", "so cool", "love it", "let's do it", "lets do it", "yes!",
	},
	Angry: {
		"scam", "scammer", "fraud", "liar", "lying", "fake", "police", "report",
		"stop messaging", "leave me alone", "blocked", "how dare", "ridiculous",
	},
	Hesitant: {
		"not sure", "suspicious", "seems off", "prove", "why should i", "don't trust",
		"dont trust", "hold on", "wait a minute", "is this real", "verify", "id first",
	},
	Confident: {
		"guaranteed", "trust me", "no risk", "promise", "100%", "certain", "definitely",
		"believe me", "i assure you",
	},
	Tired: {
		"tired", "exhausted", "long day", "sleepy", "later", "tomorrow", "busy right now",
		"can't talk", "cant talk",
	},
	Nervous: {
		"hurry", "urgent", "quick", "right now", "before it's too late", "running out",
		"last chance", "deadline",
	},
}

// Analyze infers the emotional state governing the decoy's reply pacing from
// the user's utterance (and, when available, the drafted reply). The decoy
// reacts to the user: hostility makes it nervous, scrutiny makes it hesitant.
func Analyze(userText, replyText string) Decision {
	reply := scoreText(replyText)
	if reply.Score > 0 {
		return reply
	}

	user := scoreText(userText)
	if user.Score == 0 {
		return Decision{Emotion: Neutral}
	}
	return coerceFromUser(user)
}

func scoreText(text string) Decision {
	normalized := strings.ToLower(strings.TrimSpace(text))
	if normalized == "" {
		return Decision{Emotion: Neutral}
	}

	scores := make(map[Label]int)
	for label, keywords := range keywordBuckets {
		for _, word := range keywords {
			if strings.Contains(normalized, word) {
				scores[label] += 3
			}
		}
	}

	if n := strings.Count(text, "!"); n > 0 {
		scores[Excited] += n * 2
	}
	if strings.Count(text, "?") >= 2 {
		scores[Hesitant] += 2
	}

	best := Neutral
	bestScore := 0
	for label, s := range scores {
		if s > bestScore {
			bestScore = s
			best = label
		}
	}
	return Decision{Emotion: best, Score: bestScore}
}

// coerceFromUser maps the user's state to the decoy's reaction.
func coerceFromUser(user Decision) Decision {
	switch user.Emotion {
	case Angry:
		return Decision{Emotion: Nervous, Score: user.Score}
	case Hesitant:
		return Decision{Emotion: Confident, Score: user.Score}
	case Excited:
		return Decision{Emotion: Excited, Score: user.Score}
	case Confident:
		return Decision{Emotion: Hesitant, Score: user.Score}
	case Tired:
		return Decision{Emotion: Tired, Score: user.Score}
	default:
		return user
	}
}
