package emotion

import "testing"

func TestAnalyzeNeutralWhenNothingMatches(t *testing.T) {
	d := Analyze("the weather is fine today", "")
	if d.Emotion != Neutral {
		t.Fatalf("got %s, want neutral", d.Emotion)
	}
	if d.ModifierKey() != "" {
		t.Fatalf("ModifierKey = %q, want empty for neutral", d.ModifierKey())
	}
}

func TestAnalyzeEmptyInput(t *testing.T) {
	if d := Analyze("", ""); d.Emotion != Neutral {
		t.Fatalf("got %s, want neutral", d.Emotion)
	}
}

func TestAnalyzeAngryUserMakesDecoyNervous(t *testing.T) {
	d := Analyze("You are a scammer, I am calling the police", "")
	if d.Emotion != Nervous {
		t.Fatalf("got %s, want nervous reaction to hostility", d.Emotion)
	}
	if d.ModifierKey() != "nervous" {
		t.Fatalf("ModifierKey = %q, want nervous", d.ModifierKey())
	}
}

func TestAnalyzeHesitantUserMakesDecoyConfident(t *testing.T) {
	d := Analyze("I'm not sure about this, it seems off", "")
	if d.Emotion != Confident {
		t.Fatalf("got %s, want confident reaction to scrutiny", d.Emotion)
	}
}

func TestAnalyzeExcitedUserKeepsDecoyExcited(t *testing.T) {
	d := Analyze("wow this is amazing, I can't wait!", "")
	if d.Emotion != Excited {
		t.Fatalf("got %s, want excited", d.Emotion)
	}
}

func TestAnalyzeTiredUserKeepsDecoyTired(t *testing.T) {
	d := Analyze("I'm exhausted, can we talk tomorrow", "")
	if d.Emotion != Tired {
		t.Fatalf("got %s, want tired", d.Emotion)
	}
}

func TestAnalyzePrefersReplyText(t *testing.T) {
	d := Analyze("you are a liar", "Trust me, it's guaranteed, no risk at all")
	if d.Emotion != Confident {
		t.Fatalf("got %s, want reply's own state to win", d.Emotion)
	}
}

func TestAnalyzeFallsBackToUserWhenReplyNeutral(t *testing.T) {
	d := Analyze("this is fraud, stop messaging me", "Okay.")
	if d.Emotion != Nervous {
		t.Fatalf("got %s, want user-derived nervous", d.Emotion)
	}
}

func TestExclamationsBoostExcited(t *testing.T) {
	d := scoreText("We won!!! Yes!!!")
	if d.Emotion != Excited {
		t.Fatalf("got %s, want excited from exclamations", d.Emotion)
	}
}

func TestDoubleQuestionBoostsHesitant(t *testing.T) {
	d := scoreText("Why would I do that?? Who are you??")
	if d.Emotion != Hesitant {
		t.Fatalf("got %s, want hesitant from stacked questions", d.Emotion)
	}
}
