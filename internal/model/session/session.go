package session

import (
	"time"

	"github.com/avelier/decoychat/internal/model/locale"
)

// Kind identifies the scam scenario a decoy conversation simulates.
type Kind string

const (
	KindRomance     Kind = "romance_scam"
	KindInvestment  Kind = "investment_scam"
	KindPrize       Kind = "prize_scam"
	KindTechSupport Kind = "tech_support_scam"
	KindMarketplace Kind = "marketplace_scam"
)

// Kinds lists every supported conversation kind.
func Kinds() []Kind {
	return []Kind{KindRomance, KindInvestment, KindPrize, KindTechSupport, KindMarketplace}
}

// ParseKind validates a raw conversation kind token.
func ParseKind(raw string) (Kind, bool) {
	for _, k := range Kinds() {
		if string(k) == raw {
			return k, true
		}
	}
	return "", false
}

// Session captures one live decoy conversation bound to a transport.
type Session struct {
	ID           string         `json:"id"`
	OwnerID      string         `json:"ownerId"`
	Kind         Kind           `json:"kind"`
	CreatedAt    time.Time      `json:"createdAt"`
	MessageCount int            `json:"messageCount"`
	Typing       bool           `json:"typing"`
	Locale       locale.Context `json:"locale"`
}
