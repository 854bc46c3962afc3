package whatsapp

import (
	"strconv"
	"strings"
	"unicode"

	"wedding-invitation/internal/models"
)

// Reply is an RSVP read from a chat message
type Reply struct {
	Attending  bool
	GuestCount int
}

var (
	declinePhrases = []string{
		"not coming", "can't come", "cant come", "won't come", "can't make it", "❌",
		"不参加", "不能参加", "参加不了", "没法参加", "无法参加", "不能来", "不去", "不来", "去不了", "来不了",
	}
	acceptPhrases = []string{"will come", "will be there", "✅", "参加", "出席", "一定到"}
	acceptWords   = map[string]bool{"yes": true, "yep": true, "yeah": true, "accept": true, "accepting": true, "attending": true, "coming": true, "sure": true}
	declineWords  = map[string]bool{"no": true, "nope": true, "decline": true, "declining": true}
)

// ParseReply interprets a free-text answer to an invitation. Negative
// phrases are checked first because several contain a positive keyword
// ("not coming", "参加不了"). Otherwise the first yes/no word decides, so
// "yes, no problem" is an acceptance. An attending reply may carry a party
// size ("yes 3"); without one the count is 1. ok is false when the text is
// not recognisably an RSVP or the party size is out of range.
func ParseReply(text string) (Reply, bool) {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return Reply{}, false
	}

	if containsAny(text, declinePhrases...) {
		return Reply{Attending: false}, true
	}

	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})

	attending := containsAny(text, acceptPhrases...)
	if !attending {
		for _, w := range words {
			if acceptWords[w] {
				attending = true
				break
			}
			if declineWords[w] {
				return Reply{Attending: false}, true
			}
		}
	}
	if !attending {
		return Reply{}, false
	}

	count := 1
	if n, ok := firstNumber(text); ok {
		count = n
	}
	if count < 1 || count > models.MaxPartySize {
		return Reply{}, false
	}
	return Reply{Attending: true, GuestCount: count}, true
}

// firstNumber returns the first run of ASCII digits in text
func firstNumber(text string) (int, bool) {
	start := strings.IndexFunc(text, func(r rune) bool { return r >= '0' && r <= '9' })
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(text) && text[end] >= '0' && text[end] <= '9' {
		end++
	}
	n, err := strconv.Atoi(text[start:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

// containsAny checks if the text contains any of the given keywords
func containsAny(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
