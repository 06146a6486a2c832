package textclean

import (
	"regexp"
	"strings"

	"github.com/cognicore/tenderlens/pkg/tenderlens/stoplist"
)

var (
	handlePattern = regexp.MustCompile(`@\S+`)
	urlPattern    = regexp.MustCompile(`http\S+`)
)

// Normalizer cleans free-text tender descriptions.
//
// The rules run in a fixed order and each one depends on the previous:
// lower-case, strip @handles, strip URLs, blank out everything that is not an
// ASCII letter, '+' or '\'', drop single letters, drop stopwords and tokens of
// length <= 2, then collapse whitespace.
type Normalizer struct {
	stops       *stoplist.Manager
	stripMarkup bool
}

// New creates a normalizer. A nil stoplist falls back to English.
func New(stops *stoplist.Manager) *Normalizer {
	if stops == nil {
		stops = stoplist.NewEnglish()
	}
	return &Normalizer{stops: stops}
}

// WithMarkupStripping makes Tokens extract the text of HTML descriptions
// before the rules run. Angle-bracketed plain text is then read as tags.
func (n *Normalizer) WithMarkupStripping() *Normalizer {
	n.stripMarkup = true
	return n
}

// Normalize returns the cleaned form of text. Empty input yields "".
func (n *Normalizer) Normalize(text string) string {
	return strings.Join(n.Tokens(text), " ")
}

// Tokens returns the cleaned tokens of text in order.
func (n *Normalizer) Tokens(text string) []string {
	if text == "" {
		return nil
	}

	if n.stripMarkup {
		text = StripMarkup(text)
	}
	text = strings.ToLower(text)
	text = handlePattern.ReplaceAllString(text, "")
	text = urlPattern.ReplaceAllString(text, "")
	text = keepWordRunes(text)

	fields := strings.Fields(text)
	tokens := fields[:0]
	for _, tok := range fields {
		// isolated single letters
		if len(tok) == 1 {
			continue
		}
		if len(tok) <= 2 || n.stops.IsStop(tok) {
			continue
		}
		tokens = append(tokens, tok)
	}
	if len(tokens) == 0 {
		return nil
	}
	return tokens
}

// keepWordRunes replaces every rune outside [a-zA-Z+'] with a space.
func keepWordRunes(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '+', r == '\'':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return b.String()
}
