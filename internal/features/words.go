package features

import (
	"regexp"
	"strings"
)

// suspiciousPhrases are phishing cue words and phrases, matched case-insensitively
// on word boundaries
var suspiciousPhrases = []string{
	"urgent", "immediate", "act now", "limited time", "expires",
	"click here", "click now", "verify", "confirm", "update",
	"suspend", "suspended", "account", "security", "alert",
	"warning", "congratulations", "winner", "prize", "lottery",
	"free", "bonus", "offer", "deal", "discount", "save",
	"money", "cash", "credit", "loan", "debt", "investment",
	"guarantee", "risk-free", "no obligation", "act fast",
	"don't delay", "hurry", "rush", "now", "today only",
	"limited offer", "exclusive", "special", "amazing",
	"incredible", "unbelievable", "fantastic", "wonderful",
}

var suspiciousPatterns = compilePhrases(suspiciousPhrases)

func compilePhrases(phrases []string) []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(phrases))
	for i, p := range phrases {
		patterns[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\b`)
	}
	return patterns
}

// CountSuspicious counts occurrences of the suspicious phrases in text.
// Overlapping phrases ("act now", "now") are each counted.
func CountSuspicious(text string) int {
	lower := strings.ToLower(text)
	count := 0
	for _, p := range suspiciousPatterns {
		count += len(p.FindAllStringIndex(lower, -1))
	}
	return count
}

var stopWords = toSet(strings.Fields(`
a about above across after afterwards again against all almost alone along
already also although always am among amongst amount an and another any anyhow
anyone anything anyway anywhere are around as at back be became because become
becomes becoming been before beforehand behind being below beside besides
between beyond both bottom but by call can cannot could did do does doing done
down due during each eight either eleven else elsewhere empty enough etc even
ever every everyone everything everywhere except few fifteen fifty fill find
first five for former formerly forty four from front full further get give go
had has hasnt have having he hence her here hereafter hereby herein hereupon
hers herself him himself his how however hundred i ie if in inc indeed into is
it its itself just keep last latter latterly least less ltd made many may me
meanwhile might mine more moreover most mostly move much must my myself name
namely neither never nevertheless next nine no nobody none noone nor not nothing
now nowhere of off often on once one only onto or other others otherwise our
ours ourselves out over own part per perhaps please put rather re same see seem
seemed seeming seems serious several she should show side since six sixty so
some somehow someone something sometime sometimes somewhere still such take ten
than that the their theirs them themselves then thence there thereafter thereby
therefore therein thereupon these they third this those though three through
throughout thru thus to together too top toward towards twelve twenty two under
until up upon us very via was we well were what whatever when whence whenever
where whereafter whereas whereby wherein whereupon wherever whether which while
whither who whoever whole whom whose why will with within without would yet you
your yours yourself yourselves
`))

func toSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// IsStopWord reports whether the lowercase word is an English stop word
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}
