package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	phishingSample   = "URGENT: Your account will be suspended! Click here immediately to verify your information and avoid account closure. Act now before it's too late!"
	legitimateSample = "Thank you for your recent purchase. Your order #12345 has been shipped and will arrive within 3-5 business days."
)

func testExtractor(t *testing.T) *Extractor {
	t.Helper()
	docs := [][]string{
		Terms(phishingSample),
		Terms(legitimateSample),
		Terms("Verify your account now at http://example.com"),
	}
	return NewExtractor(FitVectorizer(docs, 50))
}

func TestExtractFixedLength(t *testing.T) {
	e := testExtractor(t)

	inputs := []string{
		"",
		"   ",
		phishingSample,
		legitimateSample,
		"<html><body><p>Hello</p></body></html>",
		"completely unseen vocabulary zebra xylophone",
		"éè 中文 !!!",
	}
	for _, in := range inputs {
		v := e.Extract(in)
		assert.Equal(t, e.Schema().Len(), v.Len(), "input %q", in)
		assert.Len(t, v.Values(), e.Schema().Len(), "input %q", in)
	}
}

func TestExtractEmptyIsZero(t *testing.T) {
	e := testExtractor(t)

	for _, x := range e.Extract("").Values() {
		assert.Zero(t, x)
	}
}

func TestExtractDeterministic(t *testing.T) {
	e := testExtractor(t)

	assert.Equal(t, e.Extract(phishingSample).Values(), e.Extract(phishingSample).Values())
}

func TestSuspiciousCounts(t *testing.T) {
	e := testExtractor(t)

	phish := e.Extract(phishingSample)
	assert.Greater(t, phish.SuspiciousWordCount, 0.0)

	legit := e.Extract(legitimateSample)
	assert.Zero(t, legit.SuspiciousWordCount)

	// word boundaries: "known" must not count as "now"
	assert.Zero(t, CountSuspicious("well known facts"))
	assert.Equal(t, 2, CountSuspicious("ACT NOW"))
}

func TestHTMLDoesNotInflateCounts(t *testing.T) {
	plain := ComputeStats(StripHTML("Click here"))
	tagged := ComputeStats(StripHTML("<b>Click here</b>"))

	assert.Equal(t, plain, tagged)
	assert.Equal(t, 2.0, tagged.WordCount)
	assert.Equal(t, 10.0, tagged.CharCount)
	assert.Equal(t, 1.0, tagged.SuspiciousWordCount)

	linked := ComputeStats(StripHTML(`<a href="http://evil.example/login">update</a>`))
	assert.Zero(t, linked.URLCount)
	assert.Equal(t, 1.0, linked.WordCount)
}

func TestStripHTMLKeepsBracketedLinksAndAddresses(t *testing.T) {
	link := "Verify your account at <https://evil.example/login> today"
	assert.Equal(t, link, StripHTML(link))
	assert.Equal(t, 1.0, ComputeStats(StripHTML(link)).URLCount)

	sender := "From: PayPal Support <support@paypa1.example>"
	assert.Equal(t, sender, StripHTML(sender))
	assert.Equal(t, 1.0, ComputeStats(StripHTML(sender)).EmailAddressCount)

	mixed := ComputeStats(StripHTML("<p>Log in at <https://evil.example/login></p>"))
	assert.Equal(t, 1.0, mixed.URLCount)
	assert.Equal(t, 4.0, mixed.WordCount)
}

func TestStripHTML(t *testing.T) {
	assert.Equal(t, "plain text", StripHTML("plain text"))
	assert.Equal(t, "Hi there", StripHTML("<p>Hi</p><p>there</p>"))
	assert.Equal(t, "visible", StripHTML("<script>alert('x')</script><style>p{}</style>visible"))
	assert.Equal(t, "Tom & Jerry", StripHTML("Tom &amp; Jerry"))
}

func TestComputeStats(t *testing.T) {
	stats := ComputeStats("Visit our site now! Reply today. Why wait?")

	assert.Equal(t, 1.0, stats.ExclamationCount)
	assert.Equal(t, 1.0, stats.QuestionCount)
	assert.Equal(t, 3.0, stats.SentenceCount)
	assert.Greater(t, stats.UppercaseRatio, 0.0)
	assert.Greater(t, stats.PunctuationRatio, 0.0)
	assert.LessOrEqual(t, stats.UppercaseRatio, 1.0)
	assert.InDelta(t, 8.0/3.0, stats.AvgSentenceLength, 1e-9)

	links := ComputeStats("Go to https://a.example/login or http://b.example, then mail bob@example.com")
	assert.Equal(t, 2.0, links.URLCount)
	assert.Equal(t, 1.0, links.EmailAddressCount)
}

func TestTokens(t *testing.T) {
	assert.Equal(t, Tokens("account"), Tokens("accounts"))
	assert.Empty(t, Tokens("the and of is a"))
	assert.Empty(t, Tokens("http://example.com bob@example.com 12345"))
	assert.Empty(t, Tokens(""))
}

func TestTerms(t *testing.T) {
	terms := Terms("urgent payment request")
	require.Len(t, terms, 5)
	assert.Contains(t, terms, Tokens("urgent")[0]+" "+Tokens("payment")[0])
}

func TestVectorizerUnseenTermsContributeZero(t *testing.T) {
	v := FitVectorizer([][]string{{"alpha", "beta"}, {"beta", "gamma"}}, 10)

	assert.Equal(t, []string{"alpha", "beta", "gamma"}, v.Vocabulary())
	assert.Equal(t, []float64{0, 0, 0}, v.Transform([]string{"delta", "epsilon"}))

	row := v.Transform([]string{"alpha", "beta", "delta"})
	var norm float64
	for _, x := range row {
		norm += x * x
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)
	assert.Greater(t, row[0], row[1], "rarer term weighs more")
	assert.Equal(t, 3, v.Len(), "transform never grows the vocabulary")
}

func TestVectorizerMaxFeatures(t *testing.T) {
	v := FitVectorizer([][]string{{"a", "a", "a", "b", "b", "c"}}, 2)
	assert.Equal(t, []string{"a", "b"}, v.Vocabulary())
}

func TestNewVectorizerRejectsBadState(t *testing.T) {
	_, err := NewVectorizer(VectorizerState{Vocabulary: []string{"a"}, IDF: nil})
	assert.Error(t, err)

	_, err = NewVectorizer(VectorizerState{Vocabulary: []string{"b", "a"}, IDF: []float64{1, 1}})
	assert.Error(t, err)

	_, err = NewVectorizer(VectorizerState{Vocabulary: []string{"a"}, IDF: []float64{math.NaN()}})
	assert.Error(t, err)
}

func TestSchemaValidate(t *testing.T) {
	a := NewSchema([]string{"x", "y"})
	assert.NoError(t, a.Validate(NewSchema([]string{"x", "y"})))
	assert.Error(t, a.Validate(NewSchema([]string{"x"})))
	assert.Error(t, a.Validate(NewSchema([]string{"y", "x"})))

	old := NewSchema([]string{"x", "y"})
	old.Version = "phish-features/1"
	assert.Error(t, a.Validate(old))
}

func TestTopTerms(t *testing.T) {
	terms := TopTerms("<b>Verify</b> verify verify account account password", 2)

	require.Len(t, terms, 2)
	assert.Equal(t, "verify", terms[0].Word)
	assert.Equal(t, 1.0, terms[0].Weight)
	assert.Equal(t, "account", terms[1].Word)
	assert.InDelta(t, 2.0/3.0, terms[1].Weight, 1e-9)

	assert.Empty(t, TopTerms("", 10))
	assert.Nil(t, TopTerms("text", 0))
}
