package features

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball/english"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	urlPattern   = regexp.MustCompile(`(?i)\bhttps?://[^\s<>"']+`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}\b`)
	nonLetters   = regexp.MustCompile(`[^a-zA-Z\s]+`)
	sentenceEnds = regexp.MustCompile(`[.!?]+`)
)

// blockElements break words when their tags are removed
var blockElements = map[atom.Atom]bool{
	atom.Br: true, atom.P: true, atom.Div: true, atom.Li: true,
	atom.Tr: true, atom.Td: true, atom.Th: true, atom.Table: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.H5: true, atom.H6: true, atom.Hr: true, atom.Title: true,
}

// StripHTML returns the visible text of an HTML fragment with entities decoded.
// Script and style bodies are dropped. Plain text passes through unchanged,
// including angle-bracketed links and addresses that are not HTML elements.
func StripHTML(text string) string {
	if !strings.ContainsAny(text, "<&") {
		return text
	}

	var b strings.Builder
	z := html.NewTokenizer(strings.NewReader(text))
	skip := 0
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			// io.EOF is the only error a strings.Reader can produce
			return strings.TrimSpace(b.String())
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		case html.StartTagToken, html.EndTagToken, html.SelfClosingTagToken:
			// TagName lowercases the buffer in place, so copy the raw token first
			raw := string(z.Raw())
			name, _ := z.TagName()
			a := atom.Lookup(name)
			if a == 0 {
				// not an HTML element: plain-text mail writes <https://...>
				// and Name <user@host> this way
				if skip == 0 {
					b.WriteString(raw)
				}
				continue
			}
			if a == atom.Script || a == atom.Style {
				switch tt {
				case html.StartTagToken:
					skip++
				case html.EndTagToken:
					if skip > 0 {
						skip--
					}
				}
				continue
			}
			if blockElements[a] && b.Len() > 0 && !strings.HasSuffix(b.String(), " ") {
				b.WriteByte(' ')
			}
		}
	}
}

// CountURLs counts http(s) URLs in text
func CountURLs(text string) int {
	return len(urlPattern.FindAllStringIndex(text, -1))
}

// CountEmailAddresses counts email addresses in text
func CountEmailAddresses(text string) int {
	return len(emailPattern.FindAllStringIndex(text, -1))
}

// Tokens lowercases text, removes URLs, email addresses and non-letters,
// drops stop words and tokens of two letters or fewer, then Porter-stems.
func Tokens(text string) []string {
	return tokenize(text, true)
}

func tokenize(text string, stem bool) []string {
	if text == "" {
		return nil
	}
	text = urlPattern.ReplaceAllString(text, " ")
	text = emailPattern.ReplaceAllString(text, " ")
	text = nonLetters.ReplaceAllString(text, " ")

	fields := strings.Fields(strings.ToLower(text))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) <= 2 || IsStopWord(f) {
			continue
		}
		if stem {
			f = english.Stem(f, false)
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// Terms returns the unigrams and adjacent bigrams of the stemmed tokens
func Terms(text string) []string {
	tokens := Tokens(text)
	if len(tokens) == 0 {
		return nil
	}
	terms := make([]string, 0, 2*len(tokens)-1)
	terms = append(terms, tokens...)
	for i := 0; i+1 < len(tokens); i++ {
		terms = append(terms, tokens[i]+" "+tokens[i+1])
	}
	return terms
}

// Sentences splits text on runs of terminal punctuation, dropping empty pieces
func Sentences(text string) []string {
	parts := sentenceEnds.Split(text, -1)
	out := parts[:0]
	for _, p := range parts {
		if strings.IndexFunc(p, func(r rune) bool { return !unicode.IsSpace(r) }) >= 0 {
			out = append(out, p)
		}
	}
	return out
}
