// Package search provides a simple, deterministic, concurrency-safe
// in-memory index over call-record narratives. The inline assistant panel
// answers questions ("what went wrong on the Acme calls?") by retrieving
// the best-matching coaching facts rather than calling out to a model, so
// the index is intentionally small and dependency-free:
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Immutable, read-only index after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// fact's token set: score = |Q ∩ F| / |Q ∪ F|.
package search

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/coachlens/call-insights-backend/internal/domain"
)

// Result is a ranked fact with its similarity score.
type Result struct {
	Snippet string
	Score   float64
}

// Index is the minimal interface implemented by all search indices.
type Index interface {
	TopK(query string, k int) []Result
}

// Option configures index construction.
type Option func(*config)

type config struct {
	minFactRunes int
	stopwords    map[string]struct{}
	maxDocs      int
}

func defaultConfig() config {
	return config{
		minFactRunes: 20,
		stopwords:    nil,
		maxDocs:      0,
	}
}

// WithMinFactRunes drops facts shorter than n runes.
func WithMinFactRunes(n int) Option {
	return func(c *config) {
		if n >= 0 {
			c.minFactRunes = n
		}
	}
}

// WithStopwords removes the given words from both facts and queries.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxDocs caps the number of indexed facts.
func WithMaxDocs(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxDocs = n
		}
	}
}

type doc struct {
	text   string
	tokens map[string]struct{}
	tLen   int
}

type index struct {
	cfg  config
	docs []doc
}

// NewIndexFromCalls builds an Index from the narrative fields of the given
// call records. Each call contributes one fact per non-empty narrative:
// the summary, each what-worked observation, each improvement suggestion,
// missed opportunities, and the next-call game plan.
func NewIndexFromCalls(calls []domain.CallRecord, opts ...Option) Index {
	return NewIndexFromFacts(CallFacts(calls), opts...)
}

// NewIndexFromFacts builds an Index directly from a slice of fact strings.
func NewIndexFromFacts(facts []string, opts ...Option) Index {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	return buildIndex(facts, cfg)
}

// CallFacts flattens call narratives into standalone retrievable facts.
func CallFacts(calls []domain.CallRecord) []string {
	var facts []string
	add := func(s string) {
		if s = strings.TrimSpace(s); s != "" {
			facts = append(facts, s)
		}
	}
	for i := range calls {
		c := &calls[i]
		add(c.AISummary)
		add(c.AINextCallGamePlan)
		for _, w := range c.AIWhatWorked {
			if w.BehaviorSkill == "" && w.Evidence == "" {
				continue
			}
			add(strings.TrimSpace(fmt.Sprintf("What worked: %s. %s", w.BehaviorSkill, w.Evidence)))
		}
		for _, a := range c.AIImprovementAreas {
			if a.CategorySkill == "" && a.DoThisInstead == "" {
				continue
			}
			add(strings.TrimSpace(fmt.Sprintf("Improve %s: %s %s", a.CategorySkill, a.DoThisInstead, a.WhyThisWorksBetter)))
		}
		for _, m := range c.AIMissedOpportunities {
			add("Missed opportunity: " + m)
		}
	}
	return facts
}

func buildIndex(facts []string, cfg config) *index {
	docs := make([]doc, 0, len(facts))
	for _, raw := range facts {
		t := strings.TrimSpace(normalizeWhitespace(raw))
		if t == "" {
			continue
		}
		if cfg.minFactRunes > 0 && utf8.RuneCountInString(t) < cfg.minFactRunes {
			continue
		}
		toks := tokenize(t, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		docs = append(docs, doc{text: t, tokens: toks, tLen: len(toks)})
		if cfg.maxDocs > 0 && len(docs) >= cfg.maxDocs {
			break
		}
	}
	return &index{cfg: cfg, docs: docs}
}

// TopK returns up to k best-matching facts by Jaccard similarity.
func (i *index) TopK(q string, k int) []Result {
	if len(i.docs) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 3
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	type scored struct {
		snippet  string
		score    float64
		lenRunes int
	}

	buf := make([]scored, 0, len(i.docs))
	for _, d := range i.docs {
		over := overlap(qTokens, d.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + d.tLen - over)
		if union <= 0 {
			continue
		}
		buf = append(buf, scored{
			snippet:  d.text,
			score:    float64(over) / union,
			lenRunes: utf8.RuneCountInString(d.text),
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].score != buf[b].score {
			return buf[a].score > buf[b].score
		}
		if buf[a].lenRunes != buf[b].lenRunes {
			return buf[a].lenRunes < buf[b].lenRunes
		}
		return buf[a].snippet < buf[b].snippet
	})

	if k > len(buf) {
		k = len(buf)
	}
	out := make([]Result, k)
	for n := 0; n < k; n++ {
		out[n] = Result{Snippet: buf[n].snippet, Score: buf[n].score}
	}
	return out
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	n := 0
	if len(a) > len(b) {
		a, b = b, a
	}
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func normalizeWhitespace(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevSpace := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\r' || r == '\n' {
			if !prevSpace {
				b.WriteByte(' ')
				prevSpace = true
			}
			continue
		}
		prevSpace = false
		b.WriteRune(r)
	}
	return b.String()
}
