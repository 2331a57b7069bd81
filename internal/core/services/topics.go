package services

import (
	"regexp"
	"sort"
	"strings"

	"github.com/openhwy/chatidx/internal/core/domain"
)

// titleStopWords are excluded from topic extraction over titles.
var titleStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"from": {}, "as": {}, "is": {}, "was": {}, "are": {}, "were": {}, "be": {},
	"been": {}, "being": {}, "have": {}, "has": {}, "had": {}, "do": {},
	"does": {}, "did": {}, "will": {}, "would": {}, "should": {}, "could": {},
	"may": {}, "might": {}, "can": {}, "it": {}, "this": {}, "that": {},
	"these": {}, "those": {}, "i": {}, "you": {}, "he": {}, "she": {},
	"we": {}, "they": {}, "my": {}, "your": {}, "how": {}, "what": {},
	"when": {}, "where": {}, "why": {}, "which": {}, "who": {}, "help": {},
	"me": {}, "please": {}, "need": {}, "want": {}, "make": {}, "using": {},
	"use": {}, "get": {},
}

// titleWordRe keeps hyphenated and underscored words intact.
var titleWordRe = regexp.MustCompile(`\b[\w-]+\b`)

// allDigitsRe matches purely numeric tokens.
var allDigitsRe = regexp.MustCompile(`^\d+$`)

// extractTopics tokenises titles and returns the topN most frequent
// keywords after stop-word, length, and digit filtering. Ties break
// by first encounter across the title stream.
func extractTopics(titles []string, topN, minWordLength int) []domain.TopicCount {
	if topN <= 0 {
		topN = 50
	}
	if minWordLength <= 0 {
		minWordLength = 4
	}

	counts := make(map[string]int)
	firstSeen := make(map[string]int)
	for _, title := range titles {
		for _, word := range titleWordRe.FindAllString(strings.ToLower(title), -1) {
			if len(word) < minWordLength {
				continue
			}
			if _, stop := titleStopWords[word]; stop {
				continue
			}
			if allDigitsRe.MatchString(word) {
				continue
			}
			if _, seen := counts[word]; !seen {
				firstSeen[word] = len(firstSeen)
			}
			counts[word]++
		}
	}

	topics := make([]domain.TopicCount, 0, len(counts))
	for word, count := range counts {
		topics = append(topics, domain.TopicCount{Topic: word, Count: count})
	}

	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Count != topics[j].Count {
			return topics[i].Count > topics[j].Count
		}
		return firstSeen[topics[i].Topic] < firstSeen[topics[j].Topic]
	})

	if len(topics) > topN {
		topics = topics[:topN]
	}
	return topics
}
