package dictionary

import (
	"container/list"
	"math"
	"strconv"
	"sync"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/hbollon/go-edlib"
)

// MatchMode selects how a query fragment is tested against a
// dictionary: Prefix accepts a first term that is a prefix of some key,
// Levenshtein accepts fragments within a bounded edit distance of some
// key, and GreedyLevenshtein grows a match token-by-token, accepting the
// longest run whose accumulated slice itself lies within the bounded
// edit distance of some key.
type MatchMode struct {
	kind     matchKind
	distance int
}

type matchKind int

const (
	kindPrefix matchKind = iota
	kindLevenshtein
	kindGreedyLevenshtein
)

func Prefix() MatchMode                     { return MatchMode{kind: kindPrefix} }
func Levenshtein(distance int) MatchMode     { return MatchMode{kind: kindLevenshtein, distance: distance} }
func GreedyLevenshtein(distance int) MatchMode {
	return MatchMode{kind: kindGreedyLevenshtein, distance: distance}
}

// cacheKey identifies a single (dictionary, mode, input) match
// invocation. The dictionary is keyed by its process-unique ID, not its
// contents, matching the original's FstKey-based memoization.
type cacheKey struct {
	dictID   uint64
	kind     matchKind
	distance int
	input    string
}

// hash folds the key into a single uint64 bucket via xxhash, the same
// non-cryptographic, collision-tolerant hash the original uses for its
// FST and memoization keys. Two distinct keys may hash alike; get/put
// fall back to comparing the stored cacheKey on a bucket hit, so a
// collision only costs a cache miss, never a wrong match.
func (k cacheKey) hash() uint64 {
	h := xxhash.New()
	var scratch [8]byte
	putUint64(scratch[:], k.dictID)
	h.Write(scratch[:])
	h.WriteString(strconv.Itoa(int(k.kind)))
	h.Write([]byte{0})
	h.WriteString(strconv.Itoa(k.distance))
	h.Write([]byte{0})
	h.WriteString(k.input)
	return h.Sum64()
}

func putUint64(b []byte, v uint64) {
	for i := 0; i < 8; i++ {
		b[i] = byte(v >> (8 * i))
	}
}

// memo is a bounded LRU cache shared across all matcher calls, mirroring
// the original's thread-local 1024*128-entry cache. Go has no
// convenient thread-local storage equivalent that fits goroutines, so
// this is a single mutex-guarded cache instead; contention is low
// because each lookup does O(1) map and list work.
type memo struct {
	mu       sync.Mutex
	capacity int
	entries  map[uint64]*list.Element
	order    *list.List
}

type memoEntry struct {
	hash   uint64
	key    cacheKey
	result matchResult
}

type matchResult struct {
	matched   string
	remainder string
	ok        bool
}

const defaultMemoCapacity = 1024 * 128

var sharedMemo = newMemo(defaultMemoCapacity)

func newMemo(capacity int) *memo {
	return &memo{
		capacity: capacity,
		entries:  make(map[uint64]*list.Element),
		order:    list.New(),
	}
}

func (m *memo) get(key cacheKey) (matchResult, bool) {
	h := key.hash()

	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.entries[h]
	if !ok {
		return matchResult{}, false
	}
	entry := el.Value.(*memoEntry)
	if entry.key != key {
		return matchResult{}, false
	}
	m.order.MoveToFront(el)
	return entry.result, true
}

func (m *memo) put(key cacheKey, result matchResult) {
	h := key.hash()

	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.entries[h]; ok {
		entry := el.Value.(*memoEntry)
		entry.key = key
		entry.result = result
		m.order.MoveToFront(el)
		return
	}
	el := m.order.PushFront(&memoEntry{hash: h, key: key, result: result})
	m.entries[h] = el
	if m.order.Len() > m.capacity {
		oldest := m.order.Back()
		if oldest != nil {
			m.order.Remove(oldest)
			delete(m.entries, oldest.Value.(*memoEntry).hash)
		}
	}
}

// Match tests input against dict under mode, returning the matched
// prefix and the remainder of input following it. ok is false if no
// match was found, in which case matched/remainder are empty.
func Match(dict *KeyedFST, mode MatchMode, input string) (matched, remainder string, ok bool) {
	key := cacheKey{dictID: dict.id, kind: mode.kind, distance: mode.distance, input: input}
	if cached, found := sharedMemo.get(key); found {
		return cached.matched, cached.remainder, cached.ok
	}

	var result matchResult
	switch mode.kind {
	case kindPrefix:
		result = matchPrefix(dict, input)
	case kindLevenshtein:
		result = matchLevenshtein(dict, mode.distance, input)
	case kindGreedyLevenshtein:
		result = matchGreedy(dict, mode.distance, input)
	}

	sharedMemo.put(key, result)
	return result.matched, result.remainder, result.ok
}

func matchPrefix(dict *KeyedFST, input string) matchResult {
	term, _ := splitTerm(input)
	if term == "" {
		return matchResult{}
	}
	ok, err := dict.HasPrefix(term)
	if err != nil || !ok {
		return matchResult{}
	}
	return matchResult{matched: term, remainder: input[len(term):], ok: true}
}

func matchLevenshtein(dict *KeyedFST, distance int, input string) matchResult {
	term, _ := splitTerm(input)
	if term == "" {
		return matchResult{}
	}
	if withinDistance(dict, term, distance) {
		return matchResult{matched: term, remainder: input[len(term):], ok: true}
	}
	return matchResult{}
}

// matchGreedy grows a match across successive whitespace/punctuation
// separated tokens, accepting the longest accumulated slice whose
// prefix-of-some-key test succeeds at every growth step and which is
// itself within the allowed edit distance of some dictionary key.
func matchGreedy(dict *KeyedFST, distance int, input string) matchResult {
	matchingLen, sepLen := 0, 0
	for {
		remaining := input[matchingLen+sepLen:]
		if remaining == "" {
			break
		}
		term, _ := splitTerm(remaining)
		if term == "" {
			break
		}
		tentative := input[:matchingLen+sepLen+len(term)]
		if !hasPrefixWithinDistance(dict, tentative, distance) {
			break
		}
		matchingLen += sepLen + len(term)
		sep, _ := splitSep(input[matchingLen:])
		sepLen = len(sep)
	}

	if matchingLen == 0 {
		return matchResult{}
	}

	tentative := input[:matchingLen]
	if withinDistance(dict, tentative, distance) {
		return matchResult{matched: tentative, remainder: input[matchingLen:], ok: true}
	}
	return matchResult{}
}

// withinDistance reports whether tentative lies within the given edit
// distance of some key in dict. distance 0 is answered exactly via the
// FST; distance > 0 scans the retained word list and asks go-edlib for
// a normalized Levenshtein similarity, converting it back to an
// approximate edit-distance count the same way the fuzzy-matching
// component elsewhere in this codebase's ancestry does.
func withinDistance(dict *KeyedFST, tentative string, distance int) bool {
	if distance <= 0 {
		ok, err := dict.Contains(tentative)
		return err == nil && ok
	}
	for _, w := range dict.words {
		if approxEditDistance(tentative, w) <= distance {
			return true
		}
	}
	return false
}

// hasPrefixWithinDistance reports whether some key in dict has, within
// the given edit distance, the same prefix as tentative (i.e. growing
// tentative by one more token could still lead to a full match).
func hasPrefixWithinDistance(dict *KeyedFST, tentative string, distance int) bool {
	if distance <= 0 {
		ok, err := dict.HasPrefix(tentative)
		return err == nil && ok
	}
	for _, w := range dict.words {
		truncated := w
		if len(w) > len(tentative) {
			truncated = w[:len(tentative)]
		}
		if approxEditDistance(tentative, truncated) <= distance {
			return true
		}
	}
	return false
}

func approxEditDistance(a, b string) int {
	if a == b {
		return 0
	}
	similarity, err := edlib.StringsSimilarity(a, b, edlib.Levenshtein)
	if err != nil {
		return math.MaxInt32
	}
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	return int(math.Round(float64(1-similarity) * float64(maxLen)))
}

// splitTerm returns the longest leading run of non-separator runes in s
// and the remainder.
func splitTerm(s string) (term, rest string) {
	runes := []rune(s)
	i := 0
	for i < len(runes) && !isSep(runes[i]) {
		i++
	}
	return string(runes[:i]), string(runes[i:])
}

// splitSep returns the longest leading run of separator runes in s and
// the remainder. Separators are unicode whitespace plus ASCII
// punctuation, matching the original tokenizer's query_sep/query_term
// definitions.
func splitSep(s string) (sep, rest string) {
	runes := []rune(s)
	i := 0
	for i < len(runes) && isSep(runes[i]) {
		i++
	}
	return string(runes[:i]), string(runes[i:])
}

func isSep(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	return isASCIIPunct(r)
}

func isASCIIPunct(r rune) bool {
	return (r >= '!' && r <= '/') ||
		(r >= ':' && r <= '@') ||
		(r >= '[' && r <= '`') ||
		(r >= '{' && r <= '~')
}
