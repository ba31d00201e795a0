// Package dictionary builds and queries the finite-state-transducer
// dictionaries that back the query parser's component matchers: street
// suffixes, categories, locality/region/country name lists, and
// intersection join words. Each dictionary is compiled once, from a
// sorted word list, into a compact vellum FST used for exact and prefix
// containment checks; the original word list is retained alongside it
// for the approximate (Levenshtein / greedy-Levenshtein) match modes,
// which go-edlib's similarity scoring answers more directly than
// composing automata would.
package dictionary

import (
	"bytes"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/blevesearch/vellum"
)

// KeyedFST is a single named dictionary with a process-unique identity.
// The identity (not the dictionary's contents) is part of the
// memoization cache key in matcher.go, exactly as the original
// implementation's FstKey registry works: two dictionaries built from
// identical word lists are still distinct cache namespaces if they were
// constructed separately.
type KeyedFST struct {
	id    uint64
	name  string
	fst   *vellum.FST
	words []string // sorted, deduplicated, same set inserted into fst
}

var nextID uint64

// New compiles words into a KeyedFST. words need not be sorted or
// deduplicated; New does both before building the FST, since vellum
// requires keys inserted in strictly increasing order.
func New(name string, words []string) (*KeyedFST, error) {
	unique := dedupe(words)
	sort.Strings(unique)

	var buf bytes.Buffer
	builder, err := vellum.New(&buf, nil)
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: creating fst builder: %w", name, err)
	}
	for _, w := range unique {
		if err := builder.Insert([]byte(w), 0); err != nil {
			return nil, fmt.Errorf("dictionary %s: inserting %q: %w", name, w, err)
		}
	}
	if err := builder.Close(); err != nil {
		return nil, fmt.Errorf("dictionary %s: closing fst builder: %w", name, err)
	}

	fst, err := vellum.Load(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("dictionary %s: loading fst: %w", name, err)
	}

	return &KeyedFST{
		id:    atomic.AddUint64(&nextID, 1),
		name:  name,
		fst:   fst,
		words: unique,
	}, nil
}

func dedupe(words []string) []string {
	seen := make(map[string]struct{}, len(words))
	out := make([]string, 0, len(words))
	for _, w := range words {
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		out = append(out, w)
	}
	return out
}

// ID returns the dictionary's process-unique identity.
func (k *KeyedFST) ID() uint64 { return k.id }

// Name returns the dictionary's human-readable name, used only for
// error messages and debug logging.
func (k *KeyedFST) Name() string { return k.name }

// Contains reports whether word is exactly present in the dictionary.
func (k *KeyedFST) Contains(word string) (bool, error) {
	ok, err := k.fst.Contains([]byte(word))
	if err != nil {
		return false, fmt.Errorf("dictionary %s: contains %q: %w", k.name, word, err)
	}
	return ok, nil
}

// HasPrefix reports whether some key in the dictionary starts with
// prefix. It relies on the FST's keys being iterated in sorted order:
// the first key >= prefix either shares that prefix or no key does.
func (k *KeyedFST) HasPrefix(prefix string) (bool, error) {
	if prefix == "" {
		return len(k.words) > 0, nil
	}
	itr, err := k.fst.Iterator([]byte(prefix), nil)
	if err == vellum.ErrIteratorDone {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("dictionary %s: prefix iterator for %q: %w", k.name, prefix, err)
	}
	defer itr.Close()
	key, _ := itr.Current()
	return bytes.HasPrefix(key, []byte(prefix)), nil
}

// Words returns the dictionary's sorted, deduplicated word list. The
// caller must not mutate the returned slice.
func (k *KeyedFST) Words() []string { return k.words }

// Registry is a simple named-lookup table of KeyedFST instances. The
// query parsers do not consult it; they take their dictionaries from
// query.Dictionaries.
type Registry struct {
	mu   sync.RWMutex
	byName map[string]*KeyedFST
}

func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]*KeyedFST)}
}

// Register adds (or replaces) a named dictionary in the registry.
func (r *Registry) Register(dict *KeyedFST) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byName[dict.name] = dict
}

// Get looks up a dictionary by name.
func (r *Registry) Get(name string) (*KeyedFST, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byName[name]
	return d, ok
}
