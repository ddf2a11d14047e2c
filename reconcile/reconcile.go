// Package reconcile computes differences and merges between a language's
// local and remote term lists. Every operation matches terms by key only.
package reconcile

import "github.com/minios-linux/poesync/terms"

// Unique returns the symmetric difference of local and remote: terms whose
// key appears in exactly one of the lists. Local-only terms come first in
// local order, followed by remote-only terms in remote order.
func Unique(local, remote []terms.Term) []terms.Term {
	out := Difference(local, remote)
	return append(out, Difference(remote, local)...)
}

// Difference returns the terms of a whose key is absent from b.
func Difference(a, b []terms.Term) []terms.Term {
	keys := keySet(b)
	var out []terms.Term
	for _, t := range a {
		if !keys[t.Term] {
			out = append(out, t)
		}
	}
	return out
}

// Merge returns one entry per local entry: the remote entry when one with
// the same key exists, the local entry otherwise. The result has the same
// length and order as local.
func Merge(local, remote []terms.Term) []terms.Term {
	byKey := make(map[string]terms.Term, len(remote))
	for _, t := range remote {
		if _, ok := byKey[t.Term]; !ok {
			byKey[t.Term] = t
		}
	}

	out := make([]terms.Term, 0, len(local))
	for _, t := range local {
		if r, ok := byKey[t.Term]; ok {
			out = append(out, r)
			continue
		}
		out = append(out, t)
	}
	return out
}

// Dedupe drops every term whose key was already seen (first occurrence wins).
func Dedupe(list []terms.Term) []terms.Term {
	seen := make(map[string]bool, len(list))
	out := make([]terms.Term, 0, len(list))
	for _, t := range list {
		if seen[t.Term] {
			continue
		}
		seen[t.Term] = true
		out = append(out, t)
	}
	return out
}

// Append appends extra to list and dedupes the result.
func Append(list, extra []terms.Term) []terms.Term {
	all := make([]terms.Term, 0, len(list)+len(extra))
	all = append(all, list...)
	all = append(all, extra...)
	return Dedupe(all)
}

// Contains reports whether list has a term with the given key.
func Contains(list []terms.Term, key string) bool {
	for _, t := range list {
		if t.Term == key {
			return true
		}
	}
	return false
}

// Keys returns the term keys in list order.
func Keys(list []terms.Term) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.Term)
	}
	return out
}

func keySet(list []terms.Term) map[string]bool {
	m := make(map[string]bool, len(list))
	for _, t := range list {
		m[t.Term] = true
	}
	return m
}
