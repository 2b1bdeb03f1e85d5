// Package notify decides when a mutating action needs an operations alert and
// delivers it.
package notify

import (
	"sort"
	"strings"
)

// ClusterSet is an immutable set of cluster identifiers.
type ClusterSet struct {
	m map[string]struct{}
}

// NewClusterSet builds a set from ids, trimming blanks.
func NewClusterSet(ids ...string) ClusterSet {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		m[id] = struct{}{}
	}
	return ClusterSet{m: m}
}

// ParseClusterList splits a comma-separated list such as PROTECTED_CLUSTERS.
func ParseClusterList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Contains reports membership. Matching is exact.
func (s ClusterSet) Contains(cluster string) bool {
	_, ok := s.m[cluster]
	return ok
}

// Len returns the number of clusters.
func (s ClusterSet) Len() int { return len(s.m) }

// List returns the members sorted.
func (s ClusterSet) List() []string {
	out := make([]string, 0, len(s.m))
	for id := range s.m {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Policy decides whether a successful mutating action is announced.
type Policy struct {
	protected         ClusterSet
	channelConfigured bool
}

// NewPolicy builds a Policy. channelConfigured is false when no publisher is set up.
func NewPolicy(protected ClusterSet, channelConfigured bool) Policy {
	return Policy{protected: protected, channelConfigured: channelConfigured}
}

// ShouldNotify is true iff cluster is protected and a channel exists.
func (p Policy) ShouldNotify(cluster string) bool {
	return p.channelConfigured && p.protected.Contains(cluster)
}
