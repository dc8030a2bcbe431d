package engine

import (
	"sort"

	"github.com/letmevibethatforyou/discovery"
	"github.com/letmevibethatforyou/discovery/textnorm"
)

// Search runs the kind pipeline: split the query once, score every entity
// against its precomputed text, drop exclusions, apply the structured filters
// and sort. The full ordered sequence is returned; paging is a caller concern.
func (h Handler) Search(query string, values discovery.FilterValues, mode discovery.SortMode, entities []discovery.Entity) []discovery.ScoredMatch {
	terms := textnorm.SplitTerms(query)
	if len(terms) == 0 {
		return nil
	}
	exprs := h.Expressions(values)

	var matches []discovery.ScoredMatch
	for _, e := range entities {
		s := h.Weights.Score(e.SearchText(), terms)
		if s == 0 {
			continue
		}
		if !discovery.Matches(e, exprs...) {
			continue
		}
		matches = append(matches, discovery.ScoredMatch{Entity: e, Score: s})
	}

	SortMatches(matches, mode)
	return matches
}

// SortMatches orders matches by mode with a full three-key comparison and a
// final ID tie-break, so the outcome never depends on input order.
func SortMatches(matches []discovery.ScoredMatch, mode discovery.SortMode) {
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if mode == discovery.SortNewest {
			if c := a.Entity.UpdatedAt().Compare(b.Entity.UpdatedAt()); c != 0 {
				return c > 0
			}
			if a.Entity.Popularity() != b.Entity.Popularity() {
				return a.Entity.Popularity() > b.Entity.Popularity()
			}
			if a.Score != b.Score {
				return a.Score > b.Score
			}
		} else {
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Entity.Popularity() != b.Entity.Popularity() {
				return a.Entity.Popularity() > b.Entity.Popularity()
			}
			if c := a.Entity.UpdatedAt().Compare(b.Entity.UpdatedAt()); c != 0 {
				return c > 0
			}
		}
		return a.Entity.EntityID() < b.Entity.EntityID()
	})
}

// EntitiesOf strips the scores.
func EntitiesOf(matches []discovery.ScoredMatch) []discovery.Entity {
	out := make([]discovery.Entity, len(matches))
	for i, m := range matches {
		out[i] = m.Entity
	}
	return out
}

func searchDefault(kind discovery.Kind, query string, values discovery.FilterValues, mode discovery.SortMode, entities []discovery.Entity) []discovery.Entity {
	return EntitiesOf(defaultRegistry[kind].Search(query, values, mode, entities))
}

// SearchPeople searches profiles. Filters: role, minFollowers, verified.
func SearchPeople(query string, values discovery.FilterValues, mode discovery.SortMode, people []discovery.Entity) []discovery.Entity {
	return searchDefault(discovery.KindPerson, query, values, mode, people)
}

// SearchWorks searches creative works. Filters: type, status, year, genres, minRating.
func SearchWorks(query string, values discovery.FilterValues, mode discovery.SortMode, works []discovery.Entity) []discovery.Entity {
	return searchDefault(discovery.KindWork, query, values, mode, works)
}

// SearchPosts searches posts. Filters: tags, spoilers, minReactions, since.
func SearchPosts(query string, values discovery.FilterValues, mode discovery.SortMode, posts []discovery.Entity) []discovery.Entity {
	return searchDefault(discovery.KindPost, query, values, mode, posts)
}

// SearchGroups searches groups. Filters: region, official, minMembers, tags.
func SearchGroups(query string, values discovery.FilterValues, mode discovery.SortMode, groups []discovery.Entity) []discovery.Entity {
	return searchDefault(discovery.KindGroup, query, values, mode, groups)
}

// SearchOrganizations searches organizations. Filters: region, category, official, minMembers.
func SearchOrganizations(query string, values discovery.FilterValues, mode discovery.SortMode, orgs []discovery.Entity) []discovery.Entity {
	return searchDefault(discovery.KindOrganization, query, values, mode, orgs)
}
