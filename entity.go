// Package discovery holds the data model shared by the search, suggestion,
// history and leaderboard packages: entity kinds, filters, results and the
// data source contracts.
package discovery

import (
	"strconv"
	"time"

	"github.com/letmevibethatforyou/discovery/textnorm"
)

// Fielder exposes named structured attributes to filter expressions.
type Fielder interface {
	// Field returns the attribute called name and whether it exists.
	Field(name string) (any, bool)
}

// Entity is any searchable record. Implementations are immutable once
// indexed; the engine only filters, sorts and slices them.
type Entity interface {
	Fielder

	// EntityID returns the opaque identifier.
	EntityID() string
	// EntityKind returns the kind of the entity.
	EntityKind() Kind
	// Label returns the user-facing title, also used as a suggestion candidate.
	Label() string
	// SearchText returns the normalized searchable text computed at ingestion.
	SearchText() string
	// Popularity returns the kind-specific popularity metric used in sorting.
	Popularity() int64
	// UpdatedAt returns the recency tie-break timestamp.
	UpdatedAt() time.Time
}

// Meta carries the fields every entity has.
type Meta struct {
	ID      string    `json:"id"`
	Updated time.Time `json:"updated_at"`
	// Text is the normalized searchable text. It is derived by Index and
	// never serialized.
	Text string `json:"-"`
}

// EntityID implements Entity.
func (m Meta) EntityID() string { return m.ID }

// SearchText implements Entity.
func (m Meta) SearchText() string { return m.Text }

// UpdatedAt implements Entity.
func (m Meta) UpdatedAt() time.Time { return m.Updated }

// Person is a profile.
type Person struct {
	Meta
	Name      string `json:"name"`
	Handle    string `json:"handle"`
	Bio       string `json:"bio,omitempty"`
	Role      string `json:"role"`
	Followers int64  `json:"followers"`
	Verified  bool   `json:"verified"`
}

// Index computes the searchable text.
func (p *Person) Index() { p.Text = textnorm.Join(p.Name, p.Handle, p.Role, p.Bio) }

// EntityKind implements Entity.
func (p *Person) EntityKind() Kind { return KindPerson }

// Label implements Entity.
func (p *Person) Label() string { return p.Name }

// Popularity implements Entity.
func (p *Person) Popularity() int64 { return p.Followers }

// Field implements Fielder.
func (p *Person) Field(name string) (any, bool) {
	switch name {
	case "role":
		return p.Role, true
	case "followers":
		return p.Followers, true
	case "verified":
		return p.Verified, true
	}
	return nil, false
}

// Work is a creative work.
type Work struct {
	Meta
	Title     string   `json:"title"`
	Creator   string   `json:"creator"`
	Synopsis  string   `json:"synopsis,omitempty"`
	WorkType  string   `json:"type"`
	Year      int      `json:"year"`
	Status    string   `json:"status"`
	Genres    []string `json:"genres,omitempty"`
	Rating    float64  `json:"rating"`
	Favorites int64    `json:"favorites"`
}

// Index computes the searchable text.
func (w *Work) Index() {
	parts := []string{w.Title, w.Creator, w.WorkType}
	if w.Year > 0 {
		parts = append(parts, strconv.Itoa(w.Year))
	}
	parts = append(parts, w.Genres...)
	parts = append(parts, w.Synopsis)
	w.Text = textnorm.Join(parts...)
}

// EntityKind implements Entity.
func (w *Work) EntityKind() Kind { return KindWork }

// Label implements Entity.
func (w *Work) Label() string { return w.Title }

// Popularity implements Entity.
func (w *Work) Popularity() int64 { return w.Favorites }

// Field implements Fielder.
func (w *Work) Field(name string) (any, bool) {
	switch name {
	case "type":
		return w.WorkType, true
	case "year":
		return w.Year, true
	case "status":
		return w.Status, true
	case "genres":
		return w.Genres, true
	case "rating":
		return w.Rating, true
	case "favorites":
		return w.Favorites, true
	}
	return nil, false
}

// Post is a user post.
type Post struct {
	Meta
	Author    string    `json:"author"`
	Body      string    `json:"body"`
	Tags      []string  `json:"tags,omitempty"`
	Spoiler   bool      `json:"spoiler"`
	Reactions int64     `json:"reactions"`
	Created   time.Time `json:"created_at"`
}

// Index computes the searchable text.
func (p *Post) Index() {
	parts := append([]string{p.Body, p.Author}, p.Tags...)
	p.Text = textnorm.Join(parts...)
}

// EntityKind implements Entity.
func (p *Post) EntityKind() Kind { return KindPost }

// Popularity implements Entity.
func (p *Post) Popularity() int64 { return p.Reactions }

// Label returns the first words of the body.
func (p *Post) Label() string {
	const max = 60
	r := []rune(p.Body)
	if len(r) <= max {
		return p.Body
	}
	return string(r[:max]) + "…"
}

// Field implements Fielder.
func (p *Post) Field(name string) (any, bool) {
	switch name {
	case "tags":
		return p.Tags, true
	case "spoiler":
		return p.Spoiler, true
	case "reactions":
		return p.Reactions, true
	case "created":
		return p.Created, true
	}
	return nil, false
}

// Group is a community group.
type Group struct {
	Meta
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Members     int64    `json:"members"`
	Activity    int64    `json:"activity"`
	Official    bool     `json:"official"`
	Region      string   `json:"region"`
}

// Index computes the searchable text.
func (g *Group) Index() {
	parts := append([]string{g.Name, g.Region}, g.Tags...)
	parts = append(parts, g.Description)
	g.Text = textnorm.Join(parts...)
}

// EntityKind implements Entity.
func (g *Group) EntityKind() Kind { return KindGroup }

// Label implements Entity.
func (g *Group) Label() string { return g.Name }

// Popularity implements Entity.
func (g *Group) Popularity() int64 { return g.Members }

// Field implements Fielder.
func (g *Group) Field(name string) (any, bool) {
	switch name {
	case "region":
		return g.Region, true
	case "official":
		return g.Official, true
	case "members":
		return g.Members, true
	case "activity":
		return g.Activity, true
	case "tags":
		return g.Tags, true
	}
	return nil, false
}

// Organization is a studio, publisher, label or similar body.
type Organization struct {
	Meta
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	Members     int64  `json:"members"`
	Official    bool   `json:"official"`
	Region      string `json:"region"`
}

// Index computes the searchable text.
func (o *Organization) Index() {
	o.Text = textnorm.Join(o.Name, o.Category, o.Region, o.Description)
}

// EntityKind implements Entity.
func (o *Organization) EntityKind() Kind { return KindOrganization }

// Label implements Entity.
func (o *Organization) Label() string { return o.Name }

// Popularity implements Entity.
func (o *Organization) Popularity() int64 { return o.Members }

// Field implements Fielder.
func (o *Organization) Field(name string) (any, bool) {
	switch name {
	case "region":
		return o.Region, true
	case "category":
		return o.Category, true
	case "official":
		return o.Official, true
	case "members":
		return o.Members, true
	}
	return nil, false
}
