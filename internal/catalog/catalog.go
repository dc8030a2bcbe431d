// Package catalog generates a deterministic synthetic entity catalog for the
// CLIs, the DynamoDB generator and tests.
package catalog

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/letmevibethatforyou/discovery"
)

// DefaultSeed is used when the caller does not pick one.
const DefaultSeed uint64 = 20240601

var epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	workTitles = []string{
		"One Piece", "Attack on Titan", "Someone Like Me", "Blue Lock", "Frieren", "Vinland Saga",
		"Mushishi", "Berserk", "Chainsaw Man", "Dandadan", "Monster", "Pluto", "Planetes",
		"Spy Family", "Mob Psycho", "Naruto", "Boruto", "Bleach", "Dorohedoro", "Akira",
	}
	creators   = []string{"Eiichiro Oda", "Hajime Isayama", "Kentaro Miura", "Naoki Urasawa", "Yuki Tabata", "Rumiko Takahashi", "Makoto Yukimura"}
	firstNames = []string{"Aiko", "Marco", "Lena", "Kenji", "Sofia", "Ravi", "Mina", "Tomas", "Yuna", "Elias", "Noor", "Hana", "José", "Zoë"}
	lastNames  = []string{"Sato", "Rossi", "Berg", "Okafor", "Silva", "Tanaka", "Novak", "Kim", "Haddad", "Moreau", "Ito", "Lund"}
	roles      = []string{"artist", "writer", "director", "musician", "voice actor", "creator"}
	workTypes  = []string{"manga", "anime", "novel", "film"}
	statuses   = []string{"ongoing", "completed", "hiatus"}
	genres     = []string{"action", "romance", "fantasy", "horror", "comedy", "drama", "mystery", "sci-fi", "sports"}
	postTags   = []string{"review", "fanart", "theory", "news", "meme", "discussion", "finale"}
	postLines  = []string{"thoughts on the %s finale", "%s rewatch diary", "why %s still matters", "ranking every arc of %s", "%s fan art dump"}
	groupKinds = []string{"Fan Club", "Watch Party", "Book Circle", "Creators Guild", "Collectors"}
	groupTags  = []string{"fan club", "study", "watch party", "collectors", "creators"}
	regions    = []string{"global", "na", "eu", "apac", "latam"}
	orgNames   = []string{"Studio Lantern", "Orbit Pictures", "Paper Crane Press", "North Harbor Records", "Iron Choir Games", "Azure Works"}
	orgKinds   = []string{"studio", "publisher", "label", "developer"}
)

// Trending returns a fixed list of popular search terms.
func Trending() []string {
	return []string{"one piece", "frieren", "creator program", "attack on titan", "chainsaw man", "blue lock"}
}

// Generate returns perKind entities of every kind, indexed and ready to
// search. The same seed always yields the same catalog.
func Generate(seed uint64, perKind int) []discovery.Entity {
	rng := rand.New(rand.NewPCG(seed, seed>>1|1))
	out := make([]discovery.Entity, 0, perKind*len(discovery.Kinds))
	for i := range perKind {
		out = append(out,
			discovery.Index(person(rng, i)),
			discovery.Index(work(rng, i)),
			discovery.Index(post(rng, i)),
			discovery.Index(group(rng, i)),
			discovery.Index(organization(rng, i)),
		)
	}
	return out
}

// Static returns Generate's output grouped by kind.
func Static(seed uint64, perKind int) discovery.StaticCatalog {
	c := make(discovery.StaticCatalog, len(discovery.Kinds))
	for _, e := range Generate(seed, perKind) {
		c[e.EntityKind()] = append(c[e.EntityKind()], e)
	}
	return c
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

func pickN(rng *rand.Rand, from []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(from))[:n] {
		out = append(out, from[i])
	}
	return out
}

func meta(rng *rand.Rand, kind discovery.Kind, i int) discovery.Meta {
	return discovery.Meta{
		ID:      fmt.Sprintf("%s-%04d", kind, i+1),
		Updated: epoch.Add(-time.Duration(rng.IntN(365*24)) * time.Hour),
	}
}

func person(rng *rand.Rand, i int) *discovery.Person {
	first, last := pick(rng, firstNames), pick(rng, lastNames)
	role := pick(rng, roles)
	return &discovery.Person{
		Meta:      meta(rng, discovery.KindPerson, i),
		Name:      first + " " + last,
		Handle:    fmt.Sprintf("@%s%d", first, rng.IntN(100)),
		Role:      role,
		Bio:       fmt.Sprintf("%s working on %s", role, pick(rng, workTitles)),
		Followers: int64(rng.IntN(2_000_000)),
		Verified:  rng.IntN(4) == 0,
	}
}

func work(rng *rand.Rand, i int) *discovery.Work {
	title := workTitles[i%len(workTitles)]
	if i >= len(workTitles) {
		title = fmt.Sprintf("%s %d", title, i/len(workTitles)+1)
	}
	return &discovery.Work{
		Meta:      meta(rng, discovery.KindWork, i),
		Title:     title,
		Creator:   pick(rng, creators),
		WorkType:  pick(rng, workTypes),
		Year:      1985 + rng.IntN(40),
		Status:    pick(rng, statuses),
		Genres:    pickN(rng, genres, 1+rng.IntN(3)),
		Rating:    math.Round((2.5+rng.Float64()*2.5)*10) / 10,
		Favorites: int64(rng.IntN(1_000_000)),
	}
}

func post(rng *rand.Rand, i int) *discovery.Post {
	m := meta(rng, discovery.KindPost, i)
	return &discovery.Post{
		Meta:      m,
		Author:    "@" + pick(rng, firstNames),
		Body:      fmt.Sprintf(pick(rng, postLines), pick(rng, workTitles)),
		Tags:      pickN(rng, postTags, 1+rng.IntN(2)),
		Spoiler:   rng.IntN(3) == 0,
		Reactions: int64(rng.IntN(50_000)),
		Created:   m.Updated,
	}
}

func group(rng *rand.Rand, i int) *discovery.Group {
	return &discovery.Group{
		Meta:        meta(rng, discovery.KindGroup, i),
		Name:        pick(rng, workTitles) + " " + pick(rng, groupKinds),
		Description: "A community for " + pick(rng, genres) + " fans",
		Tags:        pickN(rng, groupTags, 1+rng.IntN(2)),
		Members:     int64(rng.IntN(500_000)),
		Activity:    int64(rng.IntN(10_000)),
		Official:    rng.IntN(5) == 0,
		Region:      pick(rng, regions),
	}
}

func organization(rng *rand.Rand, i int) *discovery.Organization {
	name := orgNames[i%len(orgNames)]
	if i >= len(orgNames) {
		name = fmt.Sprintf("%s %d", name, i/len(orgNames)+1)
	}
	return &discovery.Organization{
		Meta:        meta(rng, discovery.KindOrganization, i),
		Name:        name,
		Description: "Independent " + pick(rng, orgKinds),
		Category:    pick(rng, orgKinds),
		Members:     int64(rng.IntN(20_000)),
		Official:    rng.IntN(2) == 0,
		Region:      pick(rng, regions),
	}
}
