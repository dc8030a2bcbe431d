package leaderboard

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/letmevibethatforyou/discovery"
)

// epoch anchors generated dates; boards never read the wall clock.
var epoch = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)

var (
	adjectives = []string{"Crimson", "Silent", "Endless", "Hidden", "Golden", "Broken", "Azure", "Last", "Iron", "Wandering", "Paper", "Midnight"}
	nouns      = []string{"Tide", "Garden", "Blade", "Signal", "Harbor", "Orbit", "Lantern", "Crown", "Archive", "River", "Engine", "Choir"}
	firstNames = []string{"Aiko", "Marco", "Lena", "Kenji", "Sofia", "Ravi", "Mina", "Tomas", "Yuna", "Elias", "Noor", "Hana"}
	lastNames  = []string{"Sato", "Rossi", "Berg", "Okafor", "Silva", "Tanaka", "Novak", "Kim", "Haddad", "Moreau", "Ito", "Lund"}

	workTypes   = []string{"manga", "anime", "novel", "film", "album", "game"}
	statuses    = []string{"ongoing", "completed", "hiatus"}
	genres      = []string{"action", "romance", "fantasy", "horror", "comedy", "drama", "mystery", "sci-fi", "slice of life", "sports"}
	roles       = []string{"artist", "writer", "director", "musician", "voice actor", "streamer"}
	postTags    = []string{"review", "fanart", "theory", "news", "meme", "discussion", "cosplay", "finale"}
	groupTags   = []string{"fan club", "study", "watch party", "collectors", "creators", "translation"}
	regions     = []string{"global", "na", "eu", "apac", "latam"}
	orgCategory = []string{"studio", "publisher", "label", "network", "developer"}
)

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

// pickN returns n distinct elements in generator order.
func pickN(rng *rand.Rand, from []string, n int) []string {
	out := make([]string, 0, n)
	for _, i := range rng.Perm(len(from))[:n] {
		out = append(out, from[i])
	}
	return out
}

func newItem(rng *rand.Rand, kind discovery.Kind, i int) RankItem {
	item := RankItem{
		ID:    fmt.Sprintf("%s-%02d", kind, i+1),
		Kind:  kind,
		Attrs: make(map[string]any),
	}

	switch kind {
	case discovery.KindPerson:
		item.Title = pick(rng, firstNames) + " " + pick(rng, lastNames)
		role := pick(rng, roles)
		item.Subtitle = role
		item.Attrs["role"] = role
		item.Attrs["followers"] = int64(rng.IntN(2_000_000))
		item.Attrs["verified"] = rng.IntN(3) == 0

	case discovery.KindPost:
		item.Tags = pickN(rng, postTags, 1+rng.IntN(3))
		item.Title = fmt.Sprintf("%s about %s %s", item.Tags[0], pick(rng, adjectives), pick(rng, nouns))
		item.Subtitle = "@" + pick(rng, firstNames)
		item.Attrs["spoiler"] = rng.IntN(4) == 0
		item.Attrs["reactions"] = int64(rng.IntN(50_000))
		item.Attrs["created"] = epoch.AddDate(0, 0, -rng.IntN(730))

	case discovery.KindGroup:
		item.Tags = pickN(rng, groupTags, 1+rng.IntN(2))
		item.Title = fmt.Sprintf("%s %s %s", pick(rng, adjectives), pick(rng, nouns), "Society")
		region := pick(rng, regions)
		item.Subtitle = region
		item.Attrs["region"] = region
		item.Attrs["official"] = rng.IntN(5) == 0
		item.Attrs["members"] = int64(rng.IntN(500_000))
		item.Attrs["activity"] = int64(rng.IntN(10_000))

	case discovery.KindOrganization:
		category := pick(rng, orgCategory)
		item.Title = fmt.Sprintf("%s %s", pick(rng, nouns), category)
		region := pick(rng, regions)
		item.Subtitle = category + " · " + region
		item.Attrs["region"] = region
		item.Attrs["category"] = category
		item.Attrs["official"] = rng.IntN(2) == 0
		item.Attrs["members"] = int64(rng.IntN(20_000))

	default:
		item.Title = pick(rng, adjectives) + " " + pick(rng, nouns)
		workType := pick(rng, workTypes)
		year := 1990 + rng.IntN(36)
		item.Subtitle = fmt.Sprintf("%s · %d", workType, year)
		item.Tags = pickN(rng, genres, 1+rng.IntN(3))
		item.Attrs["type"] = workType
		item.Attrs["status"] = pick(rng, statuses)
		item.Attrs["year"] = year
		item.Attrs["genres"] = item.Tags
		item.Attrs["rating"] = math.Round((2.5+rng.Float64()*2.5)*10) / 10
		item.Attrs["favorites"] = int64(rng.IntN(1_000_000))
	}
	return item
}
