package inventory

import (
	"errors"
	"slices"
	"strings"
)

var (
	ErrNotFound      = errors.New("game not found")
	ErrTitleRequired = errors.New("title is required")
)

type Game struct {
	ID        int64    `json:"id"`
	Title     string   `json:"title"`
	Platforms []string `json:"platforms"`
	Stock     int64    `json:"stock"`
}

// Document is the unit of persistence: the whole catalogue, in insertion order.
type Document struct {
	Games []Game `json:"games"`
}

func emptyDocument() Document {
	return Document{Games: []Game{}}
}

// NewGame is a creation request after normalization.
type NewGame struct {
	Title     string
	Stock     int64
	Platforms []string
}

// Patch carries the fields an update replaces; nil means "leave as is".
type Patch struct {
	Stock     *int64
	Platforms *[]string
}

func (g Game) clone() Game {
	g.Platforms = slices.Clone(g.Platforms)
	if g.Platforms == nil {
		g.Platforms = []string{}
	}
	return g
}

func (g Game) onPlatform(platform string) bool {
	for _, p := range g.Platforms {
		if strings.EqualFold(p, platform) {
			return true
		}
	}
	return false
}

func (d Document) clone() Document {
	out := Document{Games: make([]Game, len(d.Games))}
	for i, g := range d.Games {
		out.Games[i] = g.clone()
	}
	return out
}

func (d Document) maxID() int64 {
	var hi int64
	for _, g := range d.Games {
		hi = max(hi, g.ID)
	}
	return hi
}

func (d Document) indexOf(id int64) int {
	return slices.IndexFunc(d.Games, func(g Game) bool { return g.ID == id })
}

func (d Document) List() []Game {
	out := make([]Game, len(d.Games))
	for i, g := range d.Games {
		out[i] = g.clone()
	}
	return out
}

func (d Document) Find(id int64) (Game, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return Game{}, false
	}
	return d.Games[i].clone(), true
}

// ByPlatform matches case-insensitively; a game matches if any of its
// platforms equals the target.
func (d Document) ByPlatform(platform string) []Game {
	out := []Game{}
	for _, g := range d.Games {
		if g.onPlatform(platform) {
			out = append(out, g.clone())
		}
	}
	return out
}

func (d *Document) Insert(g Game) Game {
	g = g.clone()
	d.Games = append(d.Games, g)
	return g.clone()
}

func (d *Document) Update(id int64, p Patch) (Game, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return Game{}, false
	}

	g := &d.Games[i]
	if p.Stock != nil {
		g.Stock = *p.Stock
	}
	if p.Platforms != nil {
		g.Platforms = slices.Clone(*p.Platforms)
		if g.Platforms == nil {
			g.Platforms = []string{}
		}
	}
	return g.clone(), true
}

func (d *Document) Delete(id int64) bool {
	before := len(d.Games)
	d.Games = slices.DeleteFunc(d.Games, func(g Game) bool { return g.ID == id })
	return len(d.Games) != before
}
