package inventory

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"
)

type platformsKind int

const (
	platformsOther platformsKind = iota
	platformsList
	platformsDelimited
)

// PlatformsInput is the loosely-typed platforms field of a request: either a
// JSON array or a single comma-separated string. Anything else normalizes to
// no platforms.
type PlatformsInput struct {
	kind      platformsKind
	list      []any
	delimited string
}

func ParsePlatforms(raw any) PlatformsInput {
	switch v := raw.(type) {
	case []any:
		return PlatformsInput{kind: platformsList, list: v}
	case []string:
		list := make([]any, len(v))
		for i, s := range v {
			list[i] = s
		}
		return PlatformsInput{kind: platformsList, list: list}
	case string:
		return PlatformsInput{kind: platformsDelimited, delimited: v}
	default:
		return PlatformsInput{kind: platformsOther}
	}
}

// Normalize returns trimmed, non-empty platform names in input order.
func (in PlatformsInput) Normalize() []string {
	out := []string{}
	switch in.kind {
	case platformsList:
		for _, item := range in.list {
			out = appendPlatform(out, stringify(item))
		}
	case platformsDelimited:
		for _, part := range strings.Split(in.delimited, ",") {
			out = appendPlatform(out, part)
		}
	}
	return out
}

func NormalizePlatforms(raw any) []string {
	return ParsePlatforms(raw).Normalize()
}

func appendPlatform(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

// stringify renders a list element the way a browser would print it: null is
// "null", nested lists join their elements with "," and objects collapse to
// "[object Object]".
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			if e != nil {
				parts[i] = stringify(e)
			}
		}
		return strings.Join(parts, ",")
	case map[string]any:
		return "[object Object]"
	}

	s, err := cast.ToStringE(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return s
}

// NormalizeStock converts a loosely-typed stock value to a count. Values that
// are not finite numbers, or do not fit an int64, become 0. Fractions are
// truncated toward zero.
func NormalizeStock(raw any) int64 {
	if s, ok := raw.(string); ok {
		raw = strings.TrimSpace(s)
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

// ParseNewGame extracts a creation request from a decoded JSON object. Title
// validation happens in the service.
func ParseNewGame(body map[string]any) NewGame {
	title, _ := body["title"].(string)
	return NewGame{
		Title:     title,
		Stock:     NormalizeStock(body["stock"]),
		Platforms: NormalizePlatforms(body["platforms"]),
	}
}

// ParsePatch only sets fields whose keys are present. A present platforms key
// with an unusable value (e.g. null) clears the platforms.
func ParsePatch(body map[string]any) Patch {
	var p Patch
	if raw, ok := body["stock"]; ok {
		stock := NormalizeStock(raw)
		p.Stock = &stock
	}
	if raw, ok := body["platforms"]; ok {
		platforms := NormalizePlatforms(raw)
		p.Platforms = &platforms
	}
	return p
}
