package district

import "strings"

// Segment is one run of a suggestion's display text.
type Segment struct {
	Text      string `json:"text"`
	Highlight bool   `json:"highlight,omitempty"`
}

// Match is a directory entry whose name contains the query, split into
// plain and highlighted segments.
type Match struct {
	Name     string    `json:"name"`
	Segments []Segment `json:"segments"`
}

// Suggest returns the entries whose lowercase name contains the trimmed,
// lowercase query, in directory order. An empty or whitespace-only query
// yields no matches.
func (d *Directory) Suggest(query string) []Match {
	q := foldRunes(strings.TrimSpace(query))
	if len(q) == 0 || d == nil {
		return nil
	}

	var matches []Match
	for _, e := range d.entries {
		if indexRunes(foldRunes(e.Name), q, 0) < 0 {
			continue
		}
		matches = append(matches, Match{
			Name:     e.Name,
			Segments: highlight(e.Name, q),
		})
	}
	return matches
}

// Highlight splits name into segments with every non-overlapping,
// case-insensitive occurrence of query marked. Text keeps name's casing.
func Highlight(name, query string) []Segment {
	return highlight(name, foldRunes(strings.TrimSpace(query)))
}

func highlight(name string, q []rune) []Segment {
	orig := []rune(name)
	if len(q) == 0 {
		return []Segment{{Text: name}}
	}
	folded := foldRunes(name)

	var segs []Segment
	pos := 0
	for {
		i := indexRunes(folded, q, pos)
		if i < 0 {
			break
		}
		if i > pos {
			segs = append(segs, Segment{Text: string(orig[pos:i])})
		}
		segs = append(segs, Segment{Text: string(orig[i : i+len(q)]), Highlight: true})
		pos = i + len(q)
	}
	if pos < len(orig) {
		segs = append(segs, Segment{Text: string(orig[pos:])})
	}
	return segs
}

// Plain joins segments back into the display text.
func Plain(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		b.WriteString(s.Text)
	}
	return b.String()
}
