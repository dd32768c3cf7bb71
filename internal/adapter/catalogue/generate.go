package catalogue

import (
	"bytes"
	"encoding/json"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/vertextoedge/label-portal/internal/domain"
)

const generatedHeader = `// Generated by label-portal. Edits made here are overwritten by the admin panel.

`

const artistInterface = `export interface Artist {
  id: number;
  name: string;
  act: string;
  description: string;
  styles: string[];
  social: Record<string, string>;
  country: string;
  image: string;
  videos?: string[];
  slug: string;
}

`

const artistHelpers = `
export function getArtistBySlug(slug: string): Artist | undefined {
  return artists.find((artist) => artist.slug === slug);
}

export function getArtistById(id: number): Artist | undefined {
  return artists.find((artist) => artist.id === id);
}
`

const releaseInterface = `export interface Track {
  title: string;
  duration?: string;
}

export interface Release {
  id: number;
  title: string;
  artist: string;
  type: string;
  releaseDate: string;
  catalogNumber?: string;
  cover: string;
  externalIds: Record<string, string>;
  description?: string;
  tracks?: Track[];
}

`

const releaseHelpers = `
export function getReleaseById(id: number): Release | undefined {
  return releases.find((release) => release.id === id);
}

export function getReleasesByArtist(artist: string): Release[] {
  return releases.filter((release) => release.artist === artist);
}

export function getLatestReleases(count: number): Release[] {
  return [...releases]
    .sort((a, b) => b.releaseDate.localeCompare(a.releaseDate))
    .slice(0, count);
}
`

// literalWriter emits JavaScript object literals with two-space indentation
type literalWriter struct {
	buf    bytes.Buffer
	indent int
}

func (w *literalWriter) line(s string) {
	w.buf.WriteString(strings.Repeat("  ", w.indent))
	w.buf.WriteString(s)
	w.buf.WriteByte('\n')
}

func (w *literalWriter) field(key, value string) {
	w.line(propertyKey(key) + ": " + value + ",")
}

func (w *literalWriter) stringMap(key string, m map[string]string) {
	if len(m) == 0 {
		w.field(key, "{}")
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	w.line(propertyKey(key) + ": {")
	w.indent++
	for _, k := range keys {
		w.field(k, quote(m[k]))
	}
	w.indent--
	w.line("},")
}

// quote renders s as a double-quoted string literal. Quotes, backslashes,
// newlines and line separators are escaped.
func quote(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

func quoteList(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = quote(s)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

func propertyKey(k string) string {
	if identifierPattern.MatchString(k) {
		return k
	}
	return quote(k)
}

func generateArtists(artists []domain.Artist) []byte {
	w := &literalWriter{}
	w.buf.WriteString(generatedHeader)
	w.buf.WriteString(artistInterface)
	w.line("export const artists: Artist[] = [")
	w.indent++
	for _, a := range artists {
		w.line("{")
		w.indent++
		w.field("id", strconv.Itoa(a.ID))
		w.field("name", quote(a.Name))
		w.field("act", quote(a.Act))
		w.field("description", quote(a.Description))
		w.field("styles", quoteList(a.Styles))
		w.stringMap("social", a.Social)
		w.field("country", quote(a.Country))
		w.field("image", quote(a.Image))
		if len(a.Videos) > 0 {
			w.field("videos", quoteList(a.Videos))
		}
		w.field("slug", quote(a.Slug))
		w.indent--
		w.line("},")
	}
	w.indent--
	w.line("];")
	w.buf.WriteString(artistHelpers)
	return w.buf.Bytes()
}

func generateReleases(releases []domain.Release) []byte {
	w := &literalWriter{}
	w.buf.WriteString(generatedHeader)
	w.buf.WriteString(releaseInterface)
	w.line("export const releases: Release[] = [")
	w.indent++
	for _, r := range releases {
		w.line("{")
		w.indent++
		w.field("id", strconv.Itoa(r.ID))
		w.field("title", quote(r.Title))
		w.field("artist", quote(r.Artist))
		w.field("type", quote(r.Type))
		w.field("releaseDate", quote(r.ReleaseDate))
		if r.CatalogNumber != "" {
			w.field("catalogNumber", quote(r.CatalogNumber))
		}
		w.field("cover", quote(r.Cover))
		w.stringMap("externalIds", r.ExternalIDs)
		if r.Description != "" {
			w.field("description", quote(r.Description))
		}
		if len(r.Tracks) > 0 {
			w.line("tracks: [")
			w.indent++
			for _, t := range r.Tracks {
				entry := "{ title: " + quote(t.Title)
				if t.Duration != "" {
					entry += ", duration: " + quote(t.Duration)
				}
				w.line(entry + " },")
			}
			w.indent--
			w.line("],")
		}
		w.indent--
		w.line("},")
	}
	w.indent--
	w.line("];")
	w.buf.WriteString(releaseHelpers)
	return w.buf.Bytes()
}
