package markdown

import (
	"fmt"
	"regexp"
)

// Attachment markers survive the line-oriented compile pass as opaque tokens;
// Compile resolves them against the uploaded URL map.
const markerFormat = "{{IMAGE_PLACEHOLDER:%s}}"

var markerPattern = regexp.MustCompile(`\{\{IMAGE_PLACEHOLDER:([^}]+)\}\}`)

// sandboxLink matches the two attachment shapes report generators emit:
// ![alt](sandbox:<key>) and [text](sandbox:<key>).
var sandboxLink = regexp.MustCompile(`(!?)\[([^\]]*)\]\(sandbox:([^)]+)\)`)

// Attachment is one local resource referenced from markdown source.
type Attachment struct {
	Key   string // opaque resource key, typically a local file path
	Label string // alt or link text from the source
}

// Marker returns the internal token ExtractAttachments substitutes for key.
func Marker(key string) string {
	return fmt.Sprintf(markerFormat, key)
}

// ExtractAttachments rewrites image references ![alt](sandbox:key) and file
// links [text](sandbox:key) to internal markers, returning the rewritten
// source and the referenced attachments in first-seen order with one entry
// per distinct key. Every occurrence is rewritten. A bare link with empty
// text is left untouched.
func ExtractAttachments(source string) (string, []Attachment) {
	var atts []Attachment
	seen := make(map[string]bool)
	rewritten := sandboxLink.ReplaceAllStringFunc(source, func(m string) string {
		sub := sandboxLink.FindStringSubmatch(m)
		bang, label, key := sub[1], sub[2], sub[3]
		if bang == "" && label == "" {
			return m
		}
		if !seen[key] {
			seen[key] = true
			atts = append(atts, Attachment{Key: key, Label: label})
		}
		return Marker(key)
	})
	return rewritten, atts
}

// segment is either a run of markdown text or one attachment key.
type segment struct {
	text string
	key  string
}

// splitMarkers cuts source into alternating text segments and attachment
// keys, preserving order. Empty source yields one empty text segment.
func splitMarkers(source string) []segment {
	var segs []segment
	last := 0
	for _, m := range markerPattern.FindAllStringSubmatchIndex(source, -1) {
		if m[0] > last {
			segs = append(segs, segment{text: source[last:m[0]]})
		}
		segs = append(segs, segment{key: source[m[2]:m[3]]})
		last = m[1]
	}
	if last < len(source) || len(segs) == 0 {
		segs = append(segs, segment{text: source[last:]})
	}
	return segs
}
