package suite

import (
	"regexp"
	"strings"

	"github.com/agusespa/promptgauge/internal/types"
)

// Metadata is the optional key-value block embedded at the top of a prompt:
//
//	<!-- PROMPT_METADATA
//	platform: web
//	focus: security,accessibility
//	mode: review
//	-->
type Metadata struct {
	Platform string
	Focus    []string
	Mode     string
}

var metadataBlock = regexp.MustCompile(`(?s)<!-- PROMPT_METADATA\n(.*?)\n-->`)

// ParseMetadata extracts the metadata block from a prompt. A prompt without
// a block yields the zero Metadata, which filters nothing.
func ParseMetadata(prompt string) Metadata {
	var meta Metadata

	match := metadataBlock.FindStringSubmatch(prompt)
	if match == nil {
		return meta
	}

	for _, line := range strings.Split(strings.TrimSpace(match[1]), "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		switch key {
		case "platform":
			meta.Platform = value
		case "focus":
			meta.Focus = splitList(value)
		case "mode":
			meta.Mode = value
		}
	}
	return meta
}

// Filter narrows a suite to the cases relevant to a prompt. Platform matches
// cases tagged with that platform or "all"; Focus matches by category. Empty
// fields match everything.
type Filter struct {
	Platform types.Platform
	Focus    []string
}

// NewFilter combines prompt metadata with explicit overrides; overrides
// always win over metadata-derived values.
func NewFilter(meta Metadata, platformOverride string, focusOverride []string) Filter {
	f := Filter{
		Platform: types.Platform(strings.ToLower(strings.TrimSpace(meta.Platform))),
		Focus:    meta.Focus,
	}
	if platformOverride != "" {
		f.Platform = types.Platform(strings.ToLower(strings.TrimSpace(platformOverride)))
	}
	if len(focusOverride) > 0 {
		f.Focus = splitList(strings.Join(focusOverride, ","))
	}
	return f
}

// Apply returns the cases matching the filter, preserving load order.
func (f Filter) Apply(cases []types.TestCase) []types.TestCase {
	focus := make(map[string]bool, len(f.Focus))
	for _, area := range f.Focus {
		focus[area] = true
	}

	var matched []types.TestCase
	for _, tc := range cases {
		if !tc.Platform.Matches(f.Platform) {
			continue
		}
		if len(focus) > 0 && !focus[tc.Category] {
			continue
		}
		matched = append(matched, tc)
	}
	return matched
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.ToLower(strings.TrimSpace(item))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}
