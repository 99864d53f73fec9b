// Package tokens expands {{token}} placeholders in stored widget content with
// live store values, and rewrites literal store values back into token form
// before content is persisted.
package tokens

import (
	"html"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"sellusgenie-backend/internal/models"
)

const contactInfoSeparator = " | "

var tokenPattern = regexp.MustCompile(`\{\{\s*([A-Za-z0-9_]+)\s*\}\}`)

type resolver func(ctx models.StoreContext) string

var table = map[string]resolver{
	"store_name":        func(c models.StoreContext) string { return c.StoreName },
	"store_description": func(c models.StoreContext) string { return c.StoreDescription },
	"store_email":       func(c models.StoreContext) string { return c.ContactEmail },
	"contact_email":     func(c models.StoreContext) string { return c.ContactEmail },
	"store_phone":       func(c models.StoreContext) string { return c.ContactPhone },
	"contact_phone":     func(c models.StoreContext) string { return c.ContactPhone },
	"store_address":     func(c models.StoreContext) string { return c.ContactAddress },
	"contact_address":   func(c models.StoreContext) string { return c.ContactAddress },
	"contact_info":      contactInfo,
	"current_year":      currentYear,
	"logo_url":          func(c models.StoreContext) string { return c.LogoURL },
}

// literalFields are the store-derived values that must only ever be persisted
// as tokens. The token chosen is the canonical name for the field.
var literalFields = []struct {
	token string
	value func(models.StoreContext) string
}{
	{"store_name", func(c models.StoreContext) string { return c.StoreName }},
	{"store_description", func(c models.StoreContext) string { return c.StoreDescription }},
	{"contact_email", func(c models.StoreContext) string { return c.ContactEmail }},
	{"contact_phone", func(c models.StoreContext) string { return c.ContactPhone }},
	{"contact_address", func(c models.StoreContext) string { return c.ContactAddress }},
}

func contactInfo(c models.StoreContext) string {
	parts := make([]string, 0, 3)
	for _, value := range []string{c.ContactEmail, c.ContactPhone, c.ContactAddress} {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return strings.Join(parts, contactInfoSeparator)
}

func currentYear(c models.StoreContext) string {
	if c.CurrentYear <= 0 {
		return ""
	}
	return strconv.Itoa(c.CurrentYear)
}

// Known reports whether name is a recognised token.
func Known(name string) bool {
	_, ok := table[strings.ToLower(name)]
	return ok
}

// Names returns the recognised token names in sorted order.
func Names() []string {
	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Substitute replaces recognised tokens with values from ctx. Unknown tokens
// are left verbatim. Values are inserted as-is without escaping.
func Substitute(text string, ctx models.StoreContext) string {
	if !strings.Contains(text, "{{") {
		return text
	}
	return tokenPattern.ReplaceAllStringFunc(text, func(match string) string {
		name := tokenPattern.FindStringSubmatch(match)[1]
		resolve, ok := table[strings.ToLower(name)]
		if !ok {
			return match
		}
		return resolve(ctx)
	})
}

// Extract returns the token names referenced by text in order of appearance.
func Extract(text string) []string {
	matches := tokenPattern.FindAllStringSubmatch(text, -1)
	names := make([]string, 0, len(matches))
	for _, match := range matches {
		names = append(names, strings.ToLower(match[1]))
	}
	return names
}

// Unknown returns the distinct token names in text that Substitute would leave verbatim.
func Unknown(text string) []string {
	seen := make(map[string]struct{})
	var unknown []string
	for _, name := range Extract(text) {
		if Known(name) {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		unknown = append(unknown, name)
	}
	return unknown
}

type literal struct {
	token      string
	pattern    *regexp.Regexp
	length     int
	singleWord bool
}

// Tokenize rewrites literal occurrences of store-derived values in text into
// their token form. Text already inside a token is left untouched. Values are
// matched case-sensitively on word boundaries, longest first, both raw and in
// their HTML-escaped form.
func Tokenize(text string, ctx models.StoreContext) string {
	literals := compileLiterals(ctx)
	if len(literals) == 0 || text == "" {
		return text
	}

	spans := tokenPattern.FindAllStringIndex(text, -1)
	var sb strings.Builder
	sb.Grow(len(text))

	last := 0
	for _, span := range spans {
		sb.WriteString(tokenizeSegment(text[last:span[0]], literals))
		sb.WriteString(text[span[0]:span[1]])
		last = span[1]
	}
	sb.WriteString(tokenizeSegment(text[last:], literals))

	return sb.String()
}

// ContainsLiteral reports whether text holds any store-derived value outside token form.
func ContainsLiteral(text string, ctx models.StoreContext) bool {
	return Tokenize(text, ctx) != text
}

// SingleWordMatches returns the tokens whose store value is a single word and
// occurs literally in text. Such values also match ordinary words (a store
// named "Shop" matches "Shop now"), so callers surface them as warnings.
func SingleWordMatches(text string, ctx models.StoreContext) []string {
	var names []string
	seen := make(map[string]struct{})
	for _, lit := range compileLiterals(ctx) {
		if !lit.singleWord {
			continue
		}
		if _, ok := seen[lit.token]; ok {
			continue
		}
		for _, segment := range tokenPattern.Split(text, -1) {
			if lit.pattern.MatchString(segment) {
				seen[lit.token] = struct{}{}
				names = append(names, strings.Trim(lit.token, "{}"))
				break
			}
		}
	}
	return names
}

func compileLiterals(ctx models.StoreContext) []literal {
	literals := make([]literal, 0, len(literalFields)*2)
	seen := make(map[string]struct{})
	for _, field := range literalFields {
		value := strings.TrimSpace(field.value(ctx))
		if value == "" {
			continue
		}
		single := len(strings.Fields(value)) == 1
		for _, form := range []string{value, html.EscapeString(value)} {
			if _, dup := seen[form]; dup {
				continue
			}
			seen[form] = struct{}{}
			literals = append(literals, literal{
				token:      "{{" + field.token + "}}",
				pattern:    literalPattern(form),
				length:     len(form),
				singleWord: single,
			})
		}
	}
	sort.SliceStable(literals, func(i, j int) bool {
		return literals[i].length > literals[j].length
	})
	return literals
}

func literalPattern(value string) *regexp.Regexp {
	expr := regexp.QuoteMeta(value)
	if isWordByte(value[0]) {
		expr = `\b` + expr
	}
	if isWordByte(value[len(value)-1]) {
		expr += `\b`
	}
	return regexp.MustCompile(expr)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// tokenizeSegment replaces literals in a token-free segment. Each pass splits
// around inserted tokens so a shorter literal never rewrites the inside of a
// token produced by a longer one.
func tokenizeSegment(segment string, literals []literal) string {
	if segment == "" || len(literals) == 0 {
		return segment
	}

	current, rest := literals[0], literals[1:]
	locs := current.pattern.FindAllStringIndex(segment, -1)
	if len(locs) == 0 {
		return tokenizeSegment(segment, rest)
	}

	var sb strings.Builder
	last := 0
	for _, loc := range locs {
		sb.WriteString(tokenizeSegment(segment[last:loc[0]], rest))
		sb.WriteString(current.token)
		last = loc[1]
	}
	sb.WriteString(tokenizeSegment(segment[last:], rest))
	return sb.String()
}
