package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sellusgenie-backend/internal/models"
)

func testContext() models.StoreContext {
	return models.StoreContext{
		StoreID:          "store-1",
		StoreName:        "Testingmy",
		StoreDescription: "Handmade candles and soaps",
		ContactEmail:     "hello@testingmy.shop",
		ContactPhone:     "+1 555 0100",
		ContactAddress:   "1 Main St, Springfield",
		LogoURL:          "https://cdn.example.com/logo.png",
		CurrentYear:      2026,
	}
}

func TestSubstituteKnownTokens(t *testing.T) {
	ctx := testContext()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "store name", input: "Welcome to {{store_name}}", expected: "Welcome to Testingmy"},
		{name: "description", input: "{{store_description}}", expected: "Handmade candles and soaps"},
		{name: "contact aliases", input: "{{store_email}} / {{contact_email}}", expected: "hello@testingmy.shop / hello@testingmy.shop"},
		{name: "contact info", input: "{{contact_info}}", expected: "hello@testingmy.shop | +1 555 0100 | 1 Main St, Springfield"},
		{name: "year", input: "© {{current_year}} {{store_name}}", expected: "© 2026 Testingmy"},
		{name: "inner whitespace", input: "{{ store_name }}", expected: "Testingmy"},
		{name: "case insensitive", input: "{{STORE_NAME}}", expected: "Testingmy"},
		{name: "logo url", input: "{{logo_url}}", expected: "https://cdn.example.com/logo.png"},
		{name: "no tokens", input: "plain text", expected: "plain text"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Substitute(tc.input, ctx))
		})
	}
}

func TestSubstituteLeavesUnknownTokensVerbatim(t *testing.T) {
	input := "Hi {{customer_name}}, welcome to {{store_name}} {{ }}"
	assert.Equal(t, "Hi {{customer_name}}, welcome to Testingmy {{ }}", Substitute(input, testContext()))
	assert.Equal(t, []string{"customer_name"}, Unknown(input))
}

func TestSubstituteDoesNotEscape(t *testing.T) {
	ctx := testContext()
	ctx.StoreName = "Tom & Jerry <b>"
	assert.Equal(t, "<p>Tom & Jerry <b></p>", Substitute("<p>{{store_name}}</p>", ctx))
}

func TestSubstituteContactInfoSkipsEmptyParts(t *testing.T) {
	ctx := models.StoreContext{ContactPhone: "555"}
	assert.Equal(t, "555", Substitute("{{contact_info}}", ctx))
	assert.Equal(t, "", Substitute("{{current_year}}", models.StoreContext{}))
}

func TestSubstituteIsIdempotent(t *testing.T) {
	ctx := testContext()
	once := Substitute("© {{current_year}} {{store_name}}. {{contact_info}}", ctx)
	require.Empty(t, Extract(once))
	assert.Equal(t, once, Substitute(once, ctx))
}

func TestStoreRenamePropagates(t *testing.T) {
	content := "Thanks for shopping at {{store_name}}! {{store_name}} ships worldwide."
	ctx := testContext()

	before := Substitute(content, ctx)
	ctx.StoreName = "NewName"
	after := Substitute(content, ctx)

	assert.Equal(t, "Thanks for shopping at Testingmy! Testingmy ships worldwide.", before)
	assert.Equal(t, "Thanks for shopping at NewName! NewName ships worldwide.", after)
}

func TestTokenizeRewritesLiterals(t *testing.T) {
	ctx := testContext()

	cases := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "name", input: "© 2024 Testingmy. All rights reserved.", expected: "© 2024 {{store_name}}. All rights reserved."},
		{name: "email", input: "Mail hello@testingmy.shop", expected: "Mail {{contact_email}}"},
		{name: "word boundary", input: "Testingmyself is not the store", expected: "Testingmyself is not the store"},
		{name: "existing token kept", input: "{{store_name}} and Testingmy", expected: "{{store_name}} and {{store_name}}"},
		{name: "description before name", input: "Handmade candles and soaps", expected: "{{store_description}}"},
		{name: "untouched", input: "Nothing to see", expected: "Nothing to see"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Tokenize(tc.input, ctx))
		})
	}
}

func TestTokenizeRoundTrip(t *testing.T) {
	ctx := testContext()
	literal := "Visit Testingmy at 1 Main St, Springfield or call +1 555 0100"

	tokenized := Tokenize(literal, ctx)
	assert.True(t, ContainsLiteral(literal, ctx))
	assert.False(t, ContainsLiteral(tokenized, ctx))
	assert.Equal(t, literal, Substitute(tokenized, ctx))
}

func TestTokenizeLongerValueContainingShorter(t *testing.T) {
	ctx := models.StoreContext{StoreName: "Acme", StoreDescription: "Acme Goods"}
	assert.Equal(t, "{{store_description}} by {{store_name}}", Tokenize("Acme Goods by Acme", ctx))
}

func TestTokenizeWithEmptyContext(t *testing.T) {
	assert.Equal(t, "Testingmy", Tokenize("Testingmy", models.StoreContext{}))
}

func TestTokenizeMatchesEscapedValues(t *testing.T) {
	cases := []struct {
		name     string
		store    string
		input    string
		expected string
	}{
		{name: "apostrophe raw", store: "Sam's Shop", input: "<p>Welcome to Sam's Shop</p>", expected: "<p>Welcome to {{store_name}}</p>"},
		{name: "apostrophe escaped", store: "Sam's Shop", input: "<p>Welcome to Sam&#39;s Shop</p>", expected: "<p>Welcome to {{store_name}}</p>"},
		{name: "ampersand raw", store: "Fish & Chips", input: "Fish & Chips since 1990", expected: "{{store_name}} since 1990"},
		{name: "ampersand escaped", store: "Fish & Chips", input: "Fish &amp; Chips since 1990", expected: "{{store_name}} since 1990"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ctx := models.StoreContext{StoreName: tc.store}
			tokenized := Tokenize(tc.input, ctx)
			assert.Equal(t, tc.expected, tokenized)
			assert.False(t, ContainsLiteral(tokenized, ctx))
		})
	}
}

func TestSingleWordMatches(t *testing.T) {
	ctx := models.StoreContext{StoreName: "Shop", StoreDescription: "Hand-made goods"}

	assert.Equal(t, []string{"store_name"}, SingleWordMatches("Shop now", ctx))
	assert.Equal(t, "{{store_name}} now", Tokenize("Shop now", ctx))

	assert.Empty(t, SingleWordMatches("shop now", ctx))
	assert.Equal(t, "shop now", Tokenize("shop now", ctx))

	assert.Empty(t, SingleWordMatches("Welcome to {{store_name}}", ctx))
	assert.Empty(t, SingleWordMatches("Hand-made goods", models.StoreContext{StoreDescription: "Hand-made goods"}))
}

func TestNamesAreSorted(t *testing.T) {
	names := Names()
	require.NotEmpty(t, names)
	assert.IsIncreasing(t, names)
	assert.True(t, Known("Store_Name"))
	assert.False(t, Known("customer_name"))
}
