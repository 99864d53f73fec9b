package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"sellusgenie-backend/internal/models"
)

func TestPageService_CreateTokenizesLiteralStoreValues(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := env.provision(t, "Testingmy")

	page, err := env.pages.Create(ctx, store.ID, models.CreatePageRequest{
		Name: "About",
		Sections: contentSection(
			models.Widget{ID: "intro", Type: "text", Props: models.JSONMap{"content": "<p>Welcome to Testingmy</p>"}},
			models.Widget{ID: "reach", Type: "contact_info", Props: models.JSONMap{"content": "Write to hello@testingmy.shop"}},
		),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if page.Slug != "about" {
		t.Fatalf("expected slug derived from name, got %q", page.Slug)
	}
	if page.Status != models.PageStatusDraft {
		t.Fatalf("expected new pages to be drafts, got %q", page.Status)
	}

	stored, err := env.pageRepo.GetByID(ctx, page.ID)
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	intro := storedWidget(stored, "intro")
	if got := intro.Props["content"]; got != "<p>Welcome to {{store_name}}</p>" {
		t.Fatalf("expected store name tokenized, got %q", got)
	}
	if intro.Version != 2 {
		t.Fatalf("expected missing version filled with current version, got %d", intro.Version)
	}
	if got := storedWidget(stored, "reach").Props["content"]; got != "Write to {{contact_email}}" {
		t.Fatalf("expected contact email tokenized, got %q", got)
	}
	if stored.Sections[0].ID == "" || stored.Sections[0].Rows[0].ID == "" {
		t.Fatalf("expected section and row ids to be assigned")
	}
}

func TestPageService_CreateTokenizesValuesWithHTMLSpecialCharacters(t *testing.T) {
	cases := []struct {
		name    string
		store   string
		content string
		label   string
	}{
		{name: "apostrophe", store: "Sam's Shop", content: "<p>Welcome to Sam's Shop</p>", label: "About Sam's Shop"},
		{name: "apostrophe pre-escaped", store: "Sam's Shop", content: "<p>Welcome to Sam&#39;s Shop</p>", label: "About Sam's Shop"},
		{name: "ampersand", store: "Fish & Chips", content: "<p>Welcome to Fish & Chips</p>", label: "About Fish & Chips"},
		{name: "ampersand pre-escaped", store: "Fish & Chips", content: "<p>Welcome to Fish &amp; Chips</p>", label: "About Fish & Chips"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			store := env.provision(t, tc.store)

			page, err := env.pages.Create(ctx, store.ID, models.CreatePageRequest{
				Name: "About",
				Sections: contentSection(
					models.Widget{ID: "intro", Type: "text", Props: models.JSONMap{"content": tc.content}},
					models.Widget{ID: "nav", Type: "navigation", Props: models.JSONMap{"links": []interface{}{
						map[string]interface{}{"label": tc.label, "url": "/about"},
					}}},
				),
			})
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}

			stored, err := env.pageRepo.GetByID(ctx, page.ID)
			if err != nil {
				t.Fatalf("GetByID returned error: %v", err)
			}
			if got := storedWidget(stored, "intro").Props["content"]; got != "<p>Welcome to {{store_name}}</p>" {
				t.Fatalf("expected store name tokenized in content, got %q", got)
			}
			links, ok := storedWidget(stored, "nav").Props["links"].([]interface{})
			if !ok || len(links) != 1 {
				t.Fatalf("expected one stored link, got %v", storedWidget(stored, "nav").Props["links"])
			}
			if got := links[0].(map[string]interface{})["label"]; got != "About {{store_name}}" {
				t.Fatalf("expected store name tokenized in link label, got %q", got)
			}

			if _, err := env.pages.Publish(ctx, page.ID); err != nil {
				t.Fatalf("Publish returned error: %v", err)
			}
			tree, err := env.storefront.RenderPage(ctx, store.ID, models.PageSelector{Slug: "about"})
			if err != nil {
				t.Fatalf("RenderPage returned error: %v", err)
			}
			rendered := widgetByID(tree, "nav").Props["links"].([]interface{})
			if got := rendered[0].(map[string]interface{})["label"]; got != "About "+tc.store {
				t.Fatalf("expected rendered label with store name, got %q", got)
			}
		})
	}
}

func TestPageService_CreateUpgradesLegacyWidgets(t *testing.T) {
	env := newTestEnv(t)
	store := env.provision(t, "Testingmy")

	page, err := env.pages.Create(context.Background(), store.ID, models.CreatePageRequest{
		Name: "Gallery",
		Sections: contentSection(
			models.Widget{ID: "hero", Type: "image", Version: 1, Props: models.JSONMap{"url": "/hero.jpg", "alt": "Hero"}},
		),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	hero := storedWidget(page, "hero")
	if hero.Version != 2 {
		t.Fatalf("expected image upgraded to v2, got v%d", hero.Version)
	}
	if hero.Props["src"] != "/hero.jpg" {
		t.Fatalf("expected url renamed to src, got %v", hero.Props)
	}
	if _, ok := hero.Props["url"]; ok {
		t.Fatalf("expected legacy url prop removed")
	}
}

func TestPageService_CreateSanitizesRichText(t *testing.T) {
	env := newTestEnv(t)
	store := env.provision(t, "Testingmy")

	page, err := env.pages.Create(context.Background(), store.ID, models.CreatePageRequest{
		Name: "Promo",
		Sections: contentSection(
			models.Widget{ID: "copy", Type: "text", Props: models.JSONMap{"content": `<p onclick="steal()">Sale</p><script>alert(1)</script>`}},
		),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	content := storedWidget(page, "copy").Props["content"].(string)
	if strings.Contains(content, "script") || strings.Contains(content, "onclick") {
		t.Fatalf("expected rich text sanitized, got %q", content)
	}
	if !strings.Contains(content, "Sale") {
		t.Fatalf("expected text content kept, got %q", content)
	}
}

func TestPageService_CreateRejectsInvalidWidgets(t *testing.T) {
	cases := []struct {
		name   string
		widget models.Widget
	}{
		{"unknown type", models.Widget{ID: "w", Type: "carousel", Props: models.JSONMap{}}},
		{"schema violation", models.Widget{ID: "w", Type: "heading", Props: models.JSONMap{"text": "Hi", "level": "h9"}}},
		{"future version", models.Widget{ID: "w", Type: "heading", Version: 7, Props: models.JSONMap{"text": "Hi"}}},
		{"undeclared prop", models.Widget{ID: "w", Type: "spacer", Props: models.JSONMap{"height": 10, "color": "red"}}},
	}

	env := newTestEnv(t)
	store := env.provision(t, "Testingmy")

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.pages.Create(context.Background(), store.ID, models.CreatePageRequest{
				Name:     "Broken " + tc.name,
				Sections: contentSection(tc.widget),
			})
			if !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestPageService_CreateRequiresKnownStore(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.pages.Create(context.Background(), "9b2f7a43-0000-4000-8000-000000000000", models.CreatePageRequest{Name: "About"})
	if !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
}

func TestPageService_SlugMustBeUniquePerStore(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := env.provision(t, "Testingmy")
	other := env.provision(t, "Otherstore")

	if _, err := env.pages.Create(ctx, store.ID, models.CreatePageRequest{Name: "About"}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := env.pages.Create(ctx, store.ID, models.CreatePageRequest{Name: "About us", Slug: "About"}); !errors.Is(err, ErrSlugTaken) {
		t.Fatalf("expected ErrSlugTaken, got %v", err)
	}
	if _, err := env.pages.Create(ctx, other.ID, models.CreatePageRequest{Name: "About"}); err != nil {
		t.Fatalf("expected same slug allowed in another store, got %v", err)
	}
}

func TestPageService_UpdateReplacesSectionsAndInvalidates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := env.provision(t, "Testingmy")

	page, err := env.pages.Create(ctx, store.ID, models.CreatePageRequest{
		Name:     "About",
		Sections: contentSection(models.Widget{ID: "title", Type: "heading", Props: models.JSONMap{"text": "Old"}}),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	before := env.cache.invalidations
	name := "About Testingmy"
	sections := contentSection(models.Widget{ID: "title", Type: "heading", Props: models.JSONMap{"text": "Meet Testingmy"}})
	updated, err := env.pages.Update(ctx, page.ID, models.UpdatePageRequest{Name: &name, Sections: &sections})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}

	if updated.Name != name {
		t.Fatalf("expected name updated, got %q", updated.Name)
	}
	if got := storedWidget(updated, "title").Props["text"]; got != "Meet {{store_name}}" {
		t.Fatalf("expected heading tokenized, got %q", got)
	}
	if env.cache.invalidations <= before {
		t.Fatalf("expected render cache invalidated on update")
	}

	if _, err := env.pages.Update(ctx, "0d4c6e9a-0000-4000-8000-000000000000", models.UpdatePageRequest{}); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected ErrPageNotFound, got %v", err)
	}
}

func TestPageService_PublishDemotesPreviousSystemPage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := env.provision(t, "Testingmy")

	original, err := env.pageRepo.ListPublishedSystemPages(ctx, store.ID, models.SystemPageFooter)
	if err != nil || len(original) != 1 {
		t.Fatalf("expected one provisioned footer, got %d (%v)", len(original), err)
	}

	footer, err := env.pages.Create(ctx, store.ID, models.CreatePageRequest{
		Name:           "Holiday footer",
		PageType:       models.PageTypeSystem,
		SystemPageType: models.SystemPageFooter,
		Sections: contentSection(models.Widget{ID: "legal", Type: "footer_text", Props: models.JSONMap{
			"content": "Season's greetings from Testingmy",
		}}),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if footer.Slug != "" {
		t.Fatalf("expected system pages without slug, got %q", footer.Slug)
	}

	published, err := env.pages.Publish(ctx, footer.ID)
	if err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	if published.PublishedAt == nil || !published.PublishedAt.Equal(fixedNow) {
		t.Fatalf("expected published_at set to now, got %v", published.PublishedAt)
	}

	live, err := env.pageRepo.ListPublishedSystemPages(ctx, store.ID, models.SystemPageFooter)
	if err != nil {
		t.Fatalf("ListPublishedSystemPages returned error: %v", err)
	}
	if len(live) != 1 || live[0].ID != footer.ID {
		t.Fatalf("expected only the new footer to be published, got %+v", live)
	}

	demoted, err := env.pages.Get(ctx, original[0].ID)
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if demoted.Status != models.PageStatusDraft {
		t.Fatalf("expected previous footer demoted to draft, got %q", demoted.Status)
	}

	if _, err := env.pages.Publish(ctx, footer.ID); !errors.Is(err, models.ErrInvalidStatusTransition) {
		t.Fatalf("expected publishing twice to be rejected, got %v", err)
	}
}

func TestPageService_UnpublishAndDelete(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := env.provision(t, "Testingmy")

	page, err := env.pages.Create(ctx, store.ID, models.CreatePageRequest{Name: "Sale"})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := env.pages.Unpublish(ctx, page.ID); !errors.Is(err, models.ErrInvalidStatusTransition) {
		t.Fatalf("expected unpublishing a draft to be rejected, got %v", err)
	}
	if _, err := env.pages.Publish(ctx, page.ID); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}
	unpublished, err := env.pages.Unpublish(ctx, page.ID)
	if err != nil {
		t.Fatalf("Unpublish returned error: %v", err)
	}
	if unpublished.Status != models.PageStatusDraft || unpublished.PublishedAt != nil {
		t.Fatalf("expected draft without published_at, got %q %v", unpublished.Status, unpublished.PublishedAt)
	}

	if err := env.pages.Delete(ctx, page.ID); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := env.pages.Get(ctx, page.ID); !errors.Is(err, ErrPageNotFound) {
		t.Fatalf("expected deleted page to be gone, got %v", err)
	}

	footers, _ := env.pageRepo.ListPublishedSystemPages(ctx, store.ID, models.SystemPageFooter)
	if err := env.pages.Delete(ctx, footers[0].ID); !errors.Is(err, ErrSystemPageDelete) {
		t.Fatalf("expected ErrSystemPageDelete, got %v", err)
	}
}

func TestPageService_Duplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	store := env.provision(t, "Testingmy")

	page, err := env.pages.Create(ctx, store.ID, models.CreatePageRequest{
		Name:     "About",
		Sections: contentSection(models.Widget{ID: "title", Type: "heading", Props: models.JSONMap{"text": "Hello"}}),
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if _, err := env.pages.Publish(ctx, page.ID); err != nil {
		t.Fatalf("Publish returned error: %v", err)
	}

	first, err := env.pages.Duplicate(ctx, page.ID)
	if err != nil {
		t.Fatalf("Duplicate returned error: %v", err)
	}
	second, err := env.pages.Duplicate(ctx, page.ID)
	if err != nil {
		t.Fatalf("Duplicate returned error: %v", err)
	}

	if first.ID == page.ID || first.Status != models.PageStatusDraft || first.PublishedAt != nil {
		t.Fatalf("expected a new draft, got %+v", first)
	}
	if first.Name != "About (copy)" || first.Slug != "about-copy" {
		t.Fatalf("unexpected copy identity %q %q", first.Name, first.Slug)
	}
	if second.Slug != "about-copy-2" {
		t.Fatalf("expected second copy to get a free slug, got %q", second.Slug)
	}
	if storedWidget(first, "title").Props["text"] != "Hello" {
		t.Fatalf("expected widgets copied")
	}
}
