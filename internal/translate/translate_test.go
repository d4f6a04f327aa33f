package translate

import (
	"context"
	"strings"
	"testing"

	"github.com/veilcut/veilcut/internal/subtitle"
)

func TestFactoryRequiresTargetLanguage(t *testing.T) {
	_, err := Factory(context.Background(), ProviderGemini, "key", Options{})
	if err == nil {
		t.Fatal("expected an error without a target language")
	}
}

func TestFactoryRejectsUnknownProvider(t *testing.T) {
	_, err := Factory(
		context.Background(),
		Provider("deepl"),
		"key",
		Options{TargetLanguage: "japanese"},
	)
	if err == nil {
		t.Fatal("expected an error for an unknown provider")
	}
	if !strings.Contains(err.Error(), "deepl") {
		t.Errorf("error should name the provider: %v", err)
	}
}

func TestFactoryRequiresAPIKey(t *testing.T) {
	providers := []Provider{ProviderGemini, ProviderOpenAI, ProviderAnthropic}
	for _, p := range providers {
		_, err := Factory(
			context.Background(),
			p,
			"",
			Options{TargetLanguage: "japanese"},
		)
		if err == nil {
			t.Errorf("provider %s: expected an error without an API key", p)
		}
	}
}

func TestFactoryCreatesConcurrentTranslators(t *testing.T) {
	providers := []Provider{ProviderOpenAI, ProviderAnthropic}
	for _, p := range providers {
		tr, err := Factory(
			context.Background(),
			p,
			"test-key",
			Options{TargetLanguage: "japanese"},
		)
		if err != nil {
			t.Fatalf("provider %s: %v", p, err)
		}
		if _, ok := tr.(ConcurrentTranslator); !ok {
			t.Errorf("provider %s should support concurrent translation", p)
		}
	}
}

func TestItemsFromEntries(t *testing.T) {
	entries := []subtitle.Entry{
		{ID: "a", OriginalText: "one", TranslatedText: "stale"},
		{ID: "b", OriginalText: "two"},
	}

	items := ItemsFromEntries(entries)
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0].ID != "a" || items[0].Text != "one" {
		t.Errorf("item 0 wrong: %+v", items[0])
	}
	if items[1].ID != "b" || items[1].Text != "two" {
		t.Errorf("item 1 wrong: %+v", items[1])
	}
}

func TestApplyResults(t *testing.T) {
	entries := []subtitle.Entry{
		{ID: "a", OriginalText: "one"},
		{ID: "b", OriginalText: "two"},
	}

	applied, unknown := ApplyResults(entries, []Result{
		{ID: "b", Text: "deux"},
		{ID: "ghost", Text: "???"},
		{ID: "a", Text: "un"},
	})

	if applied != 2 {
		t.Errorf("expected 2 applied, got %d", applied)
	}
	if len(unknown) != 1 || unknown[0] != "ghost" {
		t.Errorf("expected [ghost] unknown, got %v", unknown)
	}
	if entries[0].TranslatedText != "un" || entries[1].TranslatedText != "deux" {
		t.Errorf("translations not applied: %+v", entries)
	}
	if entries[0].OriginalText != "one" {
		t.Error("original text must be preserved")
	}
}

func TestBuildPrompt(t *testing.T) {
	opts := Options{
		InputLanguage:  "english",
		TargetLanguage: "japanese",
		Prompt:         "keep honorifics",
	}
	items := []Item{{ID: "x1", Text: "hello"}}

	prompt := BuildPrompt(opts, items)

	for _, want := range []string{"english", "japanese", "keep honorifics", "x1", "hello", "'id'"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
