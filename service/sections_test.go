package service

import "testing"

// TestSplitSectionsRoundTrip: a document built from two sections re-parses to
// the same titles and content in the same order.
func TestSplitSectionsRoundTrip(t *testing.T) {
	markdown := "## A\nx\n\n## B\ny"

	sections := SplitSections(markdown)
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0].Title != "A" || sections[0].Content != "x" || sections[0].Order != 0 {
		t.Fatalf("section 0 = %+v", sections[0])
	}
	if sections[1].Title != "B" || sections[1].Content != "y" || sections[1].Order != 1 {
		t.Fatalf("section 1 = %+v", sections[1])
	}
}

// TestSplitSectionsNoHeadings synthesizes exactly one section wrapping the
// full text.
func TestSplitSectionsNoHeadings(t *testing.T) {
	markdown := "Just a paragraph.\nAnd another line."

	sections := SplitSections(markdown)
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	if sections[0].Title != fallbackSectionTitle {
		t.Fatalf("title = %q, want %q", sections[0].Title, fallbackSectionTitle)
	}
	if sections[0].Content != markdown {
		t.Fatalf("content = %q, want full text", sections[0].Content)
	}
}

func TestSplitSectionsEmptyInput(t *testing.T) {
	if got := SplitSections("   \n  "); got != nil {
		t.Fatalf("sections = %v, want nil", got)
	}
}

// TestSplitSectionsPreamble folds text before the first heading into a
// leading fallback section, keeping order dense from 0.
func TestSplitSectionsPreamble(t *testing.T) {
	markdown := "intro line\n\n## Key Points\n- one\n- two"

	sections := SplitSections(markdown)
	if len(sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(sections))
	}
	if sections[0].Title != fallbackSectionTitle || sections[0].Content != "intro line" {
		t.Fatalf("section 0 = %+v", sections[0])
	}
	if sections[1].Title != "Key Points" || sections[1].Order != 1 {
		t.Fatalf("section 1 = %+v", sections[1])
	}
}

// TestSplitSectionsDeeperHeadingsStayInside: ### belongs to its section.
func TestSplitSectionsDeeperHeadingsStayInside(t *testing.T) {
	markdown := "## Outer\ntext\n### Inner\nmore"

	sections := SplitSections(markdown)
	if len(sections) != 1 {
		t.Fatalf("sections = %d, want 1", len(sections))
	}
	if sections[0].Content != "text\n### Inner\nmore" {
		t.Fatalf("content = %q", sections[0].Content)
	}
}

func TestPromptForModeFallsBackToGeneral(t *testing.T) {
	if PromptForMode("karaoke") != generalPrompt {
		t.Fatal("unknown mode should use the general prompt")
	}
	if PromptForMode("sales") != salesPrompt {
		t.Fatal("sales mode should use the sales prompt")
	}
}
