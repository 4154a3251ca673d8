package models

import "testing"

func TestValidateResourceContent(t *testing.T) {
	if err := ValidateResourceContent("https://cdn.example.com/guide.pdf", ""); err != nil {
		t.Fatalf("file only should be valid: %v", err)
	}
	if err := ValidateResourceContent("", "https://example.com/article"); err != nil {
		t.Fatalf("link only should be valid: %v", err)
	}
	if err := ValidateResourceContent("", ""); err != ErrResourceNoContent {
		t.Fatalf("expected ErrResourceNoContent, got %v", err)
	}
	if err := ValidateResourceContent("https://cdn.example.com/a.pdf", "https://example.com"); err != ErrResourceBothContent {
		t.Fatalf("expected ErrResourceBothContent, got %v", err)
	}
	// Whitespace-only values count as empty.
	if err := ValidateResourceContent("   ", "\t"); err != ErrResourceNoContent {
		t.Fatalf("expected ErrResourceNoContent for whitespace, got %v", err)
	}
}

func TestValidResourceType(t *testing.T) {
	for _, valid := range []string{ResourceArticle, ResourceVideo, ResourcePDF, ResourceAudio, ResourceOther} {
		if !ValidResourceType(valid) {
			t.Fatalf("%s should be a valid resource type", valid)
		}
	}
	if ValidResourceType("PODCAST") {
		t.Fatal("unknown type should be invalid")
	}
}
