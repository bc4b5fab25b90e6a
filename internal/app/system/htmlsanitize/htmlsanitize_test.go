package htmlsanitize_test

import (
	"strings"
	"testing"

	"github.com/Deepak-cell311/GreenBook/internal/app/system/htmlsanitize"
)

func TestSanitize_Empty(t *testing.T) {
	if result := htmlsanitize.Sanitize(""); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}

func TestSanitize_PlainText(t *testing.T) {
	if result := htmlsanitize.Sanitize("Comms held up across the valley."); result != "Comms held up across the valley." {
		t.Errorf("expected plain text unchanged, got %q", result)
	}
}

func TestSanitize_SafeHTML(t *testing.T) {
	input := "<p><strong>Sustain:</strong> radio <em>discipline</em></p>"
	if result := htmlsanitize.Sanitize(input); result != input {
		t.Errorf("expected safe HTML preserved, got %q", result)
	}
}

func TestSanitize_RemovesScript(t *testing.T) {
	input := "<p>Hello</p><script>alert('xss')</script>"
	if result := htmlsanitize.Sanitize(input); result != "<p>Hello</p>" {
		t.Errorf("expected script removed, got %q", result)
	}
}

func TestSanitize_RemovesOnclick(t *testing.T) {
	input := `<button onclick="alert('xss')">Click</button>`
	if result := htmlsanitize.Sanitize(input); result == input {
		t.Error("expected onclick attribute to be removed")
	}
}

func TestSanitize_RemovesJavascriptHref(t *testing.T) {
	input := `<a href="javascript:alert('xss')">Click</a>`
	if result := htmlsanitize.Sanitize(input); result == input {
		t.Error("expected javascript: href to be removed")
	}
}

func TestSanitize_AllowsSafeLinks(t *testing.T) {
	input := `<a href="https://example.com">Link</a>`
	result := htmlsanitize.Sanitize(input)
	// bluemonday adds rel="nofollow" but keeps the href
	if !strings.Contains(result, "https://example.com") {
		t.Errorf("expected safe link preserved, got %q", result)
	}
}

func TestSanitize_AllowsLists(t *testing.T) {
	input := "<ul><li>Sustain radio checks</li><li>Improve rehearsals</li></ul>"
	if result := htmlsanitize.Sanitize(input); result != input {
		t.Errorf("expected list preserved, got %q", result)
	}
}

func TestSanitize_RemovesIframe(t *testing.T) {
	input := `<p>Content</p><iframe src="https://evil.com"></iframe>`
	result := htmlsanitize.Sanitize(input)
	if strings.Contains(result, "iframe") {
		t.Error("expected iframe to be removed")
	}
	if !strings.Contains(result, "Content") {
		t.Error("expected safe content to be preserved")
	}
}

func TestSanitizeStrict_StripsAllTags(t *testing.T) {
	input := "<p><strong>Alpha</strong> Company</p>"
	if result := htmlsanitize.SanitizeStrict(input); result != "Alpha Company" {
		t.Errorf("expected all tags stripped, got %q", result)
	}
}

func TestSanitizeStrict_Empty(t *testing.T) {
	if result := htmlsanitize.SanitizeStrict(""); result != "" {
		t.Errorf("expected empty string, got %q", result)
	}
}
