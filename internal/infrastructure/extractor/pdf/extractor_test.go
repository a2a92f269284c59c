package pdf

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmarchenko/medclaims/internal/core/domain"
)

type enhancerFake struct {
	response string
	err      error
	called   bool
}

func (f *enhancerFake) Generate(_ context.Context, _ domain.OracleRequest) (string, error) {
	f.called = true
	return f.response, f.err
}

func TestExtractRejectsNonPDFBytes(t *testing.T) {
	extractor := NewExtractor(nil)

	_, err := extractor.Extract(context.Background(), "junk.pdf", []byte("this is not a pdf"))
	if err == nil {
		t.Fatalf("expected error for non-PDF bytes")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
}

func TestExtractRejectsEmptyFile(t *testing.T) {
	extractor := NewExtractor(nil)

	_, err := extractor.Extract(context.Background(), "empty.pdf", nil)
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input kind, got %v", err)
	}
}

func TestLooksGarbled(t *testing.T) {
	clean := strings.Repeat("Patient John Smith was admitted on 2024-01-15 with total charges of $1,250.00.\n", 3)
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"clean prose", clean, false},
		{"too short", "Hi", true},
		{"special char soup", strings.Repeat("�~^�|�{�}�", 30), true},
		{"fragment lines", "a\nb\nc\nd\ne\nf\n" + "one real line here", true},
	}
	for _, tt := range tests {
		if got := looksGarbled(tt.text); got != tt.want {
			t.Fatalf("%s: looksGarbled = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEnhanceFallsBackOnOracleError(t *testing.T) {
	fake := &enhancerFake{err: errors.New("oracle down")}
	extractor := NewExtractor(fake)

	got := extractor.enhance(context.Background(), "scan.pdf", "garbled text")
	if got != "garbled text" {
		t.Fatalf("oracle failure must fall back to raw text, got %q", got)
	}
}

func TestEnhanceFallsBackOnUnreadableSentinel(t *testing.T) {
	fake := &enhancerFake{response: "UNREADABLE_DOCUMENT"}
	extractor := NewExtractor(fake)

	got := extractor.enhance(context.Background(), "scan.pdf", "garbled text")
	if got != "garbled text" {
		t.Fatalf("sentinel must fall back to raw text, got %q", got)
	}
	if !fake.called {
		t.Fatalf("enhancer was not invoked")
	}
}

func TestEnhanceUsesOracleOutput(t *testing.T) {
	fake := &enhancerFake{response: "Patient John Smith, total $500."}
	extractor := NewExtractor(fake)

	got := extractor.enhance(context.Background(), "scan.pdf", "garbled text")
	if got != "Patient John Smith, total $500." {
		t.Fatalf("unexpected enhanced text: %q", got)
	}
}
