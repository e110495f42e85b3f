package domain

import (
	"slices"
	"strings"
	"testing"
)

func TestRandomInterviewCover_FromCatalog(t *testing.T) {
	covers := InterviewCovers()
	if len(covers) == 0 {
		t.Fatal("expected a non-empty cover catalog")
	}
	for _, c := range covers {
		if !strings.HasPrefix(c, "/covers/") {
			t.Errorf("cover %q is not under /covers/", c)
		}
	}

	for i := 0; i < 50; i++ {
		if got := RandomInterviewCover(); !slices.Contains(covers, got) {
			t.Fatalf("cover %q is not in the catalog", got)
		}
	}
}

func TestInterviewCovers_ReturnsCopy(t *testing.T) {
	covers := InterviewCovers()
	covers[0] = "/tampered.png"
	if InterviewCovers()[0] == "/tampered.png" {
		t.Error("InterviewCovers must not expose the backing catalog")
	}
}
