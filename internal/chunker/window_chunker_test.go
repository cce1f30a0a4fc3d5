package chunker

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"pdfqa/internal/domain"
)

func doc(text string) domain.Document {
	return domain.Document{ID: "doc", Content: text}
}

func TestWindowChunker_StepsByOverlap(t *testing.T) {
	c := NewWindowChunker(4, 1)
	chunks, err := c.Chunk(doc("abcdefghij"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"abcd", "defg", "ghij", "j"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d", len(want), len(chunks))
	}
	for i, ch := range chunks {
		if ch.Text != want[i] {
			t.Fatalf("chunk %d: expected %q, got %q", i, want[i], ch.Text)
		}
		if ch.Start != i*3 {
			t.Fatalf("chunk %d: expected start %d, got %d", i, i*3, ch.Start)
		}
		if ch.Index != i || ch.ChunkID != "doc:"+string(rune('0'+i)) {
			t.Fatalf("chunk %d: unexpected ids %d %q", i, ch.Index, ch.ChunkID)
		}
	}
}

func TestWindowChunker_CoversWholeText(t *testing.T) {
	text := strings.Repeat("lorem ipsum dolor sit amet ", 120)
	for _, cfg := range [][2]int{{1200, 200}, {100, 0}, {7, 3}, {50, 49}, {10, 10}, {10, 25}} {
		c := NewWindowChunker(cfg[0], cfg[1])
		chunks, _ := c.Chunk(doc(text))
		covered := 0
		for i, ch := range chunks {
			if utf8.RuneCountInString(ch.Text) > cfg[0] {
				t.Fatalf("size %d: chunk %d longer than size", cfg[0], i)
			}
			if ch.Start > covered {
				t.Fatalf("size %d overlap %d: gap before chunk %d", cfg[0], cfg[1], i)
			}
			if text[ch.Start:ch.End] != ch.Text {
				t.Fatalf("chunk %d offsets do not match its text", i)
			}
			covered = max(covered, ch.End)
		}
		if covered != len(text) {
			t.Fatalf("size %d overlap %d: covered %d of %d bytes", cfg[0], cfg[1], covered, len(text))
		}
	}
}

func TestWindowChunker_OverlapAtLeastSizeStepsByOne(t *testing.T) {
	c := NewWindowChunker(3, 5)
	if c.Step() != 1 {
		t.Fatalf("expected step 1, got %d", c.Step())
	}
	chunks, _ := c.Chunk(doc("abcd"))
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d", len(chunks))
	}
}

func TestWindowChunker_DropsWhitespaceChunks(t *testing.T) {
	c := NewWindowChunker(4, 0)
	chunks, _ := c.Chunk(doc("abcd    \n\t  efgh"))
	for _, ch := range chunks {
		if strings.TrimSpace(ch.Text) == "" {
			t.Fatalf("whitespace-only chunk was kept: %q", ch.Text)
		}
	}
	if len(chunks) != 2 || chunks[1].Text != "efgh" {
		t.Fatalf("expected 2 chunks ending with efgh, got %v", chunks)
	}
}

func TestWindowChunker_NonPositiveSizeReturnsWholeText(t *testing.T) {
	text := "one two three"
	for _, size := range []int{0, -5} {
		chunks, _ := NewWindowChunker(size, 200).Chunk(doc(text))
		if len(chunks) != 1 || chunks[0].Text != text {
			t.Fatalf("size %d: expected whole text as one chunk, got %v", size, chunks)
		}
	}
}

func TestWindowChunker_EmptyInput(t *testing.T) {
	chunks, err := NewWindowChunker(DefaultChunkSize, DefaultChunkOverlap).Chunk(doc(""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected 0 chunks for empty input, got %d", len(chunks))
	}
}

func TestWindowChunker_CountsRunesNotBytes(t *testing.T) {
	chunks, _ := NewWindowChunker(2, 0).Chunk(doc("héllo"))
	want := []string{"hé", "ll", "o"}
	got := make([]string, len(chunks))
	for i, ch := range chunks {
		got[i] = ch.Text
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWindowChunker_Deterministic(t *testing.T) {
	text := strings.Repeat("The quick brown fox. ", 200)
	c := NewWindowChunker(DefaultChunkSize, DefaultChunkOverlap)
	a, _ := c.Chunk(doc(text))
	b, _ := c.Chunk(doc(text))
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical chunk sequences")
	}
}

func TestWindowChunker_OffsetsIndexSourceText(t *testing.T) {
	text := "żółw jeż \xff ünïcode ☃ text"
	chunks, _ := NewWindowChunker(5, 2).Chunk(doc(text))
	if len(chunks) == 0 {
		t.Fatalf("expected chunks")
	}
	for _, ch := range chunks {
		if text[ch.Start:ch.End] != ch.Text {
			t.Fatalf("chunk %d: offsets [%d:%d] do not match %q", ch.Index, ch.Start, ch.End, ch.Text)
		}
		if n := utf8.RuneCountInString(ch.Text); n > 5 {
			t.Fatalf("chunk %d has %d runes", ch.Index, n)
		}
	}
	if last := chunks[len(chunks)-1]; last.End != len(text) {
		t.Fatalf("expected last chunk to reach the end, got %d of %d", last.End, len(text))
	}
}
