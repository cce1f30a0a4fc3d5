package service

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"pdfqa/internal/chunker"
	"pdfqa/internal/domain"
	"pdfqa/internal/embedding/termfreq"
	"pdfqa/internal/vectorstore/memory"
)

type fakeCompleter struct {
	// errs fails the listed models; the rest answer with response or "answer from <model>".
	errs     map[string]error
	calls    []domain.CompletionRequest
	response string
}

func (f *fakeCompleter) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	f.calls = append(f.calls, req)
	if err, ok := f.errs[req.Model]; ok {
		return "", err
	}
	if f.response != "" {
		return f.response, nil
	}
	return "answer from " + req.Model, nil
}

func (f *fakeCompleter) models() []string {
	out := make([]string, len(f.calls))
	for i, c := range f.calls {
		out[i] = c.Model
	}
	return out
}

func catStore(t *testing.T) *memory.Store {
	t.Helper()
	store, err := Index(
		[]string{"The cat sat on the mat. The dog sat on the log."},
		chunker.NewWindowChunker(chunker.DefaultChunkSize, chunker.DefaultChunkOverlap),
		termfreq.NewEmbedder(),
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return store
}

func newAgent(c domain.Completer, model string) *QAAgent {
	return NewQAAgent(c, termfreq.NewEmbedder(), AgentConfig{Model: model})
}

func decommissioned(model string) error {
	return fmt.Errorf("%w: the model `%s` has been decommissioned", domain.ErrModelUnavailable, model)
}

func TestAnswer_NoMatchingContextSkipsModel(t *testing.T) {
	store, _ := Index([]string{"Alpha Beta Gamma"}, chunker.NewWindowChunker(1200, 200), termfreq.NewEmbedder())
	fc := &fakeCompleter{}
	answer, err := newAgent(fc, "primary").Answer(context.Background(), "1234 5678", store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != NoAnswer {
		t.Fatalf("expected apology, got %q", answer)
	}
	if len(fc.calls) != 0 {
		t.Fatalf("expected no model calls, got %d", len(fc.calls))
	}
}

func TestAnswer_EmptyStoreSkipsModel(t *testing.T) {
	store, _ := memory.NewStore(nil, nil)
	fc := &fakeCompleter{}
	answer, _ := newAgent(fc, "primary").Answer(context.Background(), "anything", store)
	if answer != NoAnswer || len(fc.calls) != 0 {
		t.Fatalf("expected apology without calls, got %q after %d calls", answer, len(fc.calls))
	}
}

func TestAnswer_BuildsPromptFromContext(t *testing.T) {
	fc := &fakeCompleter{response: "On the mat."}
	answer, err := newAgent(fc, "primary").Answer(context.Background(), "Where did the cat sit?", catStore(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "On the mat." {
		t.Fatalf("expected model answer, got %q", answer)
	}
	if len(fc.calls) != 1 {
		t.Fatalf("expected 1 call, got %d", len(fc.calls))
	}
	req := fc.calls[0]
	if req.Model != "primary" {
		t.Fatalf("expected primary model first, got %s", req.Model)
	}
	if req.Temperature != DefaultTemperature {
		t.Fatalf("expected default temperature, got %v", req.Temperature)
	}
	want := []domain.Message{
		{Role: domain.RoleSystem, Content: "Answer the user's question using only the provided context."},
		{Role: domain.RoleSystem, Content: "Context:\nThe cat sat on the mat. The dog sat on the log."},
		{Role: domain.RoleUser, Content: "Where did the cat sit?"},
	}
	if !reflect.DeepEqual(req.Messages, want) {
		t.Fatalf("unexpected messages: %+v", req.Messages)
	}
}

func TestAnswer_FallsBackOnDecommissionedModel(t *testing.T) {
	fc := &fakeCompleter{errs: map[string]error{"primary": decommissioned("primary")}}
	answer, err := newAgent(fc, "primary").Answer(context.Background(), "cat", catStore(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "answer from llama-3.1-8b-instant" {
		t.Fatalf("expected answer from first fallback, got %q", answer)
	}
	if got := fc.models(); !reflect.DeepEqual(got, []string{"primary", "llama-3.1-8b-instant"}) {
		t.Fatalf("unexpected call order: %v", got)
	}
}

func TestAnswer_FallsBackOnInvalidRequest(t *testing.T) {
	fc := &fakeCompleter{errs: map[string]error{
		"primary":              fmt.Errorf("%w: bad param", domain.ErrInvalidRequest),
		"llama-3.1-8b-instant": decommissioned("llama-3.1-8b-instant"),
	}}
	answer, err := newAgent(fc, "primary").Answer(context.Background(), "cat", catStore(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "answer from llama-3.1-70b-versatile" {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestAnswer_AbortsOnOtherErrors(t *testing.T) {
	boom := errors.New("connection reset")
	fc := &fakeCompleter{errs: map[string]error{"primary": boom}}
	_, err := newAgent(fc, "primary").Answer(context.Background(), "cat", catStore(t))
	if !errors.Is(err, boom) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if errors.Is(err, domain.ErrAllModelsFailed) {
		t.Fatalf("did not expect exhausted-fallback error")
	}
	if len(fc.calls) != 1 {
		t.Fatalf("expected no further candidates, got %d calls", len(fc.calls))
	}
}

func TestAnswer_ExhaustedFallbackSurfacesLastError(t *testing.T) {
	fc := &fakeCompleter{errs: map[string]error{}}
	for _, m := range append([]string{"primary"}, FallbackModels...) {
		fc.errs[m] = decommissioned(m)
	}
	last := fc.errs["mixtral-8x7b-32768"]
	_, err := newAgent(fc, "primary").Answer(context.Background(), "cat", catStore(t))
	if !errors.Is(err, domain.ErrAllModelsFailed) {
		t.Fatalf("expected exhausted-fallback error, got %v", err)
	}
	if !errors.Is(err, last) || !errors.Is(err, domain.ErrModelUnavailable) {
		t.Fatalf("expected last error to be wrapped, got %v", err)
	}
	if len(fc.calls) != 4 {
		t.Fatalf("expected 4 attempts, got %d", len(fc.calls))
	}
}

func TestAnswer_EmptyModelContentIsReturned(t *testing.T) {
	c := completerFunc(func(context.Context, domain.CompletionRequest) (string, error) { return "", nil })
	answer, err := newAgent(c, "primary").Answer(context.Background(), "cat", catStore(t))
	if err != nil || answer != "" {
		t.Fatalf("expected empty answer without error, got %q, %v", answer, err)
	}
}

type completerFunc func(context.Context, domain.CompletionRequest) (string, error)

func (f completerFunc) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	return f(ctx, req)
}

func TestCandidateModels(t *testing.T) {
	cases := []struct {
		primary string
		want    []string
	}{
		{"", FallbackModels},
		{"custom", append([]string{"custom"}, FallbackModels...)},
		{"mixtral-8x7b-32768", []string{"mixtral-8x7b-32768", "llama-3.1-8b-instant", "llama-3.1-70b-versatile"}},
	}
	for _, tc := range cases {
		got := CandidateModels(tc.primary, FallbackModels)
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("primary %q: expected %v, got %v", tc.primary, tc.want, got)
		}
	}
}

func TestNewQAAgent_AppliesConfig(t *testing.T) {
	temperature := 0.7
	a := NewQAAgent(&fakeCompleter{}, termfreq.NewEmbedder(), AgentConfig{
		Model:          "m",
		FallbackModels: []string{"x", "m", " "},
		TopK:           2,
		Temperature:    &temperature,
	})
	if got := a.Models(); !reflect.DeepEqual(got, []string{"m", "x"}) {
		t.Fatalf("unexpected models %v", got)
	}
	if a.topK != 2 || a.temperature != 0.7 || a.maxChars != DefaultMaxContextChars {
		t.Fatalf("unexpected agent settings: %+v", a)
	}
}

func TestNewQAAgent_ZeroTemperatureIsKept(t *testing.T) {
	zero := 0.0
	fc := &fakeCompleter{response: "ok"}
	a := NewQAAgent(fc, termfreq.NewEmbedder(), AgentConfig{Model: "m", Temperature: &zero})
	if _, err := a.Answer(context.Background(), "Where did the cat sit?", catStore(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fc.calls) != 1 || fc.calls[0].Temperature != 0 {
		t.Fatalf("expected temperature 0, got %+v", fc.calls)
	}
}
