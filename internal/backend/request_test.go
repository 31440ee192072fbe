package backend

import (
	"encoding/json"
	"testing"

	"royal-terminal/internal/catalog"
	"royal-terminal/internal/models"
)

func TestHistoryFiltersImagesAndBlanks(t *testing.T) {
	messages := []models.Message{
		models.NewUserMessage("first", "GPT 4o"),
		models.NewAssistantMessage("", "aW1n", "Flux"),
		models.NewUserMessage("   \n\t", "GPT 4o"),
		models.NewAssistantMessage("second", "", "GPT 4o"),
		models.NewUserMessage("", "GPT 4o"),
		models.NewUserMessage("third", "GPT 4o"),
	}

	got := History(messages)

	want := []HistoryMessage{
		{Role: models.RoleUser, Content: "first"},
		{Role: models.RoleAssistant, Content: "second"},
		{Role: models.RoleUser, Content: "third"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d messages, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("message %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestStripDataURI(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "data:image/png;base64,aGVsbG8=", want: "aGVsbG8="},
		{in: "data:text/plain;base64,dGV4dA==*notes.txt", want: "dGV4dA==*notes.txt"},
		{in: "no-comma", want: ""},
	}

	for _, tt := range tests {
		if got := StripDataURI(tt.in); got != tt.want {
			t.Errorf("StripDataURI(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAttachmentName(t *testing.T) {
	if got := AttachmentName("data:text/plain;base64,eA==*notes.txt"); got != "notes.txt" {
		t.Errorf("expected notes.txt, got %q", got)
	}
	if got := AttachmentName("data:text/plain;base64,eA=="); got != "" {
		t.Errorf("expected empty name, got %q", got)
	}
}

func TestBuildRequest(t *testing.T) {
	cat, err := catalog.New(catalog.DefaultModels)
	if err != nil {
		t.Fatal(err)
	}
	gpt, _ := cat.Lookup("GPT 4o")

	conv := models.NewConversation().
		WithMessage(models.NewUserMessage("Describe this", "GPT 4o"))
	sub := Submission{
		Prompt:     "Describe this",
		ModelLabel: "GPT 4o",
		UseSearch:  true,
		Image:      "data:image/png;base64,cG5n",
		Files:      []string{"data:application/pdf;base64,cGRm*report.pdf"},
	}

	req := BuildRequest(conv, sub, gpt)

	if req.Model != "gpt-4o" || req.Provider != "PollinationsAI" {
		t.Errorf("unexpected model/provider %s/%s", req.Model, req.Provider)
	}
	if !req.UseSearch {
		t.Error("expected search flag")
	}
	if req.ImageBase64 != "cG5n" {
		t.Errorf("unexpected image payload %q", req.ImageBase64)
	}
	if len(req.FileBase64) != 1 || req.FileBase64[0] != "cGRm*report.pdf" {
		t.Errorf("unexpected files %v", req.FileBase64)
	}
	if len(req.Messages) != 1 || req.Messages[0].Content != "Describe this" {
		t.Errorf("unexpected history %+v", req.Messages)
	}
}

func TestBuildRequestJSONShape(t *testing.T) {
	cat, err := catalog.New(catalog.DefaultModels)
	if err != nil {
		t.Fatal(err)
	}
	flux, _ := cat.Lookup("Flux")

	conv := models.NewConversation().WithMessage(models.NewUserMessage("a cat", "Flux"))
	req := BuildRequest(conv, Submission{Prompt: "a cat", ModelLabel: "Flux"}, flux)

	data, err := json.Marshal(req)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}

	if _, ok := raw["provider"]; ok {
		t.Error("provider should be omitted for models without one")
	}
	if raw["image_base64"] != "" {
		t.Errorf("expected empty image payload, got %v", raw["image_base64"])
	}
	files, ok := raw["file_base64"].([]any)
	if !ok || len(files) != 0 {
		t.Errorf("expected empty file array, got %v", raw["file_base64"])
	}
	if raw["use_search"] != false {
		t.Errorf("expected use_search false, got %v", raw["use_search"])
	}
}
