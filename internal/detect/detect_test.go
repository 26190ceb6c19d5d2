package detect

import (
	"reflect"
	"testing"

	"github.com/theirongolddev/greenlint/internal/model"
)

func ids(fs []model.Finding) []string {
	out := make([]string, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.ID)
	}
	return out
}

func TestModels_FindsVendorShapes(t *testing.T) {
	content := `resp = client.chat.completions.create(model="gpt-4-32k", messages=msgs)
fallback = "claude-3-5-haiku-20241022"
other = 'o1-mini'
o1 = 3
llm = ChatGoogle(model="gemini-2.5-flash")
`
	got := ids(Models(content, "app.py"))
	want := []string{"gpt-4-32k", "claude-3-5-haiku-20241022", "o1-mini", "gemini-2.5-flash"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
}

func TestModels_CaseInsensitive(t *testing.T) {
	fs := Models(`MODEL = "GPT-4o-Mini"`, "a.py")
	if len(fs) != 1 || fs[0].ID != "gpt-4o-mini" {
		t.Fatalf("findings = %+v", fs)
	}
	if fs[0].Raw != "GPT-4o-Mini" {
		t.Fatalf("Raw = %q, want original casing", fs[0].Raw)
	}
}

func TestModels_Located(t *testing.T) {
	fs := Models("x = 1\n  call(\"gpt-4\")\n", "a.py")
	if len(fs) != 1 {
		t.Fatalf("len = %d, want 1", len(fs))
	}
	r := fs[0].Range
	if r.Start.Line != 2 || r.Start.Column != 9 || r.End.Column != 14 {
		t.Fatalf("range = %+v, want 2:9-2:14", r)
	}
}

func TestModels_Idempotent(t *testing.T) {
	content := `a = "gpt-4"; b = "gpt-4"
c = "gpt-4o-mini" + "gpt-4o-mini"
`
	first := Models(content, "a.py")
	second := Models(content, "a.py")
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("runs differ:\n%+v\n%+v", first, second)
	}
	// Same identifier on the same line collapses.
	if len(first) != 2 {
		t.Fatalf("len = %d, want 2: %v", len(first), ids(first))
	}
	offsets := make(map[int]bool)
	for _, f := range first {
		if offsets[f.Offset] {
			t.Fatalf("duplicate offset %d", f.Offset)
		}
		offsets[f.Offset] = true
	}
}

func TestRegions_ResolvesAgainstTable(t *testing.T) {
	content := `region = "ap-south-1"
zone: "xx-east-9"
location = "westeurope"
GCP_REGION=europe-north1
label = "us-west-9-ish"
`
	got := ids(Regions(content, "deploy.tf"))
	want := []string{"ap-south-1", "westeurope", "europe-north1"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ids = %v, want %v", got, want)
	}
}

func TestRegions_DedupAcrossPatterns(t *testing.T) {
	// The keyed pattern and the aws shape both hit this token.
	fs := Regions(`AWS_REGION="us-east-1"`, "x.env")
	if len(fs) != 1 {
		t.Fatalf("len = %d, want 1: %+v", len(fs), fs)
	}
}

func TestAPICalls_Shapes(t *testing.T) {
	content := `r = openai.chat.completions.create(model="gpt-4", messages=[])
x = Object.create(null)
data = requests.post("https://api.example.com", json=body)
fetch("https://api.example.com/v1")
msg = client.messages.Create(x)
`
	fs := APICalls(content, "a.py")
	var callees []string
	for _, f := range fs {
		callees = append(callees, f.Raw)
	}
	want := []string{"openai.chat.completions.create", "requests.post", "fetch"}
	if !reflect.DeepEqual(callees, want) {
		t.Fatalf("callees = %v, want %v", callees, want)
	}
	if fs[0].ID != `openai.chat.completions.create(model="gpt-4", messages=[])` {
		t.Fatalf("expression = %q", fs[0].ID)
	}
}

func TestLegacy_CarriesReplacement(t *testing.T) {
	fs := Legacy(`engine="text-davinci-003"  # old`, "a.py")
	if len(fs) != 1 {
		t.Fatalf("len = %d, want 1", len(fs))
	}
	if fs[0].Replacement != "gpt-4o-mini" {
		t.Fatalf("Replacement = %q", fs[0].Replacement)
	}
	if got := Legacy(`m = "claude-20240229"`, "a.py"); len(got) != 0 {
		t.Fatalf("claude-2 matched inside a longer token: %+v", got)
	}
}

func TestMatchers_NeverFailOnGarbage(t *testing.T) {
	for _, content := range []string{"", "\x00\xff\xfe", `"unterminated`, "((((((", "region ="} {
		_ = Detect(content, "x.py")
	}
}

func TestDedup_FirstWins(t *testing.T) {
	a := model.Finding{Category: model.CategoryModel, ID: "gpt-4", Offset: 1, Range: model.Range{Start: model.Position{Line: 1}}}
	b := a
	b.Offset = 9
	out := Dedup([]model.Finding{a, b})
	if len(out) != 1 || out[0].Offset != 1 {
		t.Fatalf("out = %+v", out)
	}
}
