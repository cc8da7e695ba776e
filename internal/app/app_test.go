package app

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"testing"

	"github.com/chriscorrea/clump/internal/clustering"
	"github.com/chriscorrea/clump/internal/counter"
	"github.com/chriscorrea/clump/internal/embed"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func testConfig(sources ...string) Config {
	cfg := clustering.DefaultConfig()
	cfg.MinClusterSize = 1
	cfg.EnableTopicModeling = false
	cfg.Seed = 7

	return Config{
		Sources:         sources,
		Clustering:      cfg,
		CountingMethod:  counter.Words,
		Representatives: 2,
		Vectorizer:      embed.TFIDF,
		OutputFormat:    JSON,
		Quiet:           true,
	}
}

const vectorDocuments = `[
	{"id": "r1", "title": "Launch", "content": "The rocket launched toward orbit.", "vector": [1, 0]},
	{"id": "a1", "title": "Harvest", "content": "Apples were harvested in the valley.", "vector": [0, 1]},
	{"id": "r2", "title": "Orbit", "content": "The satellite reached a stable orbit.", "vector": [0.95, 0.05]},
	{"id": "a2", "title": "Orchard", "content": "The orchard produced sweet fruit.", "vector": [0.05, 0.95]},
	{"id": "r3", "title": "Booster", "content": "The booster landed after the launch.", "vector": [0.9, 0.1]},
	{"id": "a3", "title": "Cider", "content": "Fresh cider was pressed from apples.", "vector": [0.1, 0.9]}
]`

func TestParseOutputFormat(t *testing.T) {
	tests := []struct {
		input   string
		want    OutputFormat
		wantErr bool
	}{
		{"", Markdown, false},
		{"md", Markdown, false},
		{"Markdown", Markdown, false},
		{"text", Text, false},
		{"txt", Text, false},
		{"json", JSON, false},
		{"xml", Markdown, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOutputFormat(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOutputFormat(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOutputFormat(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	if Text.String() != "Text" || OutputFormat(9).String() != "Unknown" {
		t.Errorf("OutputFormat.String() mismatch: %q %q", Text.String(), OutputFormat(9).String())
	}
}

func TestRunPrecomputedVectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	writeFile(t, path, vectorDocuments)

	cfg := testConfig(path)
	cfg.Clustering.Algorithm = clustering.Hierarchical
	cfg.Clustering.SimilarityThreshold = 0.8

	out, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	var report Report
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Run() produced invalid JSON: %v\n%s", err, out)
	}

	if report.Vectorizer != precomputedVectorizer {
		t.Errorf("Vectorizer = %q, want %q", report.Vectorizer, precomputedVectorizer)
	}
	if report.Documents != 6 || report.Algorithm != "hierarchical" {
		t.Errorf("report header = %d documents / %q, want 6 / hierarchical", report.Documents, report.Algorithm)
	}
	if len(report.Clusters) != 2 {
		t.Fatalf("Clusters = %d, want 2", len(report.Clusters))
	}

	var groups []string
	for _, c := range report.Clusters {
		members := slices.Clone(c.Results)
		sort.Strings(members)
		groups = append(groups, strings.Join(members, ","))

		if len(c.Representatives) != 2 {
			t.Errorf("cluster %s representatives = %d, want 2", c.ID, len(c.Representatives))
		}
	}
	sort.Strings(groups)
	if want := []string{"a1,a2,a3", "r1,r2,r3"}; !slices.Equal(groups, want) {
		t.Errorf("cluster members = %v, want %v", groups, want)
	}
	if report.Statistics.Count != 2 {
		t.Errorf("Statistics.Count = %d, want 2", report.Statistics.Count)
	}
}

func TestRunMarkdownDirectory(t *testing.T) {
	dir := t.TempDir()
	articles := map[string]string{
		"space-1.md":   "# Rocket launch\n\nThe rocket launch carried a satellite into orbit above the planet.",
		"space-2.md":   "# Orbit insertion\n\nThe satellite orbit was raised after the rocket launch.",
		"space-3.md":   "# Booster landing\n\nThe rocket booster landed after the launch into orbit.",
		"cooking-1.md": "# Apple pie\n\nBake the apple pie with cinnamon and butter until golden.",
		"cooking-2.md": "# Apple crumble\n\nThe apple crumble needs butter, sugar and cinnamon.",
		"cooking-3.md": "# Baked apples\n\nBake whole apples with butter and cinnamon sugar.",
	}
	for name, content := range articles {
		writeFile(t, filepath.Join(dir, name), content)
	}

	cfg := testConfig(dir)
	cfg.OutputFormat = Markdown
	cfg.Clustering.EnableTopicModeling = true
	cfg.Clustering.TopicCount = 2

	out, err := Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, want := range []string{"# Clusters", "6 documents", "tfidf", "## Topics", "## Summary"} {
		if !strings.Contains(out, want) {
			t.Errorf("Run() output missing %q:\n%s", want, out)
		}
	}
}

func TestRunQuerySelectsPage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.json")
	writeFile(t, path, vectorDocuments)

	cfg := testConfig(path)
	cfg.Query = "orbit"

	report, err := Cluster(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}
	if report.Query != "orbit" {
		t.Errorf("Query = %q, want orbit", report.Query)
	}
	if report.Documents != 2 {
		t.Errorf("Documents = %d, want the 2 documents mentioning orbit", report.Documents)
	}
}

func TestRunErrors(t *testing.T) {
	if _, err := Run(context.Background(), Config{}); err == nil {
		t.Error("Run() without sources: expected error, got nil")
	}

	cfg := testConfig(filepath.Join(t.TempDir(), "missing.md"))
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Error("Run() with only failing sources: expected error, got nil")
	}

	path := filepath.Join(t.TempDir(), "results.json")
	writeFile(t, path, vectorDocuments)
	cfg = testConfig(path)
	cfg.Clustering.Algorithm = clustering.LDA
	if _, err := Run(context.Background(), cfg); err == nil {
		t.Error("Run() with lda: expected error, got nil")
	}
}

func TestRunKeywordsFromPlainText(t *testing.T) {
	dir := t.TempDir()
	for i, name := range []string{"a.md", "b.md", "c.md"} {
		content := fmt.Sprintf("# Launch %d\n\nThe rocket\u00a0launch moved again. "+
			"See the [launch schedule](https://example.com/space/launches) and <https://example.com/rocket/%d>.", i, i)
		writeFile(t, filepath.Join(dir, name), content)
	}

	report, err := Cluster(context.Background(), testConfig(dir))
	if err != nil {
		t.Fatalf("Cluster() error = %v", err)
	}
	if len(report.Clusters) == 0 {
		t.Fatal("Cluster() returned no clusters")
	}

	for _, c := range report.Clusters {
		if !slices.Contains(c.Keywords, "rocket") || !slices.Contains(c.Keywords, "launch") {
			t.Errorf("cluster %s keywords = %v, want rocket and launch as separate words", c.ID, c.Keywords)
		}
		for _, kw := range c.Keywords {
			if strings.Contains(kw, "http") || strings.Contains(kw, "example") || kw == "rocketlaunch" {
				t.Errorf("cluster %s keyword %q comes from markup, not text", c.ID, kw)
			}
		}
	}
}

func TestPlainContent(t *testing.T) {
	docs := []clustering.Document{
		{ID: "html", Content: "A **bold** [link](https://example.com/x)", Metadata: map[string]any{"format": "html"}},
		{ID: "json", Content: "Read [more](https://example.com/y)"},
		{ID: "text", Content: "**kept** as typed", Metadata: map[string]any{"format": "text"}},
	}

	got := plainContent(docs)
	want := []string{"A bold link", "Read more", "**kept** as typed"}
	for i := range got {
		if got[i].Content != want[i] {
			t.Errorf("plainContent()[%d] = %q, want %q", i, got[i].Content, want[i])
		}
	}
	if docs[0].Content != "A **bold** [link](https://example.com/x)" {
		t.Error("plainContent() modified its input")
	}
}

func TestSelectPage(t *testing.T) {
	docs := []clustering.Document{
		{ID: "a", Title: "Apple harvest", Content: "apples and pears"},
		{ID: "r1", Title: "Rocket launch", Content: "the rocket flew"},
		{ID: "b", Title: "Banana bread", Content: "bake the bread"},
		{ID: "r2", Title: "Orbit", Content: "a rocket reached orbit, rocket engines off"},
		{ID: "c", Title: "Cherry jam", Content: "boil the cherries with sugar"},
		{ID: "d", Title: "Date loaf", Content: "chop the dates finely"},
	}

	ids := func(docs []clustering.Document) []string {
		var out []string
		for _, d := range docs {
			out = append(out, d.ID)
		}
		return out
	}

	if got := ids(selectPage(docs, "", 0)); !slices.Equal(got, []string{"a", "r1", "b", "r2", "c", "d"}) {
		t.Errorf("selectPage(no query) = %v, want input order", got)
	}
	if got := ids(selectPage(docs, "  ", 2)); !slices.Equal(got, []string{"a", "r1"}) {
		t.Errorf("selectPage(no query, 2) = %v, want first two", got)
	}

	got := ids(selectPage(docs, "rocket", 0))
	if len(got) != 2 || !slices.Contains(got, "r1") || !slices.Contains(got, "r2") {
		t.Errorf("selectPage(rocket) = %v, want only the rocket documents", got)
	}
	if got := selectPage(docs, "rocket", 1); len(got) != 1 {
		t.Errorf("selectPage(rocket, 1) = %d documents, want 1", len(got))
	}
	if got := selectPage(docs, "submarine", 0); len(got) != 0 {
		t.Errorf("selectPage(submarine) = %v, want none", ids(got))
	}
}

func TestRankDocumentsOrdersByScore(t *testing.T) {
	docs := []clustering.Document{
		{ID: "a", Content: "apples"},
		{ID: "r", Title: "Rocket", Content: "rocket rocket launch"},
		{ID: "b", Content: "bananas"},
		{ID: "c", Content: "cherries"},
	}

	scored := rankDocuments(docs, "rocket")
	if len(scored) != len(docs) {
		t.Fatalf("rankDocuments() = %d scores, want %d", len(scored), len(docs))
	}
	if scored[0].Document.ID != "r" || scored[0].Index != 1 {
		t.Errorf("rankDocuments()[0] = %s (index %d), want r (index 1)", scored[0].Document.ID, scored[0].Index)
	}
	if scored[1].Document.ID != "a" || scored[2].Document.ID != "b" {
		t.Errorf("rankDocuments() ties = %s, %s; want input order a, b", scored[1].Document.ID, scored[2].Document.ID)
	}
	if scored[0].Score <= scored[1].Score {
		t.Errorf("scores = %v, %v; want descending", scored[0].Score, scored[1].Score)
	}
	if len(rankDocuments(nil, "rocket")) != 0 {
		t.Error("rankDocuments(nil) should be empty")
	}
}

func TestSplitPassages(t *testing.T) {
	long := strings.Repeat("The rocket climbed steadily through the upper atmosphere. ", 6)
	docs := []clustering.Document{
		{ID: "long", Title: "Climb", Content: long, Metadata: map[string]any{"source": "long.md"}},
		{ID: "short", Content: "Short note about apples."},
		{ID: "vec", Content: long, Vector: []float64{1, 0}},
	}

	got, err := splitPassages(docs, 130)
	if err != nil {
		t.Fatalf("splitPassages() error = %v", err)
	}

	var passages []clustering.Document
	for _, d := range got {
		if strings.HasPrefix(d.ID, "long#p") {
			passages = append(passages, d)
		}
	}
	if len(passages) < 2 {
		t.Fatalf("splitPassages() produced %d passages for the long document, want several", len(passages))
	}
	if passages[0].ID != "long#p1" || passages[0].Title != "Climb" {
		t.Errorf("first passage = %s %q, want long#p1 \"Climb\"", passages[0].ID, passages[0].Title)
	}
	if passages[0].Metadata["parent"] != "long" || passages[0].Metadata["source"] != "long.md" {
		t.Errorf("passage metadata = %v", passages[0].Metadata)
	}
	if _, ok := docs[0].Metadata["parent"]; ok {
		t.Error("splitPassages() modified the input metadata")
	}

	if !slices.ContainsFunc(got, func(d clustering.Document) bool { return d.ID == "short" }) {
		t.Error("short document should be kept whole")
	}
	if !slices.ContainsFunc(got, func(d clustering.Document) bool { return d.ID == "vec" }) {
		t.Error("document with a vector should be kept whole")
	}
}

func TestPrepareDocumentsFiltersBoilerplate(t *testing.T) {
	docs := []clustering.Document{
		{ID: "article", Content: "The rocket lifted off at dawn and reached orbit eleven minutes later."},
		{ID: "footer", Content: "Copyright 2026. All rights reserved. Privacy policy and terms of use."},
	}

	cfg := testConfig()
	got, err := prepareDocuments(docs, cfg)
	if err != nil {
		t.Fatalf("prepareDocuments() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != "article" {
		t.Errorf("prepareDocuments() kept %d documents, want only the article", len(got))
	}

	cfg.IncludeAll = true
	got, err = prepareDocuments(docs, cfg)
	if err != nil {
		t.Fatalf("prepareDocuments() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("prepareDocuments(IncludeAll) kept %d documents, want 2", len(got))
	}
}

func TestFilterBoilerplateKeepsAllWhenEverythingMatches(t *testing.T) {
	docs := []clustering.Document{
		{ID: "f1", Content: "Copyright. All rights reserved."},
		{ID: "f2", Content: "Privacy policy"},
	}

	cfg := testConfig()
	got, err := prepareDocuments(docs, cfg)
	if err != nil {
		t.Fatalf("prepareDocuments() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("prepareDocuments() = %d documents, want the input back", len(got))
	}
}

func TestTruncateContent(t *testing.T) {
	docs := []clustering.Document{
		{ID: "a", Content: "one two three four five"},
		{ID: "b", Content: "six seven"},
	}

	got, err := truncateContent(docs, 3, counter.Words)
	if err != nil {
		t.Fatalf("truncateContent() error = %v", err)
	}
	if got[0].Content != "one two three" || got[1].Content != "six seven" {
		t.Errorf("truncateContent() = %q, %q", got[0].Content, got[1].Content)
	}
	if docs[0].Content != "one two three four five" {
		t.Error("truncateContent() modified its input")
	}
}

func TestEnsureVectors(t *testing.T) {
	cfg := testConfig()

	withVectors := []clustering.Document{
		{ID: "a", Content: "rocket", Vector: []float64{1, 0}},
		{ID: "b", Content: "apple", Vector: []float64{0, 1}},
	}
	name, err := ensureVectors(context.Background(), withVectors, cfg)
	if err != nil {
		t.Fatalf("ensureVectors() error = %v", err)
	}
	if name != precomputedVectorizer || !slices.Equal(withVectors[0].Vector, []float64{1, 0}) {
		t.Errorf("ensureVectors() = %q, %v; want precomputed vectors untouched", name, withVectors[0].Vector)
	}

	mixed := []clustering.Document{
		{ID: "a", Content: "rocket launch orbit", Vector: []float64{1, 0}},
		{ID: "b", Content: "apple fruit harvest"},
	}
	name, err = ensureVectors(context.Background(), mixed, cfg)
	if err != nil {
		t.Fatalf("ensureVectors() error = %v", err)
	}
	if name != "tfidf" {
		t.Errorf("ensureVectors() vectorizer = %q, want tfidf", name)
	}
	if len(mixed[0].Vector) != len(mixed[1].Vector) || len(mixed[0].Vector) == 2 {
		t.Errorf("ensureVectors() vectors = %d / %d dimensions, want one shared TF-IDF space",
			len(mixed[0].Vector), len(mixed[1].Vector))
	}

	cfg.Vectorizer = embed.OpenAI
	cfg.OpenAI = embed.OpenAIConfig{}
	if _, err := ensureVectors(context.Background(), []clustering.Document{{ID: "x", Content: "text"}}, cfg); err == nil {
		t.Error("ensureVectors() with openai and no key: expected error, got nil")
	}
}

func TestStripMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"header", "## Rocket launch", "Rocket launch"},
		{"bold and italic", "The **rocket** was *fast*", "The rocket was fast"},
		{"link", "See [the launch](https://example.com) today", "See the launch today"},
		{"image", "![diagram](img.png) shown", "diagram shown"},
		{"bullet list", "- first\n- second", "first\nsecond"},
		{"numbered list", "1. first\n2. second", "first\nsecond"},
		{"inline code", "run `make build` now", "run make build now"},
		{"blockquote", "> quoted text", "quoted text"},
		{"plain", "no markup here", "no markup here"},
		{"autolink", "Schedule <https://example.com/space/launches>", "Schedule"},
		{"bare url", "Details at https://example.com/launches?id=7", "Details at"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkdown(tt.input); got != tt.expected {
				t.Errorf("stripMarkdown(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestSummarize(t *testing.T) {
	doc := clustering.Document{
		ID:      "doc",
		Title:   "Long",
		Content: "# Heading\n\n" + strings.Repeat("word ", 100),
	}

	s := summarize(doc)
	if s.ID != "doc" || s.Title != "Long" {
		t.Errorf("summarize() = %+v", s)
	}
	if strings.Contains(s.Snippet, "#") || strings.Contains(s.Snippet, "\n") {
		t.Errorf("summarize().Snippet = %q, want single-line plain text", s.Snippet)
	}
	if !strings.HasSuffix(s.Snippet, "…") || len([]rune(s.Snippet)) > snippetLength+1 {
		t.Errorf("summarize().Snippet has %d runes, want at most %d", len([]rune(s.Snippet)), snippetLength+1)
	}
}

func TestRender(t *testing.T) {
	report := Report{
		Query:      "rocket",
		Algorithm:  "kmeans",
		Vectorizer: "tfidf",
		Documents:  3,
		Clusters: []ClusterReport{{
			Cluster: clustering.Cluster{
				ID: "cluster-0", Name: "rocket / orbit / launch", Results: []string{"r1", "r2"},
				Size: 2, Cohesion: 0.25, Keywords: []string{"rocket", "orbit", "launch"},
			},
			Representatives: []DocumentSummary{{ID: "r1", Title: "Launch", Snippet: "The rocket launched."}},
		}},
		Unclustered: []string{"a1"},
		Statistics:  clustering.Stats{Count: 1, AvgSize: 2, MinSize: 2, MaxSize: 2, AvgCohesion: 0.25, TopKeywords: []string{"rocket"}},
	}

	tests := []struct {
		format   OutputFormat
		contains []string
	}{
		{Markdown, []string{`# Clusters for "rocket"`, "## 1. rocket / orbit / launch", "**Keywords:** rocket, orbit, launch", "**Launch** (`r1`): The rocket launched.", "## Unclustered", "`a1`", "cohesion 0.25"}},
		{Text, []string{`Clusters for "rocket"`, "1. rocket / orbit / launch [2 documents, cohesion 0.25]", "Launch (r1)", "Unclustered: a1"}},
		{JSON, []string{`"query": "rocket"`, `"name": "rocket / orbit / launch"`, `"representatives"`, `"unclustered"`}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			out, err := Render(report, tt.format)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("Render(%v) missing %q:\n%s", tt.format, want, out)
				}
			}
		})
	}
}
