package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/greenlint/internal/source"
)

const benchFile = `import openai

client = openai.OpenAI()

def summarize(text):
    return client.chat.completions.create(
        model="gpt-4-turbo",
        messages=[{"role": "user", "content": "Summarize this ticket in one sentence please"}],
    )

def classify(text):
    return client.chat.completions.create(model="gpt-4o-mini", messages=[{"role": "user", "content": text}])

REGION = "us-east-1"
`

func benchTree(b *testing.B, n int) string {
	b.Helper()
	root := b.TempDir()
	for i := 0; i < n; i++ {
		dir := filepath.Join(root, fmt.Sprintf("pkg%02d", i%16))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			b.Fatal(err)
		}
		body := strings.Repeat(benchFile, 1+i%4)
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("f%04d.py", i)), []byte(body), 0o644); err != nil {
			b.Fatal(err)
		}
	}
	return root
}

func BenchmarkScan(b *testing.B) {
	root := benchTree(b, 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		r, err := Scan(context.Background(), root, Options{})
		if err != nil {
			b.Fatal(err)
		}
		_ = r
	}
}

func BenchmarkScanCached(b *testing.B) {
	root := benchTree(b, 500)
	an, err := NewAnalyzer(nil, 1024)
	if err != nil {
		b.Fatal(err)
	}
	opts := Options{Analyzer: an}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Scan(context.Background(), root, opts); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkAnalyzeFile(b *testing.B) {
	content := strings.Repeat(benchFile, 50)
	b.Logf("Benchmarking %.1f KB file", float64(len(content))/1024)
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		_ = AnalyzeFile(nil, nil, "big.py", "python", content)
	}
}

func BenchmarkScanDir(b *testing.B) {
	root := benchTree(b, 500)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		files, err := source.ScanDir(context.Background(), root, nil)
		if err != nil {
			b.Fatal(err)
		}
		_ = files
	}
}
