package writer

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"
)

// summaryData mirrors the shape of an analysis summary: a couple of
// scalars plus a per-node map, which is what these writers carry in
// practice.
type summaryData struct {
	NNodes     int         `json:"n_nodes"`
	Depth      int         `json:"depth"`
	Attractors map[int]int `json:"attractors_by_node,omitempty"`
}

func TestJSONWriter_Write(t *testing.T) {
	data := summaryData{NNodes: 6, Depth: 5}

	t.Run("compact output", func(t *testing.T) {
		w := NewJSONWriter[summaryData]()
		var buf bytes.Buffer
		err := w.Write(data, &buf)
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		expected := `{"n_nodes":6,"depth":5}` + "\n"
		if buf.String() != expected {
			t.Errorf("got %q, want %q", buf.String(), expected)
		}
	})

	t.Run("pretty output", func(t *testing.T) {
		w := NewPrettyJSONWriter[summaryData]()
		var buf bytes.Buffer
		err := w.Write(data, &buf)
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}

		// Verify it's valid JSON and indented
		var decoded summaryData
		if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
			t.Fatalf("Failed to decode output: %v", err)
		}
		if decoded.NNodes != data.NNodes || decoded.Depth != data.Depth {
			t.Errorf("decoded data mismatch: got %+v, want %+v", decoded, data)
		}
	})
}

func TestJSONWriter_WriteToFile(t *testing.T) {
	data := summaryData{NNodes: 6, Depth: 5}
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "test.json")

	w := NewJSONWriter[summaryData]()
	err := w.WriteToFile(data, filePath)
	if err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}

	// Read and verify
	content, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}

	var decoded summaryData
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("Failed to decode file: %v", err)
	}
	if decoded.NNodes != data.NNodes || decoded.Depth != data.Depth {
		t.Errorf("decoded data mismatch: got %+v, want %+v", decoded, data)
	}
}

func TestGzipWriter_Write(t *testing.T) {
	data := summaryData{NNodes: 6, Depth: 5}

	w := NewGzipWriter[summaryData]()
	var buf bytes.Buffer
	err := w.Write(data, &buf)
	if err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	// Decompress and verify
	gzReader, err := gzip.NewReader(&buf)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer gzReader.Close()

	decompressed, err := io.ReadAll(gzReader)
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}

	var decoded summaryData
	if err := json.Unmarshal(decompressed, &decoded); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded.NNodes != data.NNodes || decoded.Depth != data.Depth {
		t.Errorf("decoded data mismatch: got %+v, want %+v", decoded, data)
	}
}

func TestGzipWriter_WriteToFile(t *testing.T) {
	data := summaryData{NNodes: 6, Depth: 5}
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "test.json.gz")

	w := NewGzipWriter[summaryData]()
	err := w.WriteToFile(data, filePath)
	if err != nil {
		t.Fatalf("WriteToFile failed: %v", err)
	}

	// Read and decompress
	file, err := os.Open(filePath)
	if err != nil {
		t.Fatalf("Failed to open file: %v", err)
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		t.Fatalf("Failed to create gzip reader: %v", err)
	}
	defer gzReader.Close()

	decompressed, err := io.ReadAll(gzReader)
	if err != nil {
		t.Fatalf("Failed to decompress: %v", err)
	}

	var decoded summaryData
	if err := json.Unmarshal(decompressed, &decoded); err != nil {
		t.Fatalf("Failed to decode: %v", err)
	}
	if decoded.NNodes != data.NNodes || decoded.Depth != data.Depth {
		t.Errorf("decoded data mismatch: got %+v, want %+v", decoded, data)
	}
}

func TestGzipWriter_WriteToFileWithStats(t *testing.T) {
	data := summaryData{NNodes: 6, Depth: 5}
	tmpDir := t.TempDir()
	filePath := filepath.Join(tmpDir, "test.json.gz")

	w := NewGzipWriter[summaryData]()
	result, err := w.WriteToFileWithStats(data, filePath)
	if err != nil {
		t.Fatalf("WriteToFileWithStats failed: %v", err)
	}

	if result.JSONSize <= 0 {
		t.Errorf("JSONSize should be positive, got %d", result.JSONSize)
	}
	if result.CompressedSize <= 0 {
		t.Errorf("CompressedSize should be positive, got %d", result.CompressedSize)
	}
	if result.CompressionPct <= 0 {
		t.Errorf("CompressionPct should be positive, got %f", result.CompressionPct)
	}
}

func TestGzipWriterWithLevel(t *testing.T) {
	w := NewGzipWriterWithLevel[summaryData](gzip.BestSpeed)
	if w.CompressionLevel != gzip.BestSpeed {
		t.Errorf("CompressionLevel = %d, want %d", w.CompressionLevel, gzip.BestSpeed)
	}
}
