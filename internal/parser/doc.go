// Package parser groups the textual Boolean-network front-ends
// (bnet, exprlist) and the shared expression grammar (boolexpr) behind a
// single format-sniffing entry point, ParseFile.
//
// Adding a third front-end means implementing the same signature as
// bnet.Parse/exprlist.Parse — func(io.Reader) (*model.BooleanNetwork,
// error) built on boolexpr.Parse — and adding a Format value with one
// case for it in Parse and in detectFormat.
package parser

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sdlab/succd/internal/parser/bnet"
	"github.com/sdlab/succd/internal/parser/exprlist"
	"github.com/sdlab/succd/pkg/errors"
	"github.com/sdlab/succd/pkg/model"
)

// Format identifies one of the supported textual BN formats.
type Format string

const (
	FormatAuto     Format = "auto"
	FormatBnet     Format = "bnet"
	FormatExprList Format = "exprlist"
)

// ParseFile reads path and parses it according to format (or, for
// FormatAuto, by sniffing the extension and, failing that, content).
func ParseFile(path string, format Format) (*model.BooleanNetwork, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.CodeMalformedInput, "reading network file", err, false)
	}
	if format == FormatAuto {
		format = detectFormat(path, data)
	}
	return Parse(bytes.NewReader(data), format)
}

// Parse reads a BN from r according to format; FormatAuto is only valid
// via ParseFile (content sniffing needs the full buffer) and from Parse
// falls back to FormatBnet.
func Parse(r io.Reader, format Format) (*model.BooleanNetwork, error) {
	switch format {
	case FormatExprList:
		return exprlist.Parse(r)
	case FormatBnet, FormatAuto, "":
		return bnet.Parse(r)
	default:
		return nil, errors.MalformedInput(fmt.Sprintf("unknown network format %q", format))
	}
}

func detectFormat(path string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".bnet":
		return FormatBnet
	case ".txt", ".net":
		return FormatExprList
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.Contains(line, "=") && !strings.Contains(line, ",") {
			return FormatExprList
		}
		return FormatBnet
	}
	return FormatBnet
}
