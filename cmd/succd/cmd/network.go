package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sdlab/succd/internal/parser"
	"github.com/sdlab/succd/pkg/model"
)

// loadNetwork parses inputFile under the named format ("bnet" or
// "exprlist", or "auto" to sniff by extension and content).
func loadNetwork(inputFile, format string) (*model.BooleanNetwork, error) {
	var f parser.Format
	switch strings.ToLower(format) {
	case "", "auto":
		f = parser.FormatAuto
	case "bnet":
		f = parser.FormatBnet
	case "exprlist":
		f = parser.FormatExprList
	default:
		return nil, fmt.Errorf("unknown input format: %q (valid: auto, bnet, exprlist)", format)
	}
	return parser.ParseFile(inputFile, f)
}

// parseAssignment parses a comma-separated "Name=0/1" list into a target
// space over vs, as the control command's --target flag accepts.
func parseAssignment(vs *model.VariableSet, spec string) (*model.Space, error) {
	sp := model.NewSpace(vs.Len())
	if strings.TrimSpace(spec) == "" {
		return sp, nil
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		nameVal := strings.SplitN(part, "=", 2)
		if len(nameVal) != 2 {
			return nil, fmt.Errorf("malformed assignment %q (want Name=0 or Name=1)", part)
		}
		name := strings.TrimSpace(nameVal[0])
		id, ok := vs.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("target variable %q is not part of the network", name)
		}
		v, err := strconv.Atoi(strings.TrimSpace(nameVal[1]))
		if err != nil || (v != 0 && v != 1) {
			return nil, fmt.Errorf("malformed value in assignment %q (want 0 or 1)", part)
		}
		sp.Fix(id, v == 1)
	}
	return sp, nil
}
