package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sdlab/succd/internal/analysis"
	"github.com/sdlab/succd/internal/control"
	"github.com/sdlab/succd/internal/symbolic"
	"github.com/sdlab/succd/pkg/model"
	"github.com/sdlab/succd/pkg/writer"
)

var (
	controlInput  string
	controlFormat string
	controlTarget string
	controlMode   string
)

// controlCmd reports the minimum (or every minimal) driver set steering
// the network into the target trap space named by --target.
var controlCmd = &cobra.Command{
	Use:   "control",
	Short: "Find a driver set steering the network into a target trap space",
	Long: `control builds the succession diagram (as analyze does) and then
searches it for the cheapest path into the trap space named by
--target, reporting the minimal set of variables that must be forced to
reach it.`,
	RunE: runControl,
}

func init() {
	rootCmd.AddCommand(controlCmd)

	controlCmd.Flags().StringVarP(&controlInput, "input", "i", "", "Input Boolean network file (required)")
	controlCmd.Flags().StringVar(&controlFormat, "format", "bnet", "Input format: bnet or exprlist")
	controlCmd.Flags().StringVar(&controlTarget, "target", "", "Target assignment, e.g. A=1,B=1 (required)")
	controlCmd.Flags().StringVar(&controlMode, "mode", "any", "Search mode: any (first minimum driver set), minimum (all minimum-size sets), or all (every minimal set)")
	controlCmd.MarkFlagRequired("input")
	controlCmd.MarkFlagRequired("target")
}

func runControl(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	if _, err := os.Stat(controlInput); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", controlInput)
	}

	bn, err := loadNetwork(controlInput, controlFormat)
	if err != nil {
		return fmt.Errorf("failed to parse network: %w", err)
	}

	target, err := parseAssignment(bn.Vars, controlTarget)
	if err != nil {
		return fmt.Errorf("failed to parse --target: %w", err)
	}

	mode, err := parseControlMode(controlMode)
	if err != nil {
		return err
	}

	eng, err := symbolic.NewRuddEngine(bn.N())
	if err != nil {
		return fmt.Errorf("failed to initialize BDD engine: %w", err)
	}

	a, err := analysis.Run(context.Background(), bn, eng, GetConfig())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	driverSets, err := a.Control(target, mode)
	if err != nil {
		return fmt.Errorf("control query failed: %w", err)
	}

	log.Info("Target: %s", target.String(bn.Vars))
	for _, ds := range driverSets {
		log.Info("  driver set: %s", renderDriverSet(ds, bn))
	}

	report := make([]map[string]bool, 0, len(driverSets))
	for _, ds := range driverSets {
		named := make(map[string]bool, len(ds.Assignment))
		for id, v := range ds.Assignment {
			named[bn.Vars.Name(id)] = v
		}
		report = append(report, named)
	}

	w := writer.NewPrettyJSONWriter[[]map[string]bool]()
	return w.Write(report, os.Stdout)
}

func parseControlMode(s string) (control.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "any", "":
		return control.ModeAnyMinimum, nil
	case "all":
		return control.ModeAllMinimal, nil
	case "minimum":
		return control.ModeMinimumSize, nil
	default:
		return 0, fmt.Errorf("unknown control mode: %q (valid: any, all, minimum)", s)
	}
}

func renderDriverSet(ds control.DriverSet, bn *model.BooleanNetwork) string {
	vars := ds.Vars()
	if len(vars) == 0 {
		return "{} (target already contains the root)"
	}
	parts := make([]string, 0, len(vars))
	for _, id := range vars {
		if ds.Assignment[id] {
			parts = append(parts, fmt.Sprintf("%s=1", bn.Vars.Name(id)))
		} else {
			parts = append(parts, fmt.Sprintf("%s=0", bn.Vars.Name(id)))
		}
	}
	return strings.Join(parts, ",")
}
