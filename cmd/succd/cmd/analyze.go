package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/sdlab/succd/internal/analysis"
	"github.com/sdlab/succd/internal/symbolic"
	"github.com/sdlab/succd/pkg/writer"
)

var (
	analyzeInput  string
	analyzeFormat string
	analyzeOutput string
)

// analyzeCmd runs the full pipeline and reports the diagram's shape
// plus every node's attractor seeds.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Build the succession diagram and identify attractors",
	Long: `analyze parses a Boolean network, builds its succession diagram under
the configured expansion strategy, and identifies the attractors inside
every expanded node (including non-leaf nodes, where motif-avoidant
attractors may live).`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeInput, "input", "i", "", "Input Boolean network file (required)")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "bnet", "Input format: bnet or exprlist")
	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "", "Write the full result as JSON to this file (stdout summary only if empty)")
	analyzeCmd.MarkFlagRequired("input")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := GetLogger()

	if _, err := os.Stat(analyzeInput); os.IsNotExist(err) {
		return fmt.Errorf("input file not found: %s", analyzeInput)
	}

	bn, err := loadNetwork(analyzeInput, analyzeFormat)
	if err != nil {
		return fmt.Errorf("failed to parse network: %w", err)
	}

	log.Info("Loaded network %s: %d variables", filepath.Base(analyzeInput), bn.N())

	eng, err := symbolic.NewRuddEngine(bn.N())
	if err != nil {
		return fmt.Errorf("failed to initialize BDD engine: %w", err)
	}

	ctx := context.Background()
	start := time.Now()
	a, err := analysis.Run(ctx, bn, eng, GetConfig())
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	elapsed := time.Since(start)
	if GetConfig().Debug {
		log.Debug("%s", a.Timer.Summary())
	}

	summary := a.Summary()
	log.Info("Succession diagram: %d nodes, depth %d (%.2fs)", summary.NNodes, summary.Depth, elapsed.Seconds())
	for nodeID, n := range summary.AttractorsByNode {
		log.Info("  node %d: %d attractor(s)", nodeID, n)
	}

	report := buildReport(a, summary)

	if analyzeOutput == "" {
		w := writer.NewPrettyJSONWriter[*analysisReport]()
		return w.Write(report, os.Stdout)
	}
	w := writer.NewPrettyJSONWriter[*analysisReport]()
	if err := w.WriteToFile(report, analyzeOutput); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	log.Info("Result written to %s", analyzeOutput)
	return nil
}

type analysisReport struct {
	NNodes           int              `json:"n_nodes"`
	Depth            int              `json:"depth"`
	NodeOrdering     []int            `json:"node_ordering"`
	AttractorsByNode map[int]int      `json:"attractors_by_node"`
	AttractorSeeds   map[int][]string `json:"attractor_seeds"`
}

func buildReport(a *analysis.Analysis, summary analysis.Summary) *analysisReport {
	seeds := make(map[int][]string, len(a.Diagram.Nodes))
	for nodeID, states := range a.ExpandedAttractorSeeds() {
		rendered := make([]string, 0, len(states))
		for _, s := range states {
			rendered = append(rendered, s.ToSpace().String(a.BN.Vars))
		}
		seeds[nodeID] = rendered
	}
	return &analysisReport{
		NNodes:           summary.NNodes,
		Depth:            summary.Depth,
		NodeOrdering:     summary.NodeOrdering,
		AttractorsByNode: summary.AttractorsByNode,
		AttractorSeeds:   seeds,
	}
}
