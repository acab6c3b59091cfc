package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pders01/reflexion/internal/backend"
	"github.com/pders01/reflexion/internal/config"
	"github.com/pders01/reflexion/internal/models"
	"github.com/pders01/reflexion/internal/ranking"
)

var (
	briefSelect       int
	briefApprove      bool
	briefReject       bool
	briefDecisionID   string
	briefProposalType string
	briefJSON         bool
	briefToon         bool
)

var briefCmd = &cobra.Command{
	Use:   "brief <brief.json>",
	Short: "Review concept brief options",
	Long: `Show the generated concept brief options with their compliance scores
and the recommended choice, then approve or reject them.

Without --approve or --reject the options are listed. With --decision-id the
decision is applied on the backend; otherwise the apply payload is printed.

Examples:
  reflexion brief brief.json
  reflexion brief brief.json --select 1 --approve --decision-id dec-42`,
	Args: cobra.ExactArgs(1),
	RunE: runBrief,
}

func init() {
	rootCmd.AddCommand(briefCmd)

	briefCmd.Flags().IntVar(&briefSelect, "select", -1, "Select an option by index instead of the recommended one")
	briefCmd.Flags().BoolVar(&briefApprove, "approve", false, "Approve the selected option")
	briefCmd.Flags().BoolVar(&briefReject, "reject", false, "Reject all options")
	briefCmd.Flags().StringVar(&briefDecisionID, "decision-id", "", "Apply the decision on the backend")
	briefCmd.Flags().StringVar(&briefProposalType, "proposal-type", "concept_brief", "Proposal type sent with the decision")
	briefCmd.Flags().BoolVar(&briefJSON, "json", false, "Output as JSON")
	briefCmd.Flags().BoolVar(&briefToon, "toon", false, "Output in LLM-friendly toon format")
	briefCmd.MarkFlagsMutuallyExclusive("approve", "reject")
}

type briefOptionView struct {
	Index       int      `json:"index"`
	Summary     string   `json:"summary"`
	Score       *float64 `json:"compliance_score,omitempty"`
	Bucket      string   `json:"bucket"`
	Recommended bool     `json:"recommended"`
	Selected    bool     `json:"selected"`
}

type briefListing struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Options     []briefOptionView `json:"options"`
}

type briefResult struct {
	Verdict    ranking.Verdict `json:"verdict"`
	DecisionID string          `json:"decision_id,omitempty"`
	Payload    map[string]any  `json:"payload"`
	Response   any             `json:"response,omitempty"`
}

func runBrief(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		return err
	}
	view, err := backend.DecodeConceptBrief(data)
	if err != nil {
		return err
	}

	model, err := ranking.New(view)
	if err != nil {
		return err
	}
	if briefSelect >= 0 || (cmd != nil && cmd.Flags().Changed("select")) {
		if err := model.Select(briefSelect); err != nil {
			return err
		}
	}

	w := stdout(cmd)
	if !briefApprove && !briefReject {
		listing := listBrief(model)
		return render(w, briefJSON, briefToon, listing, func(w io.Writer) {
			printBrief(w, listing)
		})
	}

	decision := model.Decide()
	if briefReject {
		decision = model.Reject()
	}
	result := briefResult{Verdict: decision.Verdict, Payload: decision.Payload()}

	if briefDecisionID != "" {
		client, err := backend.NewClient(config.GetBackendConfig())
		if err != nil {
			return err
		}
		resp, err := client.Apply(context.Background(), config.GetCredentials(), models.ApplyRequest{
			DecisionID:   briefDecisionID,
			ProposalType: briefProposalType,
			Payload:      result.Payload,
		})
		if err != nil {
			return fmt.Errorf("failed to apply decision: %w", err)
		}
		result.DecisionID = briefDecisionID
		result.Response = resp
	}

	return render(w, briefJSON, briefToon, result, func(w io.Writer) {
		if decision.Approved() {
			fmt.Fprintf(w, "✓ Approved option %d\n", decision.Index+1)
		} else {
			fmt.Fprintln(w, "✗ Rejected all options")
		}
		if result.DecisionID != "" {
			fmt.Fprintf(w, "  Applied decision: %s\n", result.DecisionID)
		} else {
			fmt.Fprintf(w, "  Payload: %v\n", result.Payload)
		}
	})
}

func listBrief(m *ranking.Model) briefListing {
	meta := m.Metadata()
	listing := briefListing{Title: meta.Title, Description: meta.Description}
	for i, o := range m.Options() {
		listing.Options = append(listing.Options, briefOptionView{
			Index:       i,
			Summary:     o.Summary,
			Score:       o.ComplianceScore,
			Bucket:      ranking.BucketFor(o.ComplianceScore).String(),
			Recommended: i == m.Recommended(),
			Selected:    i == m.Effective(),
		})
	}
	return listing
}

func printBrief(w io.Writer, l briefListing) {
	fmt.Fprintln(w, l.Title)
	fmt.Fprintln(w, "━━━━━━━━━━━━━━━━━━━")
	if l.Description != "" {
		fmt.Fprintln(w, l.Description)
	}
	fmt.Fprintf(w, "%d option(s)\n\n", len(l.Options))

	for _, o := range l.Options {
		marker := " "
		if o.Selected {
			marker = ">"
		}
		fmt.Fprintf(w, "%s Option %d", marker, o.Index+1)
		if o.Recommended {
			fmt.Fprint(w, " ★ Recommended")
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "    %s (%s)\n", ranking.ComplianceLabel(o.Score), o.Bucket)
		fmt.Fprintf(w, "    %s\n\n", truncate(o.Summary, 200))
	}
}
