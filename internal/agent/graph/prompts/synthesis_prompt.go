package prompts

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/cloudwego/eino/schema"
)

// SynthesisBranch selects the instruction payload for answer synthesis.
type SynthesisBranch int

const (
	// BranchVerbatim returns the requested item's stored text unchanged.
	BranchVerbatim SynthesisBranch = iota
	// BranchTitleMiss: a specific item was requested, other content was fetched.
	BranchTitleMiss
	// BranchUnavailable: a specific item was requested, nothing was fetched.
	BranchUnavailable
	// BranchNoResults: no relevant search results and nothing fetched.
	BranchNoResults
	// BranchDefault synthesizes from everything gathered this turn.
	BranchDefault
)

func (b SynthesisBranch) String() string {
	switch b {
	case BranchVerbatim:
		return "verbatim"
	case BranchTitleMiss:
		return "title_miss"
	case BranchUnavailable:
		return "unavailable"
	case BranchNoResults:
		return "no_results"
	case BranchDefault:
		return "default"
	}
	return fmt.Sprintf("branch(%d)", int(b))
}

var (
	//go:embed template/synthesis_default.txt
	synthesisDefault string
	//go:embed template/synthesis_title_miss.txt
	synthesisTitleMiss string
	//go:embed template/synthesis_unavailable.txt
	synthesisUnavailable string
	//go:embed template/synthesis_no_results.txt
	synthesisNoResults string
)

// SynthesisVars feed the synthesis templates.
type SynthesisVars struct {
	Subject        string
	UserInput      string
	FetchedContext string
	SearchContext  string
	ToolOutputs    string
}

// RenderSynthesisSystem renders the system instruction of a synthesis branch.
// BranchVerbatim has no instruction; the answer is the stored text itself.
func RenderSynthesisSystem(ctx context.Context, branch SynthesisBranch, v SynthesisVars) (string, error) {
	var tpl string
	switch branch {
	case BranchTitleMiss:
		tpl = synthesisTitleMiss
	case BranchUnavailable:
		tpl = synthesisUnavailable
	case BranchNoResults:
		tpl = synthesisNoResults
	case BranchDefault:
		tpl = synthesisDefault
	default:
		return "", fmt.Errorf("synthesis prompt: no template for %s", branch)
	}

	msg, err := render(ctx, "synthesis", schema.SystemMessage(tpl), map[string]any{
		"Subject":        v.Subject,
		"UserInput":      v.UserInput,
		"FetchedContext": v.FetchedContext,
		"SearchContext":  v.SearchContext,
		"ToolOutputs":    v.ToolOutputs,
	})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}
