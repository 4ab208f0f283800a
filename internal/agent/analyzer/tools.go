package analyzer

import (
	"github.com/elliotchance/pie/v2"

	"github.com/noteapp-chat/server/internal/agent/model"
)

type toolIndicator struct {
	keywords []string
	tools    []string
}

// keyword categories, in evaluation order
var toolIndicators = []toolIndicator{
	{keywords: []string{"find", "search", "look", "where", "any", "list"}, tools: []string{model.ToolSearchNotes, model.ToolGetContent}},
	{keywords: []string{"create", "add", "new", "make"}, tools: []string{model.ToolCreateNote}},
	{keywords: []string{"update", "edit", "change", "modify"}, tools: []string{model.ToolUpdateNote}},
	{keywords: []string{"delete", "remove", "clear"}, tools: []string{model.ToolDeleteNote}},
}

var intentTools = map[model.Intent][]string{
	model.IntentQueryNotes:    {model.ToolSearchNotes},
	model.IntentSearchRequest: {model.ToolSearchNotes, model.ToolGetContent},
}

// RequiredTools unions the tools implied by the intent with the tools whose
// trigger keywords appear among keywords. Order is stable and unique.
func RequiredTools(intent model.Intent, keywords []string) (bool, []string) {
	tools := append([]string{}, intentTools[intent]...)
	for _, ind := range toolIndicators {
		hit := pie.Any(ind.keywords, func(k string) bool {
			return pie.Contains(keywords, k)
		})
		if hit {
			tools = append(tools, ind.tools...)
		}
	}
	tools = uniqueOrdered(tools)
	return len(tools) > 0, tools
}
