package speech

import (
	"fmt"
	"sort"
	"strings"

	"voicebrowser/internal/domain/entity"
)

// Narrator renders execution outcomes as short spoken-style sentences. The
// agent surfaces these directly; a real TTS engine would read them aloud.
type Narrator struct{}

func NewNarrator() *Narrator {
	return &Narrator{}
}

// CommandResponse describes a single action's outcome.
func (Narrator) CommandResponse(result entity.Result) string {
	kind := result.Action.Kind
	if !result.Success {
		reason := result.Error
		if reason == "" {
			reason = "unknown error"
		}
		return fmt.Sprintf("Failed to execute %s: %s", strings.ToLower(string(kind)), reason)
	}

	switch kind {
	case entity.KindNavigate:
		target := result.Action.Target
		if target == "" {
			target = "the page"
		}
		return "Successfully navigated to " + target
	case entity.KindSearch:
		query := result.Action.Text
		if query == "" {
			query = "your search"
		}
		return "Search completed for " + query
	case entity.KindClick:
		element := result.Action.Target
		if element == "" {
			element = "the element"
		}
		return "Clicked on " + element
	case entity.KindType:
		text := result.Action.Text
		if text == "" {
			text = "the text"
		}
		return "Typed " + text
	case entity.KindExtract:
		dataType := result.Action.Target
		if dataType == "" {
			dataType = "data"
		}
		return "Extracted " + dataType + " from the page"
	case entity.KindScreenshot:
		return "Screenshot captured successfully"
	default:
		return fmt.Sprintf("Successfully executed %s command", strings.ToLower(string(kind)))
	}
}

// WorkflowResponse summarizes a multi-step run.
func (Narrator) WorkflowResponse(result entity.WorkflowResult) string {
	total := len(result.Steps)
	switch {
	case total > 0 && result.Succeeded == total:
		return fmt.Sprintf("Workflow completed successfully! All %d steps executed.", total)
	case result.Succeeded > 0:
		return fmt.Sprintf("Workflow partially completed. %d out of %d steps successful.", result.Succeeded, total)
	default:
		return "Workflow failed. None of the steps were successful."
	}
}

// ExtractionResponse describes what an extraction produced.
func (Narrator) ExtractionResponse(dataType string, data map[string]any) string {
	if dataType == "" {
		dataType = "data"
	}
	if items, ok := data[dataType].([]any); ok {
		return fmt.Sprintf("Extracted %d %s items from the page.", len(items), dataType)
	}
	if len(data) > 0 {
		keys := make([]string, 0, len(data))
		for k := range data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Sprintf("Extracted %s with fields: %s.", dataType, strings.Join(keys, ", "))
	}
	return fmt.Sprintf("Extracted %s from the page.", dataType)
}
