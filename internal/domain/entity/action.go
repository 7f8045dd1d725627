package entity

// ActionKind identifies exactly one execution branch in the command executor.
// Unknown command names never reach an Action: the normalizer maps them to
// KindNoop instead.
type ActionKind string

const (
	KindNavigate   ActionKind = "NAVIGATE"
	KindSearch     ActionKind = "SEARCH"
	KindClick      ActionKind = "CLICK"
	KindType       ActionKind = "TYPE"
	KindScroll     ActionKind = "SCROLL"
	KindPress      ActionKind = "PRESS"
	KindExtract    ActionKind = "EXTRACT"
	KindWait       ActionKind = "WAIT"
	KindScreenshot ActionKind = "SCREENSHOT"
	KindUpload     ActionKind = "UPLOAD"
	KindDownload   ActionKind = "DOWNLOAD"
	KindNoop       ActionKind = "NOOP"
)

// Action is the canonical unit of work. It is built once by the normalizer
// and never mutated afterwards.
type Action struct {
	Kind ActionKind
	// Target is a phrase, URL or selector depending on Kind.
	Target string
	// Text is the string payload, e.g. the query to search or text to type.
	Text string
	// Scope is an optional page-region hint ("header", "left sidebar").
	Scope string
	// Numeric carries a kind-specific amount: scroll pixels or wait millis.
	Numeric int
	// FilePath is the local file to attach for KindUpload.
	FilePath string
}

// Result is the outcome of executing a single Action. Failures are reported
// here rather than as errors so that multi-step workflows keep going.
type Result struct {
	Success bool
	Action  Action
	Error   string
	// Detail describes which execution path succeeded, e.g. the locator
	// strategy that matched or whether a direct selector click worked.
	Detail string
	// Trail lists every locator strategy attempted, with its failure reason.
	Trail []string
	// Data holds the payload of KindExtract.
	Data map[string]any
	// ScreenshotPath is set when an automatic or explicit capture was written.
	ScreenshotPath string
	// DownloadPath is the materialized file of a KindDownload action.
	DownloadPath string
}

// Failure builds a failed Result for the given action.
func Failure(action Action, msg string) Result {
	return Result{Success: false, Action: action, Error: msg}
}

// StepResult is one entry of a workflow run.
type StepResult struct {
	Index   int
	Action  Action
	Result  Result
	Success bool
}

// WorkflowResult is the append-only trail of a multi-step run. It always has
// exactly one entry per input action, in input order.
type WorkflowResult struct {
	Steps     []StepResult
	Succeeded int
}
