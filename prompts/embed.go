package prompts

import _ "embed"

//go:embed summarizer.md
var SummarizerSystem string

//go:embed rewriter.md
var RewriterSystem string

//go:embed scaffolder.md
var ScaffolderSystem string

//go:embed splitter.md
var SplitterSystem string

//go:embed agent_designer.md
var AgentDesignerSystem string

//go:embed chat.md
var ChatSystem string
