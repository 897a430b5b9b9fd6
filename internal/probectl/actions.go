package probectl

import (
	"ollamaprobe/internal/mockserver"
	"ollamaprobe/internal/prober"
)

// Indirection layer to allow stubbing in tests

var (
	fnRun             = (*prober.Prober).Run
	fnListModels      = (*prober.Prober).ListModels
	fnGenerate        = (*prober.Prober).Generate
	fnChatCompletions = (*prober.Prober).ChatCompletions
	fnChatCompletion  = (*prober.Prober).ChatCompletionSection
	fnSDK             = (*prober.Prober).SDK

	fnServeMock = mockserver.Serve
)
