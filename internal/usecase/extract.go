package usecase

import (
	"github.com/choplin/dbhelpers/internal/transcript"
)

// ExtractInput carries the extract command options.
type ExtractInput struct {
	InputPath    string
	OutputPath   string
	Prompt       string
	Continuation bool
}

// Extract writes the statements typed at the prompt in InputPath to OutputPath.
func Extract(input ExtractInput) (transcript.Result, error) {
	ex := transcript.NewExtractor(input.Prompt)
	ex.Continuation = input.Continuation

	return ex.ExtractFile(input.InputPath, input.OutputPath)
}
