package general

import "github.com/custodia-labs/chunkflow/internal/core/ports/driven"

// Chunkers returns every general chunking method.
func Chunkers() []driven.Chunker {
	return []driven.Chunker{
		NewNaive(),
		NewResume(),
		NewPaper(),
		NewBook(),
		NewLaws(),
		NewManual(),
		NewOne(),
		NewPresentation(),
		NewTable(),
		NewQA(),
		NewTag(),
		NewPicture(),
	}
}
