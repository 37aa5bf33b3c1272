//go:build !ocr

package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/chunkflow/internal/core/domain"
)

func TestExtract_ImageWithoutOCR(t *testing.T) {
	_, err := Extract(context.Background(), input("scan.png", "\x89PNG\r\n\x1a\n"))
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}
