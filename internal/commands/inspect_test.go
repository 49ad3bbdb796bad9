package commands_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspect(t *testing.T) {
	out, err := runTally(t, "inspect", "../../testdata/card-nov.txt")
	require.NoError(t, err, out)
	assert.Contains(t, out, "=== Page 1:")
	assert.Contains(t, out, "Detected type: CREDIT_CARD (extractor: Credit Card)")
	assert.Contains(t, out, "Extracted 3 transactions:")
	assert.Contains(t, out, "CREDIT")
}

func TestInspect_Missing(t *testing.T) {
	out, err := runTally(t, "inspect", "../../testdata/nope.pdf")
	require.Error(t, err)
	assert.Contains(t, out, "document unreadable")
}
