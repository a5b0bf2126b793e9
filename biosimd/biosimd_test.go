package biosimd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanASCIISeqInplace(t *testing.T) {
	b := []byte("acgtACGTxn-")
	CleanASCIISeqInplace(b)
	assert.Equal(t, "ACGTACGTNNN", string(b))
}
