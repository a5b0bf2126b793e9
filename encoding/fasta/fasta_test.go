package fasta

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRecordFasta = ">chr1 a comment after the name\nACGT\nACGT\n>chr2\nTTTT\n"

func TestNewParsesMultipleRecordsAcrossWrappedLines(t *testing.T) {
	f, err := New(strings.NewReader(twoRecordFasta))
	require.NoError(t, err)

	assert.Equal(t, []string{"chr1", "chr2"}, f.SeqNames())

	n, err := f.Len("chr1")
	require.NoError(t, err)
	assert.EqualValues(t, 8, n)

	s, err := f.Get("chr1", 0, 8)
	require.NoError(t, err)
	assert.Equal(t, "ACGTACGT", s)

	s, err = f.Get("chr2", 1, 3)
	require.NoError(t, err)
	assert.Equal(t, "TT", s)
}

func TestNewDropsCommentAfterSequenceName(t *testing.T) {
	f, err := New(strings.NewReader(twoRecordFasta))
	require.NoError(t, err)
	_, err = f.Get("chr1 a comment after the name", 0, 1)
	assert.Error(t, err)
}

func TestGetRejectsOutOfRangeAndUnknownSequence(t *testing.T) {
	f, err := New(strings.NewReader(twoRecordFasta))
	require.NoError(t, err)

	_, err = f.Get("chr1", 0, 100)
	assert.Error(t, err)

	_, err = f.Get("chr1", 3, 1)
	assert.Error(t, err)

	_, err = f.Get("chr3", 0, 1)
	assert.Error(t, err)
}

func TestOptCleanNormalizesCaseAndNonACGT(t *testing.T) {
	f, err := New(strings.NewReader(">chr1\nacgtNRYx\n"), OptClean)
	require.NoError(t, err)
	s, err := f.Get("chr1", 0, 7)
	require.NoError(t, err)
	assert.Equal(t, "ACGTNNN", s)
}
