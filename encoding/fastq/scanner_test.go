package fastq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerReadsIDSeqQual(t *testing.T) {
	data := "@r1 comment\nACGT\n+\nFFFF\n@r2\nTTTT\n+\nIIII\n"
	s := NewScanner(strings.NewReader(data), ID|Seq|Qual)

	var r Read
	require.True(t, s.Scan(&r))
	assert.Equal(t, "@r1 comment", r.ID)
	assert.Equal(t, "ACGT", r.Seq)
	assert.Equal(t, "FFFF", r.Qual)
	assert.Empty(t, r.Unk)

	require.True(t, s.Scan(&r))
	assert.Equal(t, "@r2", r.ID)
	assert.Equal(t, "TTTT", r.Seq)

	require.False(t, s.Scan(&r))
	require.NoError(t, s.Err())
}

func TestScannerRejectsMissingAtSigil(t *testing.T) {
	s := NewScanner(strings.NewReader("ACGT\nACGT\n+\nFFFF\n"), All)
	var r Read
	require.False(t, s.Scan(&r))
	assert.Equal(t, ErrInvalid, s.Err())
}

func TestScannerRejectsMissingPlusSigil(t *testing.T) {
	s := NewScanner(strings.NewReader("@r1\nACGT\n*\nFFFF\n"), All)
	var r Read
	require.False(t, s.Scan(&r))
	assert.Equal(t, ErrInvalid, s.Err())
}

func TestScannerReportsTruncatedRecord(t *testing.T) {
	s := NewScanner(strings.NewReader("@r1\nACGT\n"), All)
	var r Read
	require.False(t, s.Scan(&r))
	assert.Equal(t, ErrShort, s.Err())
}

func TestPairScannerReadsBothMates(t *testing.T) {
	r1Data := "@r1/1\nACGT\n+\nFFFF\n"
	r2Data := "@r1/2\nTTTT\n+\nIIII\n"
	p := NewPairScanner(strings.NewReader(r1Data), strings.NewReader(r2Data), All)

	var mate1, mate2 Read
	require.True(t, p.Scan(&mate1, &mate2))
	assert.Equal(t, "ACGT", mate1.Seq)
	assert.Equal(t, "TTTT", mate2.Seq)
	require.False(t, p.Scan(&mate1, &mate2))
	require.NoError(t, p.Err())
}

func TestPairScannerDetectsDiscordantStreams(t *testing.T) {
	r1Data := "@r1/1\nACGT\n+\nFFFF\n@r2/1\nACGT\n+\nFFFF\n"
	r2Data := "@r1/2\nTTTT\n+\nIIII\n"
	p := NewPairScanner(strings.NewReader(r1Data), strings.NewReader(r2Data), All)

	var mate1, mate2 Read
	require.True(t, p.Scan(&mate1, &mate2))
	require.False(t, p.Scan(&mate1, &mate2))
	assert.Equal(t, ErrDiscordant, p.Err())
}
