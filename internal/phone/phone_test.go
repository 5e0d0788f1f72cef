package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCandidatesSplitsAndDedupes(t *testing.T) {
	got := ParseCandidates("111, 222\n111\r\n , 333")
	assert.Equal(t, []string{"111", "222", "333"}, got)
}

func TestParseCandidatesMergesSourcesFirstSeenOrder(t *testing.T) {
	got := ParseCandidates("111,222", "222\n333")
	assert.Equal(t, []string{"111", "222", "333"}, got)
}

func TestParseCandidatesIsDeterministic(t *testing.T) {
	in := "9895431875\n+1 (800) 123-4567,  ,junk, 9895431875"
	first := ParseCandidates(in)
	second := ParseCandidates(in)
	assert.Equal(t, first, second)
}

func TestParseCandidatesEmptyInput(t *testing.T) {
	assert.Empty(t, ParseCandidates(""))
	assert.Empty(t, ParseCandidates(" \n , \r\n"))
}

func TestNormalizeOneFullyQualifiedPassesThrough(t *testing.T) {
	n, d := NormalizeOne("+18001234567", nil)
	require.Nil(t, d)
	assert.Equal(t, "+18001234567", n.Number)
	assert.Equal(t, ResolutionPassthrough, n.Resolution)
}

func TestNormalizeOneStripsFormatting(t *testing.T) {
	n, d := NormalizeOne("+1 (800) 123-4567", nil)
	require.Nil(t, d)
	assert.Equal(t, "+18001234567", n.Number)
	assert.Equal(t, ResolutionPassthrough, n.Resolution)
}

func TestNormalizeOneVerifiedSuffixMatchAdoptsPrefix(t *testing.T) {
	verified := []string{"+919895431875"}
	n, d := NormalizeOne("9895431875", verified)
	require.Nil(t, d)
	assert.Equal(t, "+919895431875", n.Number)
	assert.Equal(t, ResolutionVerified, n.Resolution)
}

func TestNormalizeOneFirstVerifiedMatchWins(t *testing.T) {
	// two verified numbers sharing the same last 10 digits; order decides
	verified := []string{"+449895431875", "+919895431875"}
	n, d := NormalizeOne("9895431875", verified)
	require.Nil(t, d)
	assert.Equal(t, "+449895431875", n.Number)
}

func TestNormalizeOneNoMatchDefaultsToPlusOne(t *testing.T) {
	n, d := NormalizeOne("5551234567", []string{"+919895431875"})
	require.Nil(t, d)
	assert.Equal(t, "+15551234567", n.Number)
	assert.Equal(t, ResolutionDefaulted, n.Resolution)
}

func TestNormalizeOneLongBareNumberKeepsLastTen(t *testing.T) {
	// 11 bare digits with no verified match: +1 plus the last 10
	n, d := NormalizeOne("15551234567", nil)
	require.Nil(t, d)
	assert.Equal(t, "+15551234567", n.Number)
	assert.Equal(t, ResolutionDefaulted, n.Resolution)
}

func TestNormalizeOneShortPlusPrefixedFallsThrough(t *testing.T) {
	// "+" with fewer than 11 chars is not fully qualified; the + is dropped
	// and the suffix logic runs on the bare digits
	verified := []string{"+919895431875"}
	n, d := NormalizeOne("+9895431875", verified)
	require.Nil(t, d)
	assert.Equal(t, "+919895431875", n.Number)
	assert.Equal(t, ResolutionVerified, n.Resolution)
}

func TestNormalizeOneRejectsShortCandidates(t *testing.T) {
	for _, raw := range []string{"12345", "+1234567", "98-76-54"} {
		_, d := NormalizeOne(raw, nil)
		require.NotNil(t, d, "raw=%q", raw)
		assert.Equal(t, "fewer than 10 digits", d.Reason)
		assert.Equal(t, raw, d.Raw)
	}
}

func TestNormalizeOneRejectsDigitless(t *testing.T) {
	_, d := NormalizeOne("abc-def", nil)
	require.NotNil(t, d)
	assert.Equal(t, "no digits", d.Reason)
}

func TestNormalizeIgnoresShortVerifiedEntries(t *testing.T) {
	// malformed entries in the verified list must not panic or match
	n, d := NormalizeOne("5551234567", []string{"+12345", "", "+15551234567"})
	require.Nil(t, d)
	assert.Equal(t, "+15551234567", n.Number)
	assert.Equal(t, ResolutionVerified, n.Resolution)
}

func TestNormalizeEndToEndScenario(t *testing.T) {
	candidates := ParseCandidates("9895431875\n+18001234567")
	kept, dropped := Normalize(candidates, []string{"+919895431875"})
	require.Empty(t, dropped)
	assert.Equal(t, []string{"+919895431875", "+18001234567"}, Numbers(kept))
	assert.Equal(t, ResolutionVerified, kept[0].Resolution)
	assert.Equal(t, ResolutionPassthrough, kept[1].Resolution)
}

func TestNormalizeReportsDropped(t *testing.T) {
	kept, dropped := Normalize([]string{"5551234567", "123"}, nil)
	assert.Len(t, kept, 1)
	require.Len(t, dropped, 1)
	assert.Equal(t, "123", dropped[0].Raw)
}

func TestNormalizeIsPure(t *testing.T) {
	candidates := []string{"9895431875", "+18001234567", "123"}
	verified := []string{"+919895431875"}
	k1, d1 := Normalize(candidates, verified)
	k2, d2 := Normalize(candidates, verified)
	assert.Equal(t, k1, k2)
	assert.Equal(t, d1, d2)
}
