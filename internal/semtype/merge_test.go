package semtype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeRightBiased(t *testing.T) {
	l := NewRecord([]string{"a", "b"}, map[string]Type{"a": SInt{}, "b": SString{}})
	r := NewRecord([]string{"b"}, map[string]Type{"b": SInt{}})

	got, err := MergeTypes(l, r)
	require.NoError(t, err)
	rec, ok := got.(*SRecord)
	require.True(t, ok, "expected *SRecord, got %T", got)
	assert.Equal(t, "Int", rec.Fields["a"].String())
	assert.Equal(t, "Int", rec.Fields["b"].String(), "expected right-biased b: Int")
}

func TestMergeIncompatible(t *testing.T) {
	_, err := MergeTypes(SInt{}, SString{})
	require.Error(t, err)
	assert.IsType(t, &MergeError{}, err)
}

func TestProjectRecordAndList(t *testing.T) {
	rec := NewRecord([]string{"id", "name", "email"}, map[string]Type{
		"id": SInt{}, "name": SString{}, "email": SString{},
	})
	got, err := Project(rec, []string{"id", "email"})
	require.NoError(t, err)
	r := got.(*SRecord)
	assert.Len(t, r.Fields, 2)

	listOfRec := &SList{Elem: rec}
	gotList, err := Project(listOfRec, []string{"id"})
	require.NoError(t, err)
	assert.IsType(t, &SList{}, gotList, "expected projection of a list to preserve SList")
}

func TestProjectMissingField(t *testing.T) {
	rec := NewRecord([]string{"id"}, map[string]Type{"id": SInt{}})
	_, err := Project(rec, []string{"missing"})
	assert.Error(t, err, "expected error for missing field")
}
