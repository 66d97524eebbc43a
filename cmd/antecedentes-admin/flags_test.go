// ABOUTME: Tests for subcommand flag parsing and argument helpers
// ABOUTME: Covers value forms, switches, positional ids and vocabulary parsing

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/antecedentes/internal/model"
)

func TestParseFlags(t *testing.T) {
	f, err := parseFlags(
		[]string{"12", "--names", "Ana María", "--address=Quito", "--yes", "34"},
		[]string{"names", "address"}, []string{"yes"},
	)
	require.NoError(t, err)

	assert.Equal(t, "Ana María", f.get("names"))
	assert.Equal(t, "Quito", f.get("address"))
	assert.True(t, f.bool("yes"))
	assert.Equal(t, []string{"12", "34"}, f.args)
	assert.False(t, f.has("lastnames"))
}

func TestParseFlags_EmptyValueIsSet(t *testing.T) {
	f, err := parseFlags([]string{"--observations="}, []string{"observations"}, nil)
	require.NoError(t, err)
	assert.True(t, f.has("observations"))
	assert.Equal(t, "", f.get("observations"))
}

func TestParseFlags_DoubleDashEndsFlags(t *testing.T) {
	f, err := parseFlags([]string{"--", "--not-a-flag"}, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"--not-a-flag"}, f.args)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"--bogus"}},
		{"missing value", []string{"--names"}},
		{"switch with value", []string{"--yes=true"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFlags(tt.args, []string{"names"}, []string{"yes"})
			assert.Error(t, err)
		})
	}
}

func TestFlagsIDs(t *testing.T) {
	f, err := parseFlags([]string{"7", "8", "9"}, nil, nil)
	require.NoError(t, err)

	id, err := f.id(0, "person id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	ids, err := f.ids(1, "record id")
	require.NoError(t, err)
	assert.Equal(t, []int64{8, 9}, ids)

	_, err = f.id(3, "person id")
	assert.EqualError(t, err, "missing person id")

	bad, err := parseFlags([]string{"0", "x"}, nil, nil)
	require.NoError(t, err)
	_, err = bad.id(0, "person id")
	assert.Error(t, err)
	_, err = bad.ids(0, "record id")
	assert.Error(t, err)
}

func TestFlagsPage(t *testing.T) {
	f, _ := parseFlags(nil, []string{"page"}, nil)
	p, err := f.page()
	require.NoError(t, err)
	assert.Equal(t, 1, p)

	f, _ = parseFlags([]string{"--page", "3"}, []string{"page"}, nil)
	p, err = f.page()
	require.NoError(t, err)
	assert.Equal(t, 3, p)

	f, _ = parseFlags([]string{"--page", "0"}, []string{"page"}, nil)
	_, err = f.page()
	assert.Error(t, err)
}

func TestStripVerbose(t *testing.T) {
	args, v := stripVerbose([]string{"-v", "persons", "search"})
	assert.True(t, v)
	assert.Equal(t, []string{"persons", "search"}, args)

	args, v = stripVerbose([]string{"persons", "-v"})
	assert.False(t, v)
	assert.Equal(t, []string{"persons", "-v"}, args)
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"ADMIN", model.RoleIDAdmin},
		{"view", model.RoleIDView},
		{" Moderate ", model.RoleIDModerate},
		{"3", model.RoleIDUser},
	}
	for _, tt := range tests {
		got, err := parseRole(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := parseRole("5")
	assert.Error(t, err)
	_, err = parseRole("root")
	assert.Error(t, err)
}

func TestParseRelationship(t *testing.T) {
	rel, err := parseRelationship("")
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipInvolved, rel)

	rel, err = parseRelationship("testigo")
	require.NoError(t, err)
	assert.Equal(t, model.RelationshipWitness, rel)

	_, err = parseRelationship("ACUSADO")
	assert.ErrorContains(t, err, "DENUNCIADO")
}

func TestParseConnection(t *testing.T) {
	c, err := parseConnection("jefe banda")
	require.NoError(t, err)
	assert.Equal(t, model.ConnectionGangLeader, c)

	_, err = parseConnection("")
	assert.ErrorContains(t, err, "--type is required")
	_, err = parseConnection("PRIMO")
	assert.Error(t, err)
}

func TestParseIDList(t *testing.T) {
	ids, err := parseIDList("3, 5 8")
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 5, 8}, ids)

	_, err = parseIDList("  ")
	assert.ErrorIs(t, err, errNoIDs)

	_, err = parseIDList("3,x")
	assert.Error(t, err)
}

func TestTruncateAndByteSize(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
	assert.Equal(t, "ñañañ...", truncate("ñañañañañañ", 8))

	assert.Equal(t, "512 B", byteSize(512))
	assert.Equal(t, "1.5 KB", byteSize(1536))
	assert.Equal(t, "20.0 MB", byteSize(20<<20))
}
