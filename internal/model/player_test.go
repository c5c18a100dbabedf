package model

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	assert.Equal(t, "Player Mike Trout", (&Player{Name: Str("Mike Trout")}).Label())
	assert.Equal(t, "Player ", (&Player{Name: Str("")}).Label())
	assert.Equal(t, "Player ", (&Player{}).Label())
	assert.Equal(t, "Player Mookie Betts", (&Player{Name: Str("Mookie Betts")}).String())
}

func TestPosition(t *testing.T) {
	cases := []struct {
		name string
		p    Player
		want string
	}{
		{"empty", Player{}, ""},
		{"shared stats only", Player{AgeBat: Float(27), KPctPit: Float(0.2)}, ""},
		{"hitter", Player{AVG: Float(0.301)}, "Hitter"},
		{"pitcher", Player{FIP: Float(2.9)}, "Pitcher"},
		{"two-way", Player{WRCPlus: Float(160), StuffPlus: Float(120)}, "Two-Way"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, tc.p.Position(), tc.name)
	}
	assert.Equal(t, "Two-Way", PositionOf([]*Player{{OBP: Float(0.4)}, {FBV: Float(97.1)}}))
}

func TestJSONRoundTripKeepsNulls(t *testing.T) {
	p := &Player{ID: 3, Name: Str("Shohei Ohtani"), Year: Float(2024), WAR: Float(0), FIP: Float(3.1)}
	raw, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"avg":null`)
	assert.Contains(t, string(raw), `"war":0`)

	var back Player
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, *p, back)
	assert.Nil(t, back.AVG)
	require.NotNil(t, back.WAR)
	assert.Zero(t, *back.WAR)
}

func TestColumnsMatchStruct(t *testing.T) {
	var tagged []string
	rt := reflect.TypeOf(Player{})
	for i := 0; i < rt.NumField(); i++ {
		tag := rt.Field(i).Tag.Get("gorm")
		for _, part := range strings.Split(tag, ";") {
			if strings.HasPrefix(part, "column:") {
				tagged = append(tagged, strings.TrimPrefix(part, "column:"))
			}
		}
		assert.Equal(t, rt.Field(i).Tag.Get("json"), tagged[len(tagged)-1], "json name of %s", rt.Field(i).Name)
	}
	assert.Equal(t, ColumnNames(), tagged)
}

func TestColumnHelpers(t *testing.T) {
	assert.False(t, IsPatchable("id"))
	assert.True(t, IsPatchable("def_value"))
	assert.False(t, IsPatchable("defense"))
	assert.Len(t, ColumnsInGroup(GroupHitting), 9)
	assert.Len(t, ColumnsInGroup(GroupPitching), 8)
	c, ok := ColumnByName("name")
	require.True(t, ok)
	assert.True(t, c.Indexed)
	assert.Equal(t, ColumnText, c.Type)
}

func TestProjectionBlocks(t *testing.T) {
	p := &Player{Year: Float(2025), AgeBat: Float(30), AVG: Float(0.28), SurplusValue: Float(12.5)}
	pr := p.Projection()
	require.NotNil(t, pr.Hitting)
	assert.Nil(t, pr.Pitching)
	assert.Equal(t, 30.0, *pr.Hitting.Age)
	assert.Equal(t, 12.5, *pr.Value.Surplus)

	s := p.Summary()
	assert.Equal(t, "Hitter", s.Position)
}
