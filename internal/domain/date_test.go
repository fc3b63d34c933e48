package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2023-02-01")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2023, time.February, 1), d)
	assert.Equal(t, "2023-02-01", d.String())
}

func TestParseDate_Invalid(t *testing.T) {
	for _, in := range []string{"", "2023/02/01", "01-02-2023", "2023-13-01", "yesterday"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseDate(in)
			assert.Error(t, err)
		})
	}
}

func TestDateOf_DropsClock(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	d := DateOf(time.Date(2023, time.March, 5, 23, 59, 0, 0, loc))

	assert.Equal(t, NewDate(2023, time.March, 5), d)
	assert.True(t, DateOf(time.Time{}).IsZero())
}

func TestDate_JSON(t *testing.T) {
	type wrapper struct {
		When Date `json:"when"`
	}

	b, err := json.Marshal(wrapper{When: MustParseDate("2023-02-01")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"when":"2023-02-01"}`, string(b))

	var got wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"when":"2023-06-30"}`), &got))
	assert.Equal(t, MustParseDate("2023-06-30"), got.When)

	b, err = json.Marshal(wrapper{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"when":null}`, string(b))

	require.NoError(t, json.Unmarshal([]byte(`{"when":null}`), &got))
	assert.True(t, got.When.IsZero())

	assert.Error(t, json.Unmarshal([]byte(`{"when":"30/06/2023"}`), &got))
	assert.Error(t, json.Unmarshal([]byte(`{"when":20230630}`), &got))
}

func TestDate_Ordering(t *testing.T) {
	a := MustParseDate("2023-01-01")
	b := MustParseDate("2023-01-02")

	assert.True(t, a.Before(b))
	assert.False(t, a.Before(a))
	assert.True(t, b.After(a))
}
