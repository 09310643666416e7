package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexibleString(t *testing.T) {
	t.Run("Should accept strings and numbers", func(t *testing.T) {
		var v struct {
			A FlexibleString `json:"a"`
			B FlexibleString `json:"b"`
			C FlexibleString `json:"c"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"a":" 98765 ","b":9876543210,"c":null}`), &v))
		assert.Equal(t, "98765", v.A.String())
		assert.Equal(t, "9876543210", v.B.String())
		assert.Empty(t, v.C.String())
	})

	t.Run("Should reject objects", func(t *testing.T) {
		var v FlexibleString
		assert.Error(t, json.Unmarshal([]byte(`{"x":1}`), &v))
	})
}

func TestFlexibleTime(t *testing.T) {
	t.Run("Should accept dates, timestamps and null", func(t *testing.T) {
		var v struct {
			Day   FlexibleTime `json:"day"`
			Stamp FlexibleTime `json:"stamp"`
			Local FlexibleTime `json:"local"`
			None  FlexibleTime `json:"none"`
		}
		require.NoError(t, json.Unmarshal([]byte(`{"day":"2026-10-16","stamp":"2026-10-16T23:30:00+05:30","local":"2026-10-16 09:15:00","none":null}`), &v))
		assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), v.Day.Time)
		assert.Equal(t, time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC), v.Stamp.Time)
		assert.Equal(t, time.Date(2026, 10, 16, 9, 15, 0, 0, time.UTC), v.Local.Time)
		assert.Equal(t, time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC), v.Stamp.Day())
		assert.False(t, v.None.Set())
		assert.Nil(t, v.None.Ptr())
	})

	t.Run("Should treat blanks and the zero timestamp as absent", func(t *testing.T) {
		for _, in := range []string{`"0001-01-01T00:00:00Z"`, `""`, `"  "`} {
			var v FlexibleTime
			require.NoError(t, json.Unmarshal([]byte(in), &v), in)
			assert.False(t, v.Set(), in)
		}
	})

	t.Run("Should reject numbers and unknown layouts", func(t *testing.T) {
		var v FlexibleTime
		assert.Error(t, json.Unmarshal([]byte(`20261016`), &v))
		assert.EqualError(t, json.Unmarshal([]byte(`"16/10/2026"`), &v), `invalid date "16/10/2026", expected YYYY-MM-DD`)
	})
}
