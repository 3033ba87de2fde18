package school_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/go-school-portal/school"
	"github.com/stretchr/testify/require"
)

func TestParseTime(t *testing.T) {
	for _, value := range []string{
		"2026-10-16T08:00:00Z",
		"2026-10-16T08:00:00.123456+05:00",
		"2026-10-16T08:00:00",
		"2026-10-16T08:00",
		"2026-10-16",
	} {
		_, ok := school.ParseTime(value)
		require.True(t, ok, value)
	}

	_, ok := school.ParseTime("")
	require.False(t, ok)
	_, ok = school.ParseTime("16.10.2026")
	require.False(t, ok)
}

func TestHomework_Deadline(t *testing.T) {
	created := time.Date(2026, 10, 16, 8, 0, 0, 0, time.UTC)

	t.Run("falls back to 24 hours after creation", func(t *testing.T) {
		hw := school.Homework{CreatedAt: created.Format(time.RFC3339)}
		deadline, ok := hw.DeadlineTime()
		require.True(t, ok)
		require.Equal(t, created.Add(24*time.Hour), deadline)

		require.False(t, hw.Expired(created.Add(23*time.Hour)))
		require.True(t, hw.Expired(created.Add(25*time.Hour)))
		require.Equal(t, 2*time.Hour, hw.TimeRemaining(created.Add(22*time.Hour)))
		require.Zero(t, hw.TimeRemaining(created.Add(48*time.Hour)))
	})

	t.Run("explicit deadline wins", func(t *testing.T) {
		hw := school.Homework{
			CreatedAt: created.Format(time.RFC3339),
			Deadline:  created.Add(time.Hour).Format(time.RFC3339),
		}
		require.True(t, hw.Expired(created.Add(2*time.Hour)))
	})

	t.Run("no timestamps", func(t *testing.T) {
		hw := school.Homework{}
		_, ok := hw.DeadlineTime()
		require.False(t, ok)
		require.False(t, hw.Expired(time.Now()))
		require.Zero(t, hw.TimeRemaining(time.Now()))
	})
}

func TestText_UnmarshalJSON(t *testing.T) {
	var v struct {
		A school.Text `json:"a"`
		B school.Text `json:"b"`
		C school.Text `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a": "4.5", "b": 7, "c": null}`), &v))
	require.Equal(t, school.Text("4.5"), v.A)
	require.Equal(t, school.Text("7"), v.B)
	require.Equal(t, school.Text(""), v.C)

	require.Error(t, json.Unmarshal([]byte(`{"a": {}}`), &v))
}
