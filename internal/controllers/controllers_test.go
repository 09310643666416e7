package controllers

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

func TestParseDay(t *testing.T) {
	t.Run("Should report the field of a bad query date", func(t *testing.T) {
		_, err := parseDay("from", "16/10/2026")
		require.Error(t, err)
		assert.Equal(t, "from must be a date as YYYY-MM-DD", err.Error())
	})
}

func TestValidSlot(t *testing.T) {
	assert.True(t, validSlot("09:30"))
	assert.False(t, validSlot("9:30"))
	assert.False(t, validSlot("24:00"))
}

func TestApplyMark(t *testing.T) {
	nine := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)

	t.Run("Should clear a stale check-out on check-in", func(t *testing.T) {
		out := nine.Add(-time.Hour)
		rec := models.Attendance{CheckOut: &out, Status: models.AttendanceAbsent}
		require.NoError(t, applyMark(&rec, attendanceRequest{Action: markCheckIn}, nine))
		assert.Equal(t, models.AttendancePresent, rec.Status)
		assert.Nil(t, rec.CheckOut)
	})

	t.Run("Should refuse leave after a check-in", func(t *testing.T) {
		rec := models.Attendance{CheckIn: &nine}
		err := applyMark(&rec, attendanceRequest{Action: markLeave}, nine)
		var me *markError
		require.ErrorAs(t, err, &me)
		assert.Equal(t, http.StatusConflict, me.status)
	})

	t.Run("Should derive the status of a complete record", func(t *testing.T) {
		var rec models.Attendance
		require.NoError(t, applyRecord(&rec, attendanceRequest{}))
		assert.Equal(t, models.AttendanceAbsent, rec.Status)

		req := attendanceRequest{CheckOut: models.FlexibleTime{Time: nine}}
		assert.Error(t, applyRecord(&rec, req))
	})
}

func TestSummarize(t *testing.T) {
	in := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	out := in.Add(7*time.Hour + 30*time.Minute)
	sum := summarize([]models.Attendance{
		{Status: models.AttendancePresent, CheckIn: &in, CheckOut: &out},
		{Status: models.AttendancePresent, CheckIn: &in},
		{Status: models.AttendanceLeave},
		{Status: models.AttendanceAbsent},
	})
	assert.Equal(t, 2, sum.Present)
	assert.Equal(t, 1, sum.Leave)
	assert.Equal(t, 1, sum.Absent)
	assert.InDelta(t, 7.5, sum.HoursWorked, 0.001)
}
