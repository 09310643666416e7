package controllers

import (
	"errors"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zaqqye/salon_backoffice/internal/models"
)

type AttendanceController struct {
	DB     *gorm.DB
	Events Publisher
	Now    func() time.Time
}

func (ac *AttendanceController) now() time.Time {
	if ac.Now != nil {
		return ac.Now()
	}
	return time.Now()
}

const (
	markCheckIn  = "checkIn"
	markCheckOut = "checkOut"
	markAbsent   = "absent"
	markLeave    = "leave"
)

// attendanceRequest carries either a mark action (action set) or a complete
// record written as is (action empty).
type attendanceRequest struct {
	StaffID  models.FlexibleString `json:"staff_id" binding:"required"`
	Action   string         `json:"action" binding:"omitempty,oneof=checkIn checkOut absent leave"`
	Date     models.FlexibleTime   `json:"date"`
	At       models.FlexibleTime   `json:"at"`
	CheckIn  models.FlexibleTime   `json:"check_in"`
	CheckOut models.FlexibleTime   `json:"check_out"`
	Status   string         `json:"status" binding:"omitempty,oneof=present absent leave holiday"`
	Notes    string         `json:"notes"`
}

type holidayRequest struct {
	Date  models.FlexibleTime `json:"date"`
	Notes string       `json:"notes"`
}

// markError is a rejected attendance action; it becomes a 400 or 409.
type markError struct {
	status int
	field  string
	msg    string
}

func (e *markError) Error() string { return e.msg }

func rejectMark(status int, field, msg string) error {
	return &markError{status: status, field: field, msg: msg}
}

func withStaff(db *gorm.DB) *gorm.DB {
	return db.Preload("Staff")
}

func fillStaffNames(rows []models.Attendance) {
	for i := range rows {
		fillStaffName(&rows[i])
	}
}

func fillStaffName(a *models.Attendance) {
	if a.Staff != nil {
		a.StaffName = a.Staff.Name
	}
}

func (ac *AttendanceController) ListAttendance(c *gin.Context) {
	allowedSorts := map[string]string{
		"date":       "date",
		"created_at": "created_at",
		"status":     "status",
	}
	q := parseListQuery(c, allowedSorts, "date", "DESC")

	base := ac.DB.Model(&models.Attendance{})
	if v := strings.TrimSpace(c.Query("start")); v != "" {
		day, err := parseDay("start", v)
		if err != nil {
			failField(c, http.StatusBadRequest, "start", err.Error())
			return
		}
		base = base.Where("date >= ?", day)
	}
	if v := strings.TrimSpace(c.Query("end")); v != "" {
		day, err := parseDay("end", v)
		if err != nil {
			failField(c, http.StatusBadRequest, "end", err.Error())
			return
		}
		base = base.Where("date < ?", day.AddDate(0, 0, 1))
	}
	if id := strings.TrimSpace(c.Query("staff_id")); id != "" {
		base = base.Where("staff_id = ?", id)
	}
	if status := strings.TrimSpace(strings.ToLower(c.Query("status"))); status != "" {
		if !slices.Contains(models.AttendanceStatuses, status) {
			failField(c, http.StatusBadRequest, "status", "invalid status")
			return
		}
		base = base.Where("status = ?", status)
	}
	if term := strings.TrimSpace(q.Q); term != "" {
		base = base.Where("staff_id IN (?)",
			search(ac.DB.Model(&models.Staff{}).Select("id"), term, "name", "phone"))
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		storeFailed(c, err, "attendance record")
		return
	}
	var rows []models.Attendance
	if err := withStaff(q.page(base)).Find(&rows).Error; err != nil {
		storeFailed(c, err, "attendance record")
		return
	}
	fillStaffNames(rows)
	c.JSON(http.StatusOK, gin.H{"data": rows, "meta": q.meta(total)})
}

// Today lists every record for the current day.
func (ac *AttendanceController) Today(c *gin.Context) {
	day := models.DayOf(ac.now())
	var rows []models.Attendance
	if err := withStaff(ac.DB).Where("date = ?", day).Order("created_at ASC").Find(&rows).Error; err != nil {
		storeFailed(c, err, "attendance record")
		return
	}
	fillStaffNames(rows)
	c.JSON(http.StatusOK, gin.H{"data": rows, "meta": gin.H{"total": len(rows), "date": day.Format(models.DateLayout)}})
}

func (ac *AttendanceController) GetAttendance(c *gin.Context) {
	var rec models.Attendance
	if err := withStaff(ac.DB).Where("id = ?", c.Param("id")).First(&rec).Error; err != nil {
		storeFailed(c, err, "attendance record")
		return
	}
	fillStaffName(&rec)
	c.JSON(http.StatusOK, gin.H{"data": rec})
}

// MarkAttendance applies a check-in, check-out, absence or leave for one
// staff member on one day. Without an action the body is stored as a
// complete record.
func (ac *AttendanceController) MarkAttendance(c *gin.Context) {
	var req attendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	at := ac.now().UTC()
	if req.At.Set() {
		at = req.At.UTC()
	}
	day := models.DayOf(at)
	if req.Date.Set() {
		day = req.Date.Day()
	}

	var rec models.Attendance
	created := false
	err := ac.DB.Transaction(func(tx *gorm.DB) error {
		var staff models.Staff
		if err := tx.Where("id = ?", req.StaffID.String()).First(&staff).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return rejectMark(http.StatusBadRequest, "staff_id", "staff member does not exist")
			}
			return err
		}
		if !staff.Active {
			return rejectMark(http.StatusBadRequest, "staff_id", "staff member is inactive")
		}
		var holidays int64
		if err := tx.Model(&models.Holiday{}).Where("date = ?", day).Count(&holidays).Error; err != nil {
			return err
		}
		if holidays > 0 && req.Status != models.AttendanceHoliday {
			return rejectMark(http.StatusConflict, "date", "the salon is closed on "+day.Format(models.DateLayout))
		}

		err := tx.Where("staff_id = ? AND date = ?", staff.ID, day).First(&rec).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			rec = models.Attendance{StaffID: staff.ID, Date: day}
			created = true
		case err != nil:
			return err
		case req.Action == "":
			return rejectMark(http.StatusConflict, "date", "attendance for this staff member and day already exists")
		}
		if err := applyMark(&rec, req, at); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(&rec).Error; err != nil {
			return err
		}
		rec.Staff = &staff
		fillStaffName(&rec)
		return nil
	})
	if !ac.markFailed(c, err) {
		return
	}
	action, status := models.ActionUpdated, http.StatusOK
	if created {
		action, status = models.ActionCreated, http.StatusCreated
	}
	publish(ac.Events, models.ResourceAttendance, action, rec.ID)
	c.JSON(status, gin.H{"message": "attendance recorded", "data": rec})
}

// applyMark folds one request into the day's record.
func applyMark(rec *models.Attendance, req attendanceRequest, at time.Time) error {
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		rec.Notes = notes
	}
	switch req.Action {
	case markCheckIn:
		if rec.CheckIn != nil {
			return rejectMark(http.StatusConflict, "action", "already checked in")
		}
		rec.CheckIn = &at
		rec.CheckOut = nil
		rec.Status = models.AttendancePresent
	case markCheckOut:
		if rec.CheckIn == nil {
			return rejectMark(http.StatusConflict, "action", "not checked in")
		}
		if rec.CheckOut != nil {
			return rejectMark(http.StatusConflict, "action", "already checked out")
		}
		if !at.After(*rec.CheckIn) {
			return rejectMark(http.StatusBadRequest, "at", "check-out must be after check-in")
		}
		rec.CheckOut = &at
	case markAbsent, markLeave:
		if rec.CheckIn != nil {
			return rejectMark(http.StatusConflict, "action", "already checked in")
		}
		rec.Status = models.AttendanceAbsent
		if req.Action == markLeave {
			rec.Status = models.AttendanceLeave
		}
	default:
		return applyRecord(rec, req)
	}
	return nil
}

// applyRecord overwrites the record with the request's times and status.
func applyRecord(rec *models.Attendance, req attendanceRequest) error {
	rec.CheckIn, rec.CheckOut = req.CheckIn.Ptr(), req.CheckOut.Ptr()
	if rec.CheckIn == nil && rec.CheckOut != nil {
		return rejectMark(http.StatusBadRequest, "check_out", "check-out needs a check-in")
	}
	if rec.CheckIn != nil && rec.CheckOut != nil && !rec.CheckOut.After(*rec.CheckIn) {
		return rejectMark(http.StatusBadRequest, "check_out", "check-out must be after check-in")
	}
	rec.Status = req.Status
	if rec.Status == "" {
		rec.Status = models.AttendanceAbsent
		if rec.CheckIn != nil {
			rec.Status = models.AttendancePresent
		}
	}
	return nil
}

// UpdateAttendance rewrites an existing record. Staff member and day may
// change as long as they stay unique.
func (ac *AttendanceController) UpdateAttendance(c *gin.Context) {
	var rec models.Attendance
	if err := ac.DB.Where("id = ?", c.Param("id")).First(&rec).Error; err != nil {
		storeFailed(c, err, "attendance record")
		return
	}
	var req attendanceRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.Action != "" {
		failField(c, http.StatusBadRequest, "action", "actions are only accepted when marking attendance")
		return
	}
	rec.StaffID = req.StaffID.String()
	if req.Date.Set() {
		rec.Date = req.Date.Day()
	}
	if err := applyRecord(&rec, req); err != nil {
		ac.markFailed(c, err)
		return
	}
	rec.Notes = strings.TrimSpace(req.Notes)
	if err := ac.DB.Omit(clause.Associations).Save(&rec).Error; err != nil {
		storeFailed(c, err, "attendance record", "date")
		return
	}
	if err := withStaff(ac.DB).Where("id = ?", rec.ID).First(&rec).Error; err != nil {
		storeFailed(c, err, "attendance record")
		return
	}
	fillStaffName(&rec)
	publish(ac.Events, models.ResourceAttendance, models.ActionUpdated, rec.ID)
	c.JSON(http.StatusOK, gin.H{"message": "updated", "data": rec})
}

func (ac *AttendanceController) DeleteAttendance(c *gin.Context) {
	deleteByID[models.Attendance](c, ac.DB, ac.Events, models.ResourceAttendance, "attendance record")
}

// markFailed writes the error response, if any, and reports whether the
// request succeeded.
func (ac *AttendanceController) markFailed(c *gin.Context, err error) bool {
	if err == nil {
		return true
	}
	var me *markError
	if errors.As(err, &me) {
		failField(c, me.status, me.field, me.msg)
		return false
	}
	if isUniqueViolation(err) {
		failField(c, http.StatusConflict, "date", "attendance for this staff member and day already exists")
		return false
	}
	storeFailed(c, err, "attendance record")
	return false
}

func (ac *AttendanceController) ListHolidays(c *gin.Context) {
	base := ac.DB.Model(&models.Holiday{})
	if v := strings.TrimSpace(c.Query("year")); v != "" {
		year, err := time.Parse("2006", v)
		if err != nil {
			failField(c, http.StatusBadRequest, "year", "year must be four digits")
			return
		}
		base = base.Where("date >= ? AND date < ?", year, year.AddDate(1, 0, 0))
	}
	var holidays []models.Holiday
	if err := base.Order("date ASC").Find(&holidays).Error; err != nil {
		storeFailed(c, err, "holiday")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": holidays, "meta": gin.H{"total": len(holidays)}})
}

// AddHoliday closes the salon for a day. Existing records for that day are
// left as they are.
func (ac *AttendanceController) AddHoliday(c *gin.Context) {
	var req holidayRequest
	if !bindJSON(c, &req) {
		return
	}
	if !req.Date.Set() {
		failField(c, http.StatusBadRequest, "date", "date is required")
		return
	}
	h := models.Holiday{Date: req.Date.Day(), Notes: strings.TrimSpace(req.Notes)}
	if err := ac.DB.Create(&h).Error; err != nil {
		storeFailed(c, err, "holiday", "date")
		return
	}
	publish(ac.Events, models.ResourceAttendance, models.ActionUpdated, "")
	c.JSON(http.StatusCreated, gin.H{"message": "holiday added", "data": h})
}

func (ac *AttendanceController) RemoveHoliday(c *gin.Context) {
	v := strings.TrimSpace(c.Query("date"))
	if v == "" {
		failField(c, http.StatusBadRequest, "date", "date is required")
		return
	}
	day, err := parseDay("date", v)
	if err != nil {
		failField(c, http.StatusBadRequest, "date", err.Error())
		return
	}
	res := ac.DB.Where("date = ?", day).Delete(&models.Holiday{})
	if res.Error != nil {
		storeFailed(c, res.Error, "holiday")
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, "holiday not found")
		return
	}
	publish(ac.Events, models.ResourceAttendance, models.ActionUpdated, "")
	c.JSON(http.StatusOK, gin.H{"message": "holiday removed"})
}

// Summary counts a staff member's days by status over [from, to]. Holidays
// are counted from the calendar, not from attendance rows.
func (ac *AttendanceController) Summary(c *gin.Context) {
	var staff models.Staff
	if err := ac.DB.Where("id = ?", c.Param("id")).First(&staff).Error; err != nil {
		storeFailed(c, err, "staff member")
		return
	}
	today := models.DayOf(ac.now())
	from, to := today.AddDate(0, 0, -29), today
	if v := strings.TrimSpace(c.Query("from")); v != "" {
		d, err := parseDay("from", v)
		if err != nil {
			failField(c, http.StatusBadRequest, "from", err.Error())
			return
		}
		from = d
	}
	if v := strings.TrimSpace(c.Query("to")); v != "" {
		d, err := parseDay("to", v)
		if err != nil {
			failField(c, http.StatusBadRequest, "to", err.Error())
			return
		}
		to = d
	}
	if to.Before(from) {
		failField(c, http.StatusBadRequest, "to", "to must not be before from")
		return
	}
	end := to.AddDate(0, 0, 1)

	var rows []models.Attendance
	if err := ac.DB.Where("staff_id = ? AND date >= ? AND date < ?", staff.ID, from, end).Find(&rows).Error; err != nil {
		storeFailed(c, err, "attendance record")
		return
	}
	var holidays int64
	if err := ac.DB.Model(&models.Holiday{}).Where("date >= ? AND date < ?", from, end).Count(&holidays).Error; err != nil {
		storeFailed(c, err, "holiday")
		return
	}

	sum := summarize(rows)
	sum.StaffID, sum.StaffName = staff.ID, staff.Name
	sum.From, sum.To = from.Format(models.DateLayout), to.Format(models.DateLayout)
	sum.Holidays = int(holidays)
	c.JSON(http.StatusOK, gin.H{"data": sum})
}

func summarize(rows []models.Attendance) models.AttendanceSummary {
	var sum models.AttendanceSummary
	for _, r := range rows {
		switch r.Status {
		case models.AttendancePresent:
			sum.Present++
		case models.AttendanceAbsent:
			sum.Absent++
		case models.AttendanceLeave:
			sum.Leave++
		}
		sum.HoursWorked += r.HoursWorked()
	}
	return sum
}
