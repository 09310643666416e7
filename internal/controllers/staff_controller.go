package controllers

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

type StaffController struct {
	DB     *gorm.DB
	Events Publisher
}

type staffRequest struct {
	Name    string          `json:"name" binding:"required,max=120"`
	Phone   models.FlexibleString  `json:"phone" binding:"required,numeric,len=10"`
	Aadhaar models.FlexibleString  `json:"aadhaar" binding:"required,numeric,len=12"`
	DOB     models.FlexibleTime    `json:"dob"`
	Gender  string          `json:"gender" binding:"omitempty,oneof=Male Female Other"`
	Address string          `json:"address"`
	Salary  decimal.Decimal `json:"salary"`
	Role    string          `json:"role" binding:"required,oneof=Barber Stylist Receptionist Manager"`
	Active  *bool           `json:"active"`
}

func (r staffRequest) apply(s *models.Staff) {
	s.Name = strings.TrimSpace(r.Name)
	s.Phone = r.Phone.String()
	s.Aadhaar = r.Aadhaar.String()
	s.DOB = r.DOB.Day()
	s.Gender = r.Gender
	s.Address = strings.TrimSpace(r.Address)
	s.Salary = r.Salary
	s.Role = r.Role
	s.Active = activeOr(r.Active, s.Active)
}

func (r staffRequest) check(c *gin.Context) bool {
	if r.Salary.IsNegative() {
		failField(c, http.StatusBadRequest, "salary", "salary must be at least 0")
		return false
	}
	return true
}

var staffUnique = []string{"phone", "aadhaar"}

func (sc *StaffController) ListStaff(c *gin.Context) {
	allowedSorts := map[string]string{
		"created_at": "created_at",
		"name":       "name",
		"role":       "role",
		"salary":     "salary",
		"dob":        "dob",
		"active":     "active",
	}
	q := parseListQuery(c, allowedSorts, "created_at", "DESC")

	base := search(sc.DB.Model(&models.Staff{}), q.Q, "name", "phone", "aadhaar")
	if role := strings.TrimSpace(c.Query("role")); role != "" {
		if !slices.Contains(models.StaffRoles, role) {
			failField(c, http.StatusBadRequest, "role", "invalid role")
			return
		}
		base = base.Where("role = ?", role)
	}
	base, ok := activeFilter(c, base)
	if !ok {
		failField(c, http.StatusBadRequest, "active", "invalid active value")
		return
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		storeFailed(c, err, "staff member")
		return
	}
	var staff []models.Staff
	if err := q.page(base).Find(&staff).Error; err != nil {
		storeFailed(c, err, "staff member")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": staff, "meta": q.meta(total)})
}

func (sc *StaffController) CreateStaff(c *gin.Context) {
	var req staffRequest
	if !bindJSON(c, &req) || !req.check(c) {
		return
	}
	staff := models.Staff{Active: true}
	req.apply(&staff)
	if err := sc.DB.Create(&staff).Error; err != nil {
		storeFailed(c, err, "staff member", staffUnique...)
		return
	}
	publish(sc.Events, models.ResourceStaff, models.ActionCreated, staff.ID)
	c.JSON(http.StatusCreated, gin.H{"message": "created", "data": staff})
}

func (sc *StaffController) GetStaff(c *gin.Context) {
	var staff models.Staff
	if err := sc.DB.Where("id = ?", c.Param("id")).First(&staff).Error; err != nil {
		storeFailed(c, err, "staff member")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": staff})
}

func (sc *StaffController) UpdateStaff(c *gin.Context) {
	var staff models.Staff
	if err := sc.DB.Where("id = ?", c.Param("id")).First(&staff).Error; err != nil {
		storeFailed(c, err, "staff member")
		return
	}
	var req staffRequest
	if !bindJSON(c, &req) || !req.check(c) {
		return
	}
	req.apply(&staff)
	if err := sc.DB.Save(&staff).Error; err != nil {
		storeFailed(c, err, "staff member", staffUnique...)
		return
	}
	publish(sc.Events, models.ResourceStaff, models.ActionUpdated, staff.ID)
	c.JSON(http.StatusOK, gin.H{"message": "updated", "data": staff})
}

func (sc *StaffController) SetStaffStatus(c *gin.Context) {
	setActive[models.Staff](c, sc.DB, sc.Events, models.ResourceStaff, "staff member")
}

func (sc *StaffController) DeleteStaff(c *gin.Context) {
	id := c.Param("id")
	err := sc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("staff_id = ?", id).Delete(&models.Attendance{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Staff{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		storeFailed(c, err, "staff member")
		return
	}
	publish(sc.Events, models.ResourceStaff, models.ActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

type staffImportError struct {
	Row   int    `json:"row"`
	Phone string `json:"phone,omitempty"`
	Error string `json:"error"`
}

func parseBoolDefaultTrue(val string) (bool, bool) {
	if val == "" {
		return true, false
	}
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "1", "yes", "y", "active":
		return true, true
	case "false", "0", "no", "n", "inactive":
		return false, true
	default:
		return true, false
	}
}

// ImportStaff bulk-creates staff from an uploaded CSV file.
// Header columns (case-insensitive): name, phone, aadhaar, role, and
// optionally gender, dob, salary, address, active. Semicolon-separated
// files are accepted too.
func (sc *StaffController) ImportStaff(c *gin.Context) {
	if err := c.Request.ParseMultipartForm(10 << 20); err != nil {
		fail(c, http.StatusBadRequest, "failed to parse form")
		return
	}
	file, fileHeader, err := c.Request.FormFile("file")
	if err != nil {
		failField(c, http.StatusBadRequest, "file", "file is required")
		return
	}
	defer file.Close()
	if !strings.HasSuffix(strings.ToLower(strings.TrimSpace(fileHeader.Filename)), ".csv") {
		failField(c, http.StatusBadRequest, "file", "only .csv files are allowed")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		fail(c, http.StatusBadRequest, "failed to read file")
		return
	}
	if len(bytes.TrimSpace(data)) == 0 {
		failField(c, http.StatusBadRequest, "file", "file is empty")
		return
	}
	data = bytes.ReplaceAll(data, []byte{'\r', '\n'}, []byte{'\n'})
	data = bytes.ReplaceAll(data, []byte{'\r'}, []byte{'\n'})
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	firstLine, _, _ := bytes.Cut(data, []byte{'\n'})
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	if bytes.Contains(firstLine, []byte{';'}) && !bytes.Contains(firstLine, []byte{','}) {
		reader.Comma = ';'
	}

	header, err := reader.Read()
	if err != nil {
		fail(c, http.StatusBadRequest, "failed to read header")
		return
	}
	headerIdx := make(map[string]int, len(header))
	for idx, col := range header {
		key := strings.ToLower(strings.Trim(strings.TrimSpace(col), "\"'"))
		if key != "" {
			headerIdx[key] = idx
		}
	}
	for _, key := range []string{"name", "phone", "aadhaar", "role"} {
		if _, ok := headerIdx[key]; !ok {
			failField(c, http.StatusBadRequest, "file", fmt.Sprintf("missing header column: %s", key))
			return
		}
	}
	getVal := func(record []string, key string) string {
		idx, ok := headerIdx[key]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var (
		totalRows   int
		createdRows int
		failures    []staffImportError
		created     []string
	)
	rowNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNum++
		if err != nil {
			failures = append(failures, staffImportError{Row: rowNum, Error: fmt.Sprintf("failed to read row: %v", err)})
			continue
		}
		totalRows++

		phone := getVal(row, "phone")
		staff, reason := staffFromRow(getVal, row)
		if reason != "" {
			failures = append(failures, staffImportError{Row: rowNum, Phone: phone, Error: reason})
			continue
		}
		if err := sc.DB.Create(&staff).Error; err != nil {
			reason := "failed to insert staff member"
			if isUniqueViolation(err) {
				reason = conflictField(err, staffUnique...) + " already exists"
			}
			failures = append(failures, staffImportError{Row: rowNum, Phone: phone, Error: reason})
			continue
		}
		created = append(created, staff.ID)
		createdRows++
	}

	for _, id := range created {
		publish(sc.Events, models.ResourceStaff, models.ActionCreated, id)
	}
	logger.FromContext(c.Request.Context()).Info("staff import finished",
		"rows", totalRows, "inserted", createdRows, "failed", len(failures))
	c.JSON(http.StatusOK, gin.H{
		"summary": gin.H{
			"total_rows": totalRows,
			"inserted":   createdRows,
			"failed":     len(failures),
		},
		"errors": failures,
	})
}

// staffFromRow builds a staff record from one CSV row, or explains why the
// row is rejected.
func staffFromRow(getVal func([]string, string) string, row []string) (models.Staff, string) {
	staff := models.Staff{
		Name:    getVal(row, "name"),
		Phone:   getVal(row, "phone"),
		Aadhaar: getVal(row, "aadhaar"),
		Role:    getVal(row, "role"),
		Gender:  getVal(row, "gender"),
		Address: getVal(row, "address"),
		Salary:  decimal.Zero,
	}
	if staff.Name == "" || staff.Phone == "" || staff.Aadhaar == "" || staff.Role == "" {
		return staff, "name, phone, aadhaar and role are required"
	}
	if len(staff.Phone) != 10 || !allDigits(staff.Phone) {
		return staff, "phone must be exactly 10 digits"
	}
	if len(staff.Aadhaar) != 12 || !allDigits(staff.Aadhaar) {
		return staff, "aadhaar must be exactly 12 digits"
	}
	if !slices.Contains(models.StaffRoles, staff.Role) {
		return staff, "invalid role"
	}
	if staff.Gender != "" && !slices.Contains(models.StaffGenders, staff.Gender) {
		return staff, "invalid gender"
	}
	if v := getVal(row, "salary"); v != "" {
		salary, err := decimal.NewFromString(v)
		if err != nil || salary.IsNegative() {
			return staff, "invalid salary"
		}
		staff.Salary = salary
	}
	if v := getVal(row, "dob"); v != "" {
		dob, err := parseDay("dob", v)
		if err != nil {
			return staff, "invalid dob, expected YYYY-MM-DD"
		}
		staff.DOB = dob
	}
	activeStr := getVal(row, "active")
	active, provided := parseBoolDefaultTrue(activeStr)
	if activeStr != "" && !provided {
		return staff, "invalid active value"
	}
	staff.Active = active
	return staff, ""
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
