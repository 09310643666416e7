package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/zaqqye/salon_backoffice/internal/logger"
	"github.com/zaqqye/salon_backoffice/internal/models"
)

// Publisher receives a change event after every successful mutation.
type Publisher interface {
	Publish(ev models.ChangeEvent)
}

func publish(p Publisher, resource, action, id string) {
	if p == nil {
		return
	}
	p.Publish(models.ChangeEvent{Resource: resource, Action: action, ID: id, At: time.Now().UTC()})
}

var registerOnce sync.Once

// RegisterValidation makes binding errors report JSON field names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

func fail(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func failField(c *gin.Context, status int, field, msg string) {
	c.JSON(status, gin.H{"message": msg, "field": field})
}

// bindJSON binds the body into req and answers 400 on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		failField(c, http.StatusBadRequest, fe.Field(), fmt.Sprintf("%s %s", fe.Field(), ruleMessage(fe)))
		return false
	}
	var ferr *fieldError
	if errors.As(err, &ferr) {
		failField(c, http.StatusBadRequest, ferr.field, ferr.Error())
		return false
	}
	fail(c, http.StatusBadRequest, "invalid request body: "+err.Error())
	return false
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "len":
		return "must have length " + fe.Param()
	case "numeric":
		return "must contain only digits"
	}
	return "is invalid"
}

type fieldError struct {
	field string
	msg   string
}

func (e *fieldError) Error() string { return e.field + " " + e.msg }

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// conflictField guesses which of fields a unique violation is about.
func conflictField(err error, fields ...string) string {
	text := err.Error()
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		text = pgErr.ConstraintName + " " + pgErr.Detail
	}
	for _, f := range fields {
		if strings.Contains(text, f) {
			return f
		}
	}
	if len(fields) > 0 {
		return fields[0]
	}
	return ""
}

// storeFailed maps a persistence error to a response: 404 for a missing
// record, 409 for a unique violation, 500 otherwise.
func storeFailed(c *gin.Context, err error, what string, uniqueFields ...string) {
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		fail(c, http.StatusNotFound, what+" not found")
	case isUniqueViolation(err):
		field := conflictField(err, uniqueFields...)
		failField(c, http.StatusConflict, field, fmt.Sprintf("%s with this %s already exists", what, field))
	default:
		logger.FromContext(c.Request.Context()).Error("store failed", "what", what, "err", err)
		fail(c, http.StatusInternalServerError, "failed to save "+what)
	}
}

// listQuery holds the list parameters every collection accepts: limit,
// page, all, sort_by, sort_dir and q.
type listQuery struct {
	All     bool
	Limit   int
	Page    int
	SortCol string
	SortDir string
	Q       string
}

func parseListQuery(c *gin.Context, allowedSorts map[string]string, defaultSort, defaultDir string) listQuery {
	q := listQuery{
		All:   strings.EqualFold(c.Query("all"), "true") || c.Query("all") == "1",
		Limit: 20,
		Page:  1,
		Q:     strings.TrimSpace(c.Query("q")),
	}
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Limit = min(n, 200)
		}
	}
	if v := c.Query("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	sortCol, ok := allowedSorts[strings.ToLower(c.Query("sort_by"))]
	if !ok {
		sortCol = allowedSorts[defaultSort]
	}
	q.SortCol = sortCol
	q.SortDir = strings.ToUpper(c.DefaultQuery("sort_dir", defaultDir))
	if q.SortDir != "ASC" && q.SortDir != "DESC" {
		q.SortDir = defaultDir
	}
	return q
}

// page orders db and, unless all was requested, limits it to one page.
func (q listQuery) page(db *gorm.DB) *gorm.DB {
	db = db.Order(fmt.Sprintf("%s %s", q.SortCol, q.SortDir))
	if !q.All {
		db = db.Offset((q.Page - 1) * q.Limit).Limit(q.Limit)
	}
	return db
}

func (q listQuery) meta(total int64) gin.H {
	meta := gin.H{"total": total, "all": q.All, "sort_by": q.SortCol, "sort_dir": q.SortDir}
	if !q.All {
		meta["limit"] = q.Limit
		meta["page"] = q.Page
	}
	if q.Q != "" {
		meta["q"] = q.Q
	}
	return meta
}

// search adds a case-insensitive substring match over cols.
func search(db *gorm.DB, term string, cols ...string) *gorm.DB {
	if term == "" || len(cols) == 0 {
		return db
	}
	like := "%" + strings.ToLower(term) + "%"
	clauses := make([]string, 0, len(cols))
	args := make([]any, 0, len(cols))
	for _, col := range cols {
		clauses = append(clauses, "LOWER("+col+") LIKE ?")
		args = append(args, like)
	}
	return db.Where(strings.Join(clauses, " OR "), args...)
}

// activeFilter applies ?active=true|false. ok is false for any other value.
func activeFilter(c *gin.Context, db *gorm.DB) (*gorm.DB, bool) {
	switch strings.TrimSpace(strings.ToLower(c.Query("active"))) {
	case "":
		return db, true
	case "true", "1", "active":
		return db.Where("active = ?", true), true
	case "false", "0", "inactive":
		return db.Where("active = ?", false), true
	}
	return db, false
}

type activeRequest struct {
	Active *bool `json:"active" binding:"required"`
}

// setActive serves PATCH /:id/status for the entities with an Active flag.
// preload names associations to return with the record.
func setActive[T any](c *gin.Context, db *gorm.DB, pub Publisher, resource, what string, preload ...string) {
	id := strings.TrimSpace(c.Param("id"))
	var req activeRequest
	if !bindJSON(c, &req) {
		return
	}
	var rec T
	if err := db.Where("id = ?", id).First(&rec).Error; err != nil {
		storeFailed(c, err, what)
		return
	}
	if err := db.Model(&rec).Update("active", *req.Active).Error; err != nil {
		storeFailed(c, err, what)
		return
	}
	q := db
	for _, assoc := range preload {
		q = q.Preload(assoc)
	}
	if err := q.Where("id = ?", id).First(&rec).Error; err != nil {
		storeFailed(c, err, what)
		return
	}
	publish(pub, resource, models.ActionStatus, id)
	c.JSON(http.StatusOK, gin.H{"message": "status updated", "data": rec})
}

// deleteByID serves DELETE /:id, answering 404 when nothing was removed.
func deleteByID[T any](c *gin.Context, db *gorm.DB, pub Publisher, resource, what string) {
	id := strings.TrimSpace(c.Param("id"))
	res := db.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		storeFailed(c, res.Error, what)
		return
	}
	if res.RowsAffected == 0 {
		fail(c, http.StatusNotFound, what+" not found")
		return
	}
	publish(pub, resource, models.ActionDeleted, id)
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func activeOr(b *bool, def bool) bool {
	if b == nil {
		return def
	}
	return *b
}

// parseDay parses a YYYY-MM-DD (or RFC3339) query value into a day.
func parseDay(field, s string) (time.Time, error) {
	t, err := models.ParseTime(s)
	if err != nil {
		return time.Time{}, &fieldError{field: field, msg: "must be a date as YYYY-MM-DD"}
	}
	return models.DayOf(t), nil
}
