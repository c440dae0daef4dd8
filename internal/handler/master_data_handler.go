package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-journal-api/internal/models"
	"github.com/noah-isme/sma-journal-api/internal/service"
	appErrors "github.com/noah-isme/sma-journal-api/pkg/errors"
	"github.com/noah-isme/sma-journal-api/pkg/response"
)

// MasterDataHandler serves the read-only master-data views.
type MasterDataHandler struct {
	master *service.MasterDataService
}

// NewMasterDataHandler constructs a master-data handler.
func NewMasterDataHandler(master *service.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{master: master}
}

// ListSchedule godoc
// @Summary List weekly schedule assignment versions
// @Tags MasterData
// @Produce json
// @Param teacherId query string false "Filter by teacher"
// @Param day query string false "Filter by day (MONDAY..SUNDAY)"
// @Param class query string false "Filter by class name"
// @Param active query bool false "Filter by active flag"
// @Success 200 {object} response.Envelope
// @Router /schedule [get]
func (h *MasterDataHandler) ListSchedule(c *gin.Context) {
	filter := models.ScheduleAssignmentFilter{
		TeacherID: c.Query("teacherId"),
		DayOfWeek: models.DayOfWeek(strings.ToUpper(strings.TrimSpace(c.Query("day")))),
		ClassName: c.Query("class"),
	}
	if active := c.Query("active"); active != "" {
		value := strings.EqualFold(active, "true")
		filter.Active = &value
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("pageSize", "20")); err == nil {
		filter.PageSize = size
	}

	list, total, err := h.master.ListScheduleAssignments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	page, size := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if size <= 0 || size > 100 {
		size = 20
	}
	response.JSON(c, http.StatusOK, list, &models.Pagination{
		Page:       page,
		PageSize:   size,
		TotalItems: total,
		TotalPages: (total + size - 1) / size,
	})
}

// ListHolidays godoc
// @Summary List holidays within a date range
// @Tags MasterData
// @Produce json
// @Param startDate query string true "Range start (YYYY-MM-DD)"
// @Param endDate query string true "Range end (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /holidays [get]
func (h *MasterDataHandler) ListHolidays(c *gin.Context) {
	start, err := time.ParseInLocation("2006-01-02", c.Query("startDate"), time.UTC)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "startDate must be formatted YYYY-MM-DD"))
		return
	}
	end, err := time.ParseInLocation("2006-01-02", c.Query("endDate"), time.UTC)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "endDate must be formatted YYYY-MM-DD"))
		return
	}

	list, err := h.master.ListHolidays(c.Request.Context(), start, end)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}

// ListTimeSlots godoc
// @Summary List the hour-to-clock-time mapping for a program
// @Tags MasterData
// @Produce json
// @Param program query string false "Program track (defaults to Regular)"
// @Success 200 {object} response.Envelope
// @Router /time-slots [get]
func (h *MasterDataHandler) ListTimeSlots(c *gin.Context) {
	list, err := h.master.ListTimeSlots(c.Request.Context(), c.Query("program"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, list, nil)
}
