package handler

import (
	"encoding/csv"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/domain/entity"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/handler/helper"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/middleware"
	"github.com/RoutinizeWellness/aviate-ace-sub001/internal/service"
)

// ReviewHandler отдает журнал ошибок пользователя
type ReviewHandler struct {
	examService *service.ExamService
}

// NewReviewHandler создает обработчик журнала ошибок
func NewReviewHandler(examService *service.ExamService) *ReviewHandler {
	return &ReviewHandler{examService: examService}
}

var missedHeaders = []string{"Вопрос", "ID", "Категория", "Тип ВС", "Сложность", "Выбрано", "Правильно", "Ошибок", "Разобрано", "Последняя ошибка"}

// ListMissed возвращает журнал ошибок
// GET /api/review/missed?include_resolved=true
func (h *ReviewHandler) ListMissed(c *gin.Context) {
	entries, err := h.examService.ListMissed(c.Request.Context(), c.GetString(middleware.UserIDKey), helper.QueryBool(c, "include_resolved"))
	if err != nil {
		handleError(c, err)
		return
	}

	unresolved := 0
	for _, e := range entries {
		if !e.Resolved {
			unresolved++
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"missed":     entries,
		"total":      len(entries),
		"unresolved": unresolved,
	})
}

// ExportMissed экспортирует журнал ошибок в CSV или Excel
// GET /api/review/missed/export?format=csv|xlsx
func (h *ReviewHandler) ExportMissed(c *gin.Context) {
	userID := c.GetString(middleware.UserIDKey)
	format := c.DefaultQuery("format", "xlsx")

	entries, err := h.examService.ListMissed(c.Request.Context(), userID, true)
	if err != nil {
		handleError(c, err)
		return
	}

	filename := fmt.Sprintf("missed_questions_%s", time.Now().Format("2006-01-02"))

	switch format {
	case "csv":
		h.exportCSV(c, entries, filename)
	default:
		h.exportXLSX(c, entries, filename)
	}
}

func missedRow(m entity.MissedQuestion) []string {
	resolved := "Нет"
	if m.Resolved {
		resolved = "Да"
	}
	return []string{
		sanitizeForExcel(m.QuestionText),
		m.QuestionID,
		sanitizeForExcel(m.Category),
		m.Aircraft,
		string(m.Difficulty),
		optionLetter(m.SelectedAnswer),
		optionLetter(m.CorrectAnswer),
		strconv.Itoa(m.MissCount),
		resolved,
		m.LastMissedAt.Format("2006-01-02 15:04"),
	}
}

// exportCSV экспортирует журнал в CSV с правильным экранированием спецсимволов
func (h *ReviewHandler) exportCSV(c *gin.Context, entries []entity.MissedQuestion, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.csv\"", filename))

	// BOM для корректного отображения UTF-8 в Excel
	c.Writer.Write([]byte{0xEF, 0xBB, 0xBF})

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write(missedHeaders)
	for _, m := range entries {
		writer.Write(missedRow(m))
	}
}

// exportXLSX экспортирует журнал в Excel с использованием StreamWriter
func (h *ReviewHandler) exportXLSX(c *gin.Context, entries []entity.MissedQuestion, filename string) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Ошибки"
	f.SetSheetName("Sheet1", sheetName)

	sw, err := f.NewStreamWriter(sheetName)
	if err != nil {
		log.Printf("[ReviewHandler] Ошибка создания StreamWriter: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	if err := sw.SetColWidth(1, 1, 60); err != nil {
		log.Printf("[ReviewHandler] Ошибка установки ширины колонки: %v", err)
	}

	headers := make([]interface{}, len(missedHeaders))
	for i, name := range missedHeaders {
		headers[i] = name
	}
	if err := sw.SetRow("A1", headers); err != nil {
		log.Printf("[ReviewHandler] Ошибка записи заголовков: %v", err)
	}

	for i, m := range entries {
		rowNum := i + 2
		values := missedRow(m)
		row := make([]interface{}, len(values))
		for j, v := range values {
			row[j] = v
		}
		// Счетчик ошибок пишем числом
		row[7] = m.MissCount
		if err := sw.SetRow(fmt.Sprintf("A%d", rowNum), row); err != nil {
			log.Printf("[ReviewHandler] Ошибка записи строки %d: %v", rowNum, err)
		}
	}

	if err := sw.Flush(); err != nil {
		log.Printf("[ReviewHandler] Ошибка при Flush: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create Excel file"})
		return
	}

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s.xlsx\"", filename))
	if err := f.Write(c.Writer); err != nil {
		log.Printf("[ReviewHandler] Ошибка записи Excel в response: %v", err)
	}
}

// optionLetter переводит индекс варианта в букву A-D
func optionLetter(index int) string {
	if index < 0 || index >= entity.RequiredOptions {
		return strconv.Itoa(index)
	}
	return string(rune('A' + index))
}

// sanitizeForExcel экранирует данные для защиты от formula injection в Excel/CSV
func sanitizeForExcel(s string) string {
	if len(s) == 0 {
		return s
	}
	// Символы, начинающие формулу в Excel/LibreOffice: = + - @ \t \r
	if s[0] == '=' || s[0] == '+' || s[0] == '-' || s[0] == '@' || s[0] == '\t' || s[0] == '\r' {
		return "'" + s
	}
	return s
}
