package helper

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// QuestionOption представляет вариант ответа для фронтенда
type QuestionOption struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// ConvertOptionsToObjects преобразует массив строк в массив объектов с id и text.
// ID совпадает с индексом варианта, который ожидают SelectAnswer и CorrectAnswer.
func ConvertOptionsToObjects(options []string) []QuestionOption {
	converted := make([]QuestionOption, len(options))
	for i, opt := range options {
		if opt == "" {
			opt = "(пустой вариант)"
		}
		converted[i] = QuestionOption{ID: i, Text: opt}
	}
	return converted
}

// Pagination читает page и page_size из query и возвращает limit и offset
func Pagination(c *gin.Context, defaultSize, maxSize int) (page, pageSize, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	pageSize, err = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defaultSize)))
	if err != nil || pageSize < 1 || pageSize > maxSize {
		pageSize = defaultSize
	}
	return page, pageSize, (page - 1) * pageSize
}

// QueryBool разбирает булев query-параметр; некорректное значение дает false
func QueryBool(c *gin.Context, name string) bool {
	v, err := strconv.ParseBool(c.Query(name))
	return err == nil && v
}
