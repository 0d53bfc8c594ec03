package utils

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/senyabanana/banner-auction/internal/models"
)

// holdMarker помечает отредактированный комментарий приостановленной заявки.
const holdMarker = "_This bid is on hold until a payment method is linked._"

// SendErrorResponse отправляет ошибку в формате JSON
func SendErrorResponse(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	errorResponse := models.ErrorResponse{
		StatusCode: statusCode,
		Message:    message,
	}
	if err := json.NewEncoder(w).Encode(errorResponse); err != nil {
		log.Println(err)
	}
}

// ContainsBidStatus - функция для проверки допустимости статуса заявки
func ContainsBidStatus(validStatuses []models.BidStatus, status models.BidStatus) bool {
	for _, validStatus := range validStatuses {
		if validStatus == status {
			return true
		}
	}
	return false
}

// ContainsString проверяет наличие строки в списке.
func ContainsString(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// AppendTrackingParams добавляет utm-метки к целевой ссылке победителя.
// Невалидная ссылка возвращается как есть.
func AppendTrackingParams(rawURL, periodID string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	query := parsed.Query()
	query.Set("utm_source", "banner-auction")
	query.Set("utm_campaign", periodID)
	parsed.RawQuery = query.Encode()
	return parsed.String()
}

// StrikeThroughComment зачёркивает строки комментария и добавляет пояснение.
func StrikeThroughComment(body string) string {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "~~") {
			continue
		}
		lines[i] = "~~" + line + "~~"
	}
	return strings.Join(lines, "\n") + "\n\n" + holdMarker
}

// RemoveStrikeThrough возвращает комментарий к исходному виду после восстановления заявки.
func RemoveStrikeThrough(body string) string {
	lines := strings.Split(body, "\n")
	restored := make([]string, 0, len(lines))
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == holdMarker {
			continue
		}
		if strings.HasPrefix(line, "~~") && strings.HasSuffix(line, "~~") && len(line) >= 4 {
			line = strings.TrimSuffix(strings.TrimPrefix(line, "~~"), "~~")
		}
		restored = append(restored, line)
	}
	return strings.TrimRight(strings.Join(restored, "\n"), "\n")
}
