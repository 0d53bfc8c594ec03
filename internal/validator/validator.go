package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/senyabanana/banner-auction/internal/models"
)

var (
	fencedBlockRe = regexp.MustCompile("(?s)```[a-zA-Z]*\\s*\\n(.*?)```")
	emailRe       = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	handleRe      = regexp.MustCompile(`^@[A-Za-z0-9](?:[A-Za-z0-9-]{0,38})$`)
)

// requiredFields - обязательные ключи внутри блока заявки.
var requiredFields = []string{"amount", "banner_url", "destination_url", "contact"}

// ParsedBid представляет структурированную заявку, извлечённую из комментария.
type ParsedBid struct {
	Amount         int64
	BannerURL      string
	DestinationURL string
	Contact        string
}

// FieldError описывает нарушение правила с привязкой к полю заявки.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationResult представляет накопленный итог проверки заявки.
type ValidationResult struct {
	Valid  bool
	Errors []FieldError
}

// ErrorMessages возвращает все нарушения одной строкой для ответа участнику.
func (r ValidationResult) ErrorMessages() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(parts, "; ")
}

// ParseBid извлекает заявку из текста комментария.
// Любое отсутствующее или нечитаемое поле - отказ целиком, без частичного результата.
func ParseBid(body string) (*ParsedBid, error) {
	match := fencedBlockRe.FindStringSubmatch(body)
	if match == nil {
		return nil, fmt.Errorf("comment does not contain a fenced bid block")
	}

	fields := make(map[string]string)
	for _, line := range strings.Split(match[1], "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		fields[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}

	for _, field := range requiredFields {
		if fields[field] == "" {
			return nil, fmt.Errorf("bid block is missing required field %q", field)
		}
	}

	amount, err := strconv.ParseInt(fields["amount"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("bid field \"amount\" must be a number")
	}

	return &ParsedBid{
		Amount:         amount,
		BannerURL:      fields["banner_url"],
		DestinationURL: fields["destination_url"],
		Contact:        fields["contact"],
	}, nil
}

// ValidateBid проверяет заявку по правилам политики.
// Проверки независимые, нарушения накапливаются, а не обрываются на первом.
func ValidateBid(bid *ParsedBid, policy models.Policy) ValidationResult {
	var errs []FieldError

	if bid.Amount < policy.MinimumBid {
		errs = append(errs, FieldError{
			Field:   "amount",
			Message: fmt.Sprintf("must be at least $%d", policy.MinimumBid),
		})
	}
	if policy.BidIncrement > 0 && bid.Amount%policy.BidIncrement != 0 {
		errs = append(errs, FieldError{
			Field:   "amount",
			Message: fmt.Sprintf("must be a multiple of $%d", policy.BidIncrement),
		})
	}
	if !validHTTPURL(bid.BannerURL) {
		errs = append(errs, FieldError{Field: "banner_url", Message: "must be a valid http(s) URL"})
	}
	if !validHTTPURL(bid.DestinationURL) {
		errs = append(errs, FieldError{Field: "destination_url", Message: "must be a valid http(s) URL"})
	}
	if !emailRe.MatchString(bid.Contact) && !handleRe.MatchString(bid.Contact) {
		errs = append(errs, FieldError{Field: "contact", Message: "must be an email address or a @handle"})
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func validHTTPURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}
