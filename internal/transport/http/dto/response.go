package dto

import "time"

// DisplayTimeLayout renders timestamps in responses.
const DisplayTimeLayout = "2006-01-02 15:04:05"

// EmptyTime stands in for timestamps that are not set yet.
const EmptyTime = "-"

const CodeSuccess = 200

// Response is the envelope of every JSON reply.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ErrorResponse struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse is a translated listing.
type PageResponse struct {
	Code  int                    `json:"code"`
	Page  int                    `json:"page"`
	Size  int                    `json:"size"`
	Total int64                  `json:"total"`
	Items interface{}            `json:"items"`
	Query map[string]interface{} `json:"query"`
}

func Success(data interface{}) Response {
	return Response{Code: CodeSuccess, Message: "success", Data: data}
}

func FormatTime(t time.Time) string {
	if t.IsZero() {
		return EmptyTime
	}
	return t.UTC().Format(DisplayTimeLayout)
}

func FormatTimePtr(t *time.Time) string {
	if t == nil {
		return EmptyTime
	}
	return FormatTime(*t)
}

// EchoQuery makes the effective filter JSON friendly.
func EchoQuery(q map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(q))
	for k, v := range q {
		out[k] = echoValue(v)
	}
	return out
}

func echoValue(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return FormatTime(val)
	case map[string]interface{}:
		return EchoQuery(val)
	default:
		return v
	}
}
