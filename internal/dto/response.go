package dto

// Response is the envelope wrapping every API response body
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// CodeSuccess marks a successful response
const CodeSuccess = 0

// Success wraps data in a successful envelope
func Success(data interface{}) Response {
	return Response{Code: CodeSuccess, Message: "success", Data: data}
}

// SuccessMessage is a successful envelope carrying only a message
func SuccessMessage(message string) Response {
	return Response{Code: CodeSuccess, Message: message}
}

// Fail builds an error envelope
func Fail(code int, message string, data interface{}) Response {
	return Response{Code: code, Message: message, Data: data}
}
