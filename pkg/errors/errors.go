package errors

func (d Definition) Error() string {
	return d.Message
}

// Definition 表示业务错误码及默认信息。
type Definition struct {
	Code    string
	Message string
}

// 认证相关错误。
var (
	Unauthorized       = Definition{Code: "UNAUTHORIZED", Message: "Unauthorized"}
	InvalidCredentials = Definition{Code: "INVALID_CREDENTIALS", Message: "Invalid employee ID or password"}
	EmployeeIDTaken    = Definition{Code: "EMPLOYEE_ID_TAKEN", Message: "Employee ID already registered"}
	InvalidUserID      = Definition{Code: "INVALID_USER_ID", Message: "Invalid user ID format"}
)

// 班次模块错误。
var (
	ShiftNotFound      = Definition{Code: "SHIFT_NOT_FOUND", Message: "Shift not found"}
	ShiftTerminal      = Definition{Code: "SHIFT_TERMINAL", Message: "Shift is already completed or cancelled"}
	ShiftInProgress    = Definition{Code: "SHIFT_IN_PROGRESS", Message: "Cannot delete an in-progress shift"}
	StaffAlreadyOnDuty = Definition{Code: "STAFF_ALREADY_ON_DUTY", Message: "Staff already on duty"}
	StaffNotFound      = Definition{Code: "STAFF_NOT_FOUND", Message: "Staff not found"}
	InvalidPhone       = Definition{Code: "INVALID_PHONE", Message: "Invalid phone number"}
)

// 通用错误。
var (
	TooManyRequests = Definition{Code: "TOO_MANY_REQUESTS", Message: "Too many requests, please try again later"}
)

// 告警模块错误。
var (
	AlertTypeInvalid     = Definition{Code: "ALERT_TYPE_INVALID", Message: "Invalid alert type"}
	AlertResponseInvalid = Definition{Code: "ALERT_RESPONSE_INVALID", Message: "Invalid response for this alert type"}
	AlertNotSent         = Definition{Code: "ALERT_NOT_SENT", Message: "Cannot respond to an alert that was never sent"}
)

// Lookup 提供错误码查询能力。
var Lookup = map[string]Definition{
	Unauthorized.Code:         Unauthorized,
	InvalidCredentials.Code:   InvalidCredentials,
	EmployeeIDTaken.Code:      EmployeeIDTaken,
	InvalidUserID.Code:        InvalidUserID,
	ShiftNotFound.Code:        ShiftNotFound,
	ShiftTerminal.Code:        ShiftTerminal,
	ShiftInProgress.Code:      ShiftInProgress,
	StaffAlreadyOnDuty.Code:   StaffAlreadyOnDuty,
	StaffNotFound.Code:        StaffNotFound,
	InvalidPhone.Code:         InvalidPhone,
	AlertTypeInvalid.Code:     AlertTypeInvalid,
	AlertResponseInvalid.Code: AlertResponseInvalid,
	AlertNotSent.Code:         AlertNotSent,
	TooManyRequests.Code:      TooManyRequests,
}

// Get 根据错误码返回 Definition，若不存在则返回空 Definition。
func Get(code string) Definition {
	if def, ok := Lookup[code]; ok {
		return def
	}
	return Definition{Code: code, Message: "Unexpected error"}
}

// WithDetail 基于已有错误码生成带具体信息的副本，比如冲突时点名占用的乘务员。
func (d Definition) WithDetail(message string) Definition {
	return Definition{Code: d.Code, Message: message}
}

// SkipMessageError 表示消费者应当跳过（ack 而非重入队）的消息，比如重复投递。
type SkipMessageError struct {
	Reason string
}

func (e *SkipMessageError) Error() string {
	return e.Reason
}
