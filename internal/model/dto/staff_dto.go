package dto

// ========== Staff 相关 DTO ==========

// CreateStaffRequest 手工登记乘务员
type CreateStaffRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	StaffType   string `json:"staff_type" binding:"required"` // LOCO_PILOT / TRAIN_MANAGER
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	HomeStation string `json:"home_station"`
}

// ListStaffQuery 乘务员列表查询参数
type ListStaffQuery struct {
	StaffType string `query:"staff_type"`
	Status    string `query:"status"`
	Page      int    `query:"page"`
	Limit     int    `query:"limit"`
}
