package dto

// ========== Auth 相关 DTO ==========

// RegisterRequest 注册操作员账号
type RegisterRequest struct {
	EmployeeID  string `json:"employee_id" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Email       string `json:"email" binding:"required"`
	Phone       string `json:"phone"`
	Password    string `json:"password" binding:"required"`
	Division    string `json:"division"`
	Designation string `json:"designation"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	EmployeeID string `json:"employee_id" binding:"required"`
	Password   string `json:"password" binding:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// TokenResponse 令牌对
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// UserView 登录用户视图
type UserView struct {
	ID          int64  `json:"id"`
	EmployeeID  string `json:"employee_id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	Division    string `json:"division"`
	Designation string `json:"designation"`
}

// LoginResponse 登录成功返回令牌与用户信息
type LoginResponse struct {
	TokenResponse
	User UserView `json:"user"`
}
