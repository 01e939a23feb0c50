package models

// SignupRequest - тело запроса POST /signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest - тело запроса POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse - тело ответа POST /login.
type TokenResponse struct {
	Token string `json:"token"`
}

// UserStats - агрегированная статистика чтения пользователя.
type UserStats struct {
	TotalWordCount     int            `json:"total_word_count"`
	TodayWordCount     int            `json:"today_word_count"`
	WeeklyWordCount    int            `json:"weekly_word_count"`
	MonthlyWordCount   int            `json:"monthly_word_count"`
	YearlyWordCount    int            `json:"yearly_word_count"`
	Last7DaysWordCount map[string]int `json:"last_7_days_word_count"`
}
