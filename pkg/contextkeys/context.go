package contextkeys

// Используем кастомный тип, чтобы избежать коллизий
type contextKey string

const (
	// DBContextKey - *gorm.DB (пул или транзакция)
	DBContextKey = contextKey("db")
	// UserIDKey - ID аутентифицированного пользователя в gin.Context
	UserIDKey = "userID"
	// RoleKey - роль аутентифицированного пользователя в gin.Context
	RoleKey = "role"
)
