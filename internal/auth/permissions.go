package auth

// Разрешения по ролям
const (
	PermDesignsSubmit    = "designs:submit"
	PermDesignsModerate  = "designs:moderate"
	PermDesignsDeleteAny = "designs:delete:any"
	PermBookingsCreate   = "bookings:create"
	PermBookingsComplete = "bookings:complete:any"
	PermBookingsReadAll  = "bookings:read:any"
	PermReviewsCreate    = "reviews:create"
	PermReviewsRespond   = "reviews:respond"
	PermReviewsReport    = "reviews:report"
	PermReviewsModerate  = "reviews:moderate"
	PermUsersApprove     = "users:approve"
	PermUsersDelete      = "users:delete"
	PermCategoriesWrite  = "categories:write"
)

// Permissions список разрешений
var Permissions = map[string][]string{
	"admin": {
		PermDesignsModerate,
		PermDesignsDeleteAny,
		PermBookingsComplete,
		PermBookingsReadAll,
		PermReviewsModerate,
		PermUsersApprove,
		PermUsersDelete,
		PermCategoriesWrite,
	},
	"designer": {
		PermDesignsSubmit,
		PermReviewsRespond,
		PermReviewsReport,
	},
	"customer": {
		PermBookingsCreate,
		PermReviewsCreate,
	},
}

// HasPermission проверяет есть ли у роли указанное разрешение
func HasPermission(role, permission string) bool {
	for _, p := range Permissions[role] {
		if p == permission {
			return true
		}
	}
	return false
}
