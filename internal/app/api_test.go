package app

import (
	"net/http"
	"strings"
	"testing"

	"mehndi_backend/internal/models"
	"mehndi_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\nfake-image")

func TestAPI_Health(t *testing.T) {
	ts := NewTestServer(t, testutil.Date(2024, 5, 1, 9, 0))

	res, body := ts.SendRequest(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "ok", decode(t, body)["status"])
	assert.NotEmpty(t, res.Header.Get("X-Request-ID"))
}

func TestAPI_AuthFlow(t *testing.T) {
	ts := NewTestServer(t, testutil.Date(2024, 5, 1, 9, 0))

	// 1. Регистрация
	regRes, regBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "aisha",
		"email":    "Aisha@Example.com",
		"password": "super_password123",
		"role":     "customer",
	})
	require.Equal(t, http.StatusCreated, regRes.StatusCode, string(regBody))
	tokens := decode(t, regBody)
	access, _ := tokens["access_token"].(string)
	refresh, _ := tokens["refresh_token"].(string)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)

	// 2. Повторная регистрация с тем же email
	dupRes, dupBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/register", "", map[string]interface{}{
		"username": "aisha2",
		"email":    "aisha@example.com",
		"password": "super_password123",
		"role":     "customer",
	})
	assert.Equal(t, http.StatusBadRequest, dupRes.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, dupBody))

	// 3. Профиль по access-токену
	meRes, meBody := ts.SendRequest(t, http.MethodGet, "/api/v1/users/me", access, nil)
	require.Equal(t, http.StatusOK, meRes.StatusCode)
	assert.Equal(t, "aisha", decode(t, meBody)["username"])

	// 4. Неверный пароль
	badRes, badBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/login", "", map[string]interface{}{
		"email":    "aisha@example.com",
		"password": "wrong_password",
	})
	assert.Equal(t, http.StatusUnauthorized, badRes.StatusCode)
	assert.Equal(t, "INVALID_CREDENTIALS", errorCode(t, badBody))

	// 5. Ротация refresh-токена: старый больше не принимается
	refRes, refBody := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{"refresh_token": refresh})
	require.Equal(t, http.StatusOK, refRes.StatusCode, string(refBody))
	rotated, _ := decode(t, refBody)["refresh_token"].(string)
	assert.NotEqual(t, refresh, rotated)

	againRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]interface{}{"refresh_token": refresh})
	assert.Equal(t, http.StatusUnauthorized, againRes.StatusCode)

	outRes, _ := ts.SendRequest(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]interface{}{"refresh_token": rotated})
	assert.Equal(t, http.StatusOK, outRes.StatusCode)
}

func TestAPI_AuthorizationGuards(t *testing.T) {
	ts := NewTestServer(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, ts.DB)
	designer := testutil.CreateDesigner(t, ts.DB, true)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		status int
	}{
		{"no token on protected", http.MethodGet, "/api/v1/users/me", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/api/v1/users/me", "not-a-jwt", http.StatusUnauthorized},
		{"customer on admin", http.MethodGet, "/api/v1/admin/dashboard", ts.TokenFor(t, customer), http.StatusForbidden},
		{"designer on admin", http.MethodGet, "/api/v1/admin/users", ts.TokenFor(t, designer), http.StatusForbidden},
		{"designer creates booking", http.MethodPost, "/api/v1/bookings", ts.TokenFor(t, designer), http.StatusForbidden},
		{"customer creates design", http.MethodPost, "/api/v1/designs", ts.TokenFor(t, customer), http.StatusForbidden},
		{"invalid optional token", http.MethodGet, "/api/v1/designs", "not-a-jwt", http.StatusUnauthorized},
		{"anonymous catalog", http.MethodGet, "/api/v1/designs", "", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, body := ts.SendRequest(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.status, res.StatusCode, string(body))
		})
	}
}

func TestAPI_DesignSubmissionAndModeration(t *testing.T) {
	ts := NewTestServer(t, testutil.Date(2024, 5, 1, 9, 0))
	designer := testutil.CreateDesigner(t, ts.DB, true)
	admin := testutil.CreateAdmin(t, ts.DB)
	customer := testutil.CreateCustomer(t, ts.DB)
	category := testutil.CreateCategory(t, ts.DB, "Bridal")

	// Неразрешенный тип файла
	badRes, badBody := ts.SendMultipart(t, http.MethodPost, "/api/v1/designs", ts.TokenFor(t, designer),
		map[string]string{"title": "Peacock"}, "notes.txt", "text/plain", []byte("hello"))
	assert.Equal(t, http.StatusUnsupportedMediaType, badRes.StatusCode, string(badBody))

	res, body := ts.SendMultipart(t, http.MethodPost, "/api/v1/designs", ts.TokenFor(t, designer),
		map[string]string{"title": "Peacock", "category_id": category.ID, "tags": "bridal, peacock"}, "peacock.png", "image/png", pngBytes)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	design := decode(t, body)
	designID := design["id"].(string)
	assert.Equal(t, "pending", design["status"])
	assert.True(t, strings.HasPrefix(design["image_url"].(string), "/media/designs/"))

	// На модерации дизайн не виден публично
	_, listBody := ts.SendRequest(t, http.MethodGet, "/api/v1/designs", "", nil)
	assert.EqualValues(t, 0, decode(t, listBody)["count"])

	getRes, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/designs/"+designID, ts.TokenFor(t, customer), nil)
	assert.Equal(t, http.StatusNotFound, getRes.StatusCode)

	// Одобрение администратором
	apRes, apBody := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/designs/"+designID+"/approve", ts.TokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, apRes.StatusCode, string(apBody))
	assert.Equal(t, "approved", decode(t, apBody)["status"])

	// Повторное одобрение - недопустимый переход
	againRes, againBody := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/designs/"+designID+"/approve", ts.TokenFor(t, admin), nil)
	assert.Equal(t, http.StatusConflict, againRes.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, againBody))

	_, listBody = ts.SendRequest(t, http.MethodGet, "/api/v1/designs", "", nil)
	assert.EqualValues(t, 1, decode(t, listBody)["count"])

	// Реакция и избранное
	reactRes, reactBody := ts.SendRequest(t, http.MethodPost, "/api/v1/designs/"+designID+"/react", ts.TokenFor(t, customer),
		map[string]interface{}{"reaction_type": "like"})
	require.Equal(t, http.StatusOK, reactRes.StatusCode, string(reactBody))
	assert.EqualValues(t, 1, decode(t, reactBody)["likes_count"])

	favRes, favBody := ts.SendRequest(t, http.MethodPost, "/api/v1/designs/"+designID+"/favorite", ts.TokenFor(t, customer), nil)
	require.Equal(t, http.StatusOK, favRes.StatusCode)
	assert.Equal(t, true, decode(t, favBody)["is_favorited"])

	_, favList := ts.SendRequest(t, http.MethodGet, "/api/v1/favorites", ts.TokenFor(t, customer), nil)
	assert.EqualValues(t, 1, decode(t, favList)["count"])

	// Картинка раздается как статика
	imgRes, imgBody := ts.SendRequest(t, http.MethodGet, design["image_url"].(string), "", nil)
	assert.Equal(t, http.StatusOK, imgRes.StatusCode)
	assert.Equal(t, pngBytes, imgBody)
}

func TestAPI_PaginationEnvelope(t *testing.T) {
	ts := NewTestServer(t, testutil.Date(2024, 5, 1, 9, 0))
	designer := testutil.CreateDesigner(t, ts.DB, true)
	for i := 0; i < 3; i++ {
		testutil.CreateDesign(t, ts.DB, designer.ID, models.DesignStatusApproved)
	}

	_, body := ts.SendRequest(t, http.MethodGet, "/api/v1/designs?page_size=2", "", nil)
	first := decode(t, body)
	assert.EqualValues(t, 3, first["count"])
	assert.Len(t, first["results"], 2)
	assert.Nil(t, first["previous"])
	require.NotNil(t, first["next"])
	assert.Contains(t, first["next"], "page=2")
	assert.True(t, strings.HasPrefix(first["next"].(string), "http://"))

	_, body = ts.SendRequest(t, http.MethodGet, "/api/v1/designs?page=2&page_size=2", "", nil)
	second := decode(t, body)
	assert.Len(t, second["results"], 1)
	assert.Nil(t, second["next"])
	require.NotNil(t, second["previous"])
	assert.NotContains(t, second["previous"], "page=")

	res, errBody := ts.SendRequest(t, http.MethodGet, "/api/v1/designs?page_size=500", "", nil)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, errBody))
}

func TestAPI_BookingFlow(t *testing.T) {
	ts := NewTestServer(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, ts.DB)
	other := testutil.CreateCustomer(t, ts.DB)
	designer := testutil.CreateDesigner(t, ts.DB, true)

	request := map[string]interface{}{
		"designer_id":    designer.ID,
		"booking_date":   "2024-06-01",
		"booking_time":   "10:00",
		"duration_hours": 3,
		"event_type":     "wedding",
		"location":       "Banquet hall",
	}

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/bookings", ts.TokenFor(t, customer), request)
	require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	bookingID := decode(t, body)["id"].(string)

	// Пересечение 12:00-14:00 с 10:00-13:00
	request["booking_time"] = "12:00"
	request["duration_hours"] = 2
	conflictRes, conflictBody := ts.SendRequest(t, http.MethodPost, "/api/v1/bookings", ts.TokenFor(t, other), request)
	require.Equal(t, http.StatusConflict, conflictRes.StatusCode)
	conflict := decode(t, conflictBody)["error"].(map[string]interface{})
	assert.Equal(t, "CONFLICT", conflict["code"])
	assert.Equal(t, bookingID, conflict["details"].(map[string]interface{})["conflicting_booking_id"])

	// Смежный слот 13:00 допустим
	request["booking_time"] = "13:00"
	adjRes, adjBody := ts.SendRequest(t, http.MethodPost, "/api/v1/bookings", ts.TokenFor(t, other), request)
	assert.Equal(t, http.StatusCreated, adjRes.StatusCode, string(adjBody))

	// Чужой клиент не видит бронирование
	hiddenRes, _ := ts.SendRequest(t, http.MethodGet, "/api/v1/bookings/"+bookingID, ts.TokenFor(t, other), nil)
	assert.Equal(t, http.StatusNotFound, hiddenRes.StatusCode)

	confRes, confBody := ts.SendRequest(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", ts.TokenFor(t, designer),
		map[string]interface{}{"status": "confirmed"})
	require.Equal(t, http.StatusOK, confRes.StatusCode, string(confBody))
	assert.Equal(t, "confirmed", decode(t, confBody)["status"])

	cancelRes, cancelBody := ts.SendRequest(t, http.MethodPost, "/api/v1/bookings/"+bookingID+"/cancel", ts.TokenFor(t, customer),
		map[string]interface{}{"reason": "Plans changed"})
	require.Equal(t, http.StatusOK, cancelRes.StatusCode, string(cancelBody))
	assert.Equal(t, "cancelled", decode(t, cancelBody)["status"])

	againRes, againBody := ts.SendRequest(t, http.MethodPatch, "/api/v1/bookings/"+bookingID+"/status", ts.TokenFor(t, designer),
		map[string]interface{}{"status": "confirmed"})
	assert.Equal(t, http.StatusConflict, againRes.StatusCode)
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, againBody))

	// Дизайнер видит оба входящих бронирования
	_, listBody := ts.SendRequest(t, http.MethodGet, "/api/v1/bookings", ts.TokenFor(t, designer), nil)
	assert.EqualValues(t, 2, decode(t, listBody)["count"])

	// Уведомления клиента: подтверждение
	_, countBody := ts.SendRequest(t, http.MethodGet, "/api/v1/notifications/unread-count", ts.TokenFor(t, customer), nil)
	assert.EqualValues(t, 1, decode(t, countBody)["unread_count"])

	readRes, readBody := ts.SendRequest(t, http.MethodPost, "/api/v1/notifications/read-all", ts.TokenFor(t, customer), nil)
	require.Equal(t, http.StatusOK, readRes.StatusCode)
	assert.EqualValues(t, 1, decode(t, readBody)["updated"])
}

func TestAPI_ReviewsAndDesignerApproval(t *testing.T) {
	ts := NewTestServer(t, testutil.Date(2024, 5, 1, 9, 0))
	customer := testutil.CreateCustomer(t, ts.DB)
	designer := testutil.CreateDesigner(t, ts.DB, false)
	admin := testutil.CreateAdmin(t, ts.DB)

	// Неодобренный дизайнер скрыт из каталога
	_, listBody := ts.SendRequest(t, http.MethodGet, "/api/v1/designers", "", nil)
	assert.EqualValues(t, 0, decode(t, listBody)["count"])

	_, pendingBody := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/designers/pending", ts.TokenFor(t, admin), nil)
	assert.EqualValues(t, 1, decode(t, pendingBody)["count"])

	apRes, apBody := ts.SendRequest(t, http.MethodPost, "/api/v1/admin/users/"+designer.ID+"/approve", ts.TokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, apRes.StatusCode, string(apBody))

	_, listBody = ts.SendRequest(t, http.MethodGet, "/api/v1/designers", "", nil)
	assert.EqualValues(t, 1, decode(t, listBody)["count"])

	for _, rating := range []int{5, 4} {
		res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/reviews", ts.TokenFor(t, customer), map[string]interface{}{
			"designer_id": designer.ID,
			"rating":      rating,
			"comment":     "Beautiful work",
		})
		require.Equal(t, http.StatusCreated, res.StatusCode, string(body))
	}

	_, ratingBody := ts.SendRequest(t, http.MethodGet, "/api/v1/designers/"+designer.ID+"/rating", "", nil)
	rating := decode(t, ratingBody)
	assert.EqualValues(t, 4.5, rating["average_rating"])
	assert.EqualValues(t, 2, rating["total_reviews"])

	invalidRes, invalidBody := ts.SendRequest(t, http.MethodPost, "/api/v1/reviews", ts.TokenFor(t, customer), map[string]interface{}{
		"designer_id": designer.ID,
		"rating":      6,
		"comment":     "Too good",
	})
	assert.Equal(t, http.StatusBadRequest, invalidRes.StatusCode)
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, invalidBody))

	_, reviewsBody := ts.SendRequest(t, http.MethodGet, "/api/v1/reviews?designer="+designer.ID, "", nil)
	assert.EqualValues(t, 2, decode(t, reviewsBody)["count"])
}

func TestAPI_AdminExportAndDashboard(t *testing.T) {
	ts := NewTestServer(t, testutil.Date(2024, 5, 1, 9, 0))
	admin := testutil.CreateAdmin(t, ts.DB)
	testutil.CreateDesigner(t, ts.DB, false)

	dashRes, dashBody := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/dashboard", ts.TokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, dashRes.StatusCode, string(dashBody))
	users := decode(t, dashBody)["users"].(map[string]interface{})
	assert.EqualValues(t, 1, users["pending_designers"])

	res, body := ts.SendRequest(t, http.MethodGet, "/api/v1/admin/bookings/export?date_from=2024-05-01&date_to=2024-05-31", ts.TokenFor(t, admin), nil)
	require.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, xlsxContentTypeForTest, res.Header.Get("Content-Type"))
	assert.Contains(t, res.Header.Get("Content-Disposition"), "bookings_2024-05-01_2024-05-31.xlsx")
	// xlsx - zip-архив
	assert.True(t, len(body) > 4 && string(body[:2]) == "PK")
}

const xlsxContentTypeForTest = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
