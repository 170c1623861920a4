package services

import (
	"bytes"
	"context"
	"fmt"

	"mehndi_backend/internal/logger"
	"mehndi_backend/internal/models"
	"mehndi_backend/internal/repositories"
	"mehndi_backend/internal/services/dto"
	"mehndi_backend/pkg/apperrors"

	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

const bookingsSheet = "Bookings"

var bookingExportHeaders = []string{
	"ID", "Date", "Time", "Duration (h)", "Status",
	"Customer", "Customer email", "Designer", "Designer email",
	"Event type", "Location", "Estimated price", "Created at",
}

// ExportService выгружает бронирования за период в xlsx
type ExportService interface {
	ExportBookings(ctx context.Context, db *gorm.DB, actor Actor, query dto.BookingExportQuery) ([]byte, error)
}

type exportService struct {
	bookingRepo repositories.BookingRepository
}

func NewExportService(bookingRepo repositories.BookingRepository) ExportService {
	return &exportService{bookingRepo: bookingRepo}
}

func (s *exportService) ExportBookings(ctx context.Context, db *gorm.DB, actor Actor, query dto.BookingExportQuery) ([]byte, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.ErrInsufficientPermissions
	}
	from, to, err := parseDateRange(query.DateFrom, query.DateTo)
	if err != nil {
		return nil, err
	}

	bookings, err := s.bookingRepo.FindInRange(db, from, to)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	f := excelize.NewFile()
	defer f.Close()

	// Лист по умолчанию переименовывается, чтобы книга содержала один лист
	if err := f.SetSheetName(f.GetSheetName(0), bookingsSheet); err != nil {
		return nil, apperrors.InternalError(err)
	}

	// Заголовки
	for i, h := range bookingExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(bookingsSheet, cell, h)
	}
	style, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(bookingExportHeaders), 1)
		f.SetCellStyle(bookingsSheet, "A1", last, style)
	}

	for i := range bookings {
		row := bookingExportRow(&bookings[i])
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(bookingsSheet, cell, &row); err != nil {
			return nil, apperrors.InternalError(err)
		}
	}
	f.SetColWidth(bookingsSheet, "A", "A", 38)
	f.SetColWidth(bookingsSheet, "F", "K", 22)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "Bookings exported", "rows", len(bookings), "admin_id", actor.ID)
	return buf.Bytes(), nil
}

func bookingExportRow(b *models.Booking) []interface{} {
	customer, customerEmail := partyCells(b.Customer)
	designer, designerEmail := partyCells(b.Designer)

	var price interface{} = ""
	if b.EstimatedPrice != nil {
		price = *b.EstimatedPrice
	}

	return []interface{}{
		b.ID,
		b.StartsAt.Format(dto.DateLayout),
		b.StartsAt.Format(dto.TimeLayout),
		b.DurationHours,
		string(b.Status),
		customer,
		customerEmail,
		designer,
		designerEmail,
		b.EventType,
		b.Location,
		price,
		b.CreatedAt.UTC().Format("2006-01-02 15:04"),
	}
}

func partyCells(u *models.User) (string, string) {
	if u == nil {
		return "", ""
	}
	name := fmt.Sprintf("%s %s", u.FirstName, u.LastName)
	if u.FirstName == "" && u.LastName == "" {
		name = u.Username
	}
	return name, u.Email
}
