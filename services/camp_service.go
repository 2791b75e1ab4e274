package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/medcamp/camp-system/models"
	"github.com/medcamp/camp-system/repositories"
	"github.com/medcamp/camp-system/storage"
)

// SortKey задаёт сортировку каталога. Значения совпадают с параметром
// sortBy, который исторически присылает фронтенд.
type SortKey string

const (
	SortDefault        SortKey = "default"
	SortMostRegistered SortKey = "mostRegistered"
	SortCampFees       SortKey = "campFees"
	SortAlphabetical   SortKey = "alphabetical"
)

type CampInput struct {
	Name        string  `json:"campName"`
	ImageURL    *string `json:"image"`
	Location    string  `json:"location"`
	DateTime    string  `json:"dateTime"`
	Fees        float64 `json:"fees"`
	DoctorName  string  `json:"doctorName"`
	Description string  `json:"description"`
}

type CampService interface {
	CreateCamp(ctx context.Context, input CampInput, organizerEmail string) (*models.Camp, error)
	UpdateCamp(ctx context.Context, id int, input CampInput, organizerEmail string) (*models.Camp, error)
	DeleteCamp(ctx context.Context, id int, organizerEmail string) error
	GetCamp(ctx context.Context, id int) (*models.Camp, error)
	ListCamps(ctx context.Context, search string, sortBy SortKey) ([]models.Camp, error)
	ListAvailableCamps(ctx context.Context, search string, sortBy SortKey) ([]models.Camp, error)
	ListOrganizerCamps(ctx context.Context, organizerEmail string) ([]models.Camp, error)
	UploadCampImage(ctx context.Context, file io.Reader, contentType string) (string, error)
	RefreshStatuses(ctx context.Context, now time.Time) (int64, error)
}

type campService struct {
	campRepo repositories.CampRepository
	uploader storage.FileUploader
}

func NewCampService(campRepo repositories.CampRepository, uploader storage.FileUploader) CampService {
	return &campService{
		campRepo: campRepo,
		uploader: uploader,
	}
}

func validateCampInput(input CampInput) (time.Time, error) {
	if strings.TrimSpace(input.Name) == "" ||
		strings.TrimSpace(input.Location) == "" ||
		strings.TrimSpace(input.DoctorName) == "" ||
		strings.TrimSpace(input.Description) == "" {
		return time.Time{}, ErrCampFieldsRequired
	}
	if input.Fees < 0 {
		return time.Time{}, ErrCampNegativeFees
	}

	dateTime, err := parseCampDate(input.DateTime)
	if err != nil {
		return time.Time{}, ErrCampInvalidDate
	}
	return dateTime, nil
}

// parseCampDate принимает форматы, которые встречаются у клиентов:
// RFC3339 от новых форм и "YYYY-MM-DDTHH:MM" от datetime-local инпутов.
func parseCampDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty date")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported date format: %q", raw)
}

func statusForDate(dateTime time.Time, now time.Time) models.CampStatus {
	switch {
	case dateTime.After(now):
		return models.CampStatusUpcoming
	case dateTime.After(now.Add(-24 * time.Hour)):
		return models.CampStatusOngoing
	default:
		return models.CampStatusCompleted
	}
}

func (s *campService) CreateCamp(ctx context.Context, input CampInput, organizerEmail string) (*models.Camp, error) {
	dateTime, err := validateCampInput(input)
	if err != nil {
		return nil, err
	}

	camp := &models.Camp{
		Name:           strings.TrimSpace(input.Name),
		ImageURL:       input.ImageURL,
		Location:       strings.TrimSpace(input.Location),
		DateTime:       dateTime,
		Fees:           input.Fees,
		DoctorName:     strings.TrimSpace(input.DoctorName),
		Description:    strings.TrimSpace(input.Description),
		OrganizerEmail: normalizeEmail(organizerEmail),
		Status:         statusForDate(dateTime, time.Now()),
	}

	if err := s.campRepo.Create(ctx, camp); err != nil {
		return nil, fmt.Errorf("failed to create camp: %w", err)
	}
	return camp, nil
}

func (s *campService) UpdateCamp(ctx context.Context, id int, input CampInput, organizerEmail string) (*models.Camp, error) {
	dateTime, err := validateCampInput(input)
	if err != nil {
		return nil, err
	}

	camp, err := s.campRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCampNotFound) {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("failed to load camp: %w", err)
	}
	if camp.OrganizerEmail != normalizeEmail(organizerEmail) {
		return nil, ErrNotCampOwner
	}

	camp.Name = strings.TrimSpace(input.Name)
	if input.ImageURL != nil {
		camp.ImageURL = input.ImageURL
	}
	camp.Location = strings.TrimSpace(input.Location)
	camp.DateTime = dateTime
	camp.Fees = input.Fees
	camp.DoctorName = strings.TrimSpace(input.DoctorName)
	camp.Description = strings.TrimSpace(input.Description)
	camp.Status = statusForDate(dateTime, time.Now())

	if err := s.campRepo.Update(ctx, camp); err != nil {
		return nil, fmt.Errorf("failed to update camp: %w", err)
	}
	return camp, nil
}

func (s *campService) DeleteCamp(ctx context.Context, id int, organizerEmail string) error {
	camp, err := s.campRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCampNotFound) {
			return ErrCampNotFound
		}
		return fmt.Errorf("failed to load camp: %w", err)
	}
	if camp.OrganizerEmail != normalizeEmail(organizerEmail) {
		return ErrNotCampOwner
	}

	if err := s.campRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete camp: %w", err)
	}
	return nil
}

func (s *campService) GetCamp(ctx context.Context, id int) (*models.Camp, error) {
	camp, err := s.campRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrCampNotFound) {
			return nil, ErrCampNotFound
		}
		return nil, fmt.Errorf("failed to get camp: %w", err)
	}
	return camp, nil
}

func (s *campService) ListCamps(ctx context.Context, search string, sortBy SortKey) ([]models.Camp, error) {
	camps, err := s.campRepo.List(ctx, repositories.ListCampsFilter{})
	if err != nil {
		return nil, err
	}
	return SortCamps(FilterCamps(camps, search), sortBy), nil
}

func (s *campService) ListAvailableCamps(ctx context.Context, search string, sortBy SortKey) ([]models.Camp, error) {
	camps, err := s.campRepo.List(ctx, repositories.ListCampsFilter{
		Statuses: []models.CampStatus{models.CampStatusUpcoming, models.CampStatusOngoing},
	})
	if err != nil {
		return nil, err
	}
	return SortCamps(FilterCamps(camps, search), sortBy), nil
}

func (s *campService) ListOrganizerCamps(ctx context.Context, organizerEmail string) ([]models.Camp, error) {
	email := normalizeEmail(organizerEmail)
	return s.campRepo.List(ctx, repositories.ListCampsFilter{OrganizerEmail: &email})
}

func (s *campService) UploadCampImage(ctx context.Context, file io.Reader, contentType string) (string, error) {
	key := fmt.Sprintf("camps/%s", uuid.NewString())
	result, err := s.uploader.Upload(ctx, key, contentType, file)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrImageUpload, err)
	}
	return result.Location, nil
}

func (s *campService) RefreshStatuses(ctx context.Context, now time.Time) (int64, error) {
	return s.campRepo.UpdateStatuses(ctx, now)
}

// FilterCamps фильтрует лагеря по подстроке без учёта регистра; совпадение
// ищется в названии, локации и дате (ИЛИ по полям). Пустой запрос возвращает
// вход без изменений, относительный порядок сохраняется.
func FilterCamps(camps []models.Camp, term string) []models.Camp {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return camps
	}

	filtered := make([]models.Camp, 0, len(camps))
	for _, c := range camps {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Location), term) ||
			strings.Contains(strings.ToLower(c.DateTime.Format("2006-01-02 15:04")), term) ||
			strings.Contains(strings.ToLower(c.DateTime.Format("January 2, 2006")), term) {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

// SortCamps сортирует копию среза по ключу. Сортировка стабильная: при
// равенстве ключей сохраняется исходный порядок выборки. Неизвестный ключ
// оставляет порядок как есть.
func SortCamps(camps []models.Camp, key SortKey) []models.Camp {
	sorted := make([]models.Camp, len(camps))
	copy(sorted, camps)

	switch key {
	case SortMostRegistered:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ParticipantCount > sorted[j].ParticipantCount
		})
	case SortCampFees:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Fees < sorted[j].Fees
		})
	case SortAlphabetical:
		sort.SliceStable(sorted, func(i, j int) bool {
			return strings.ToLower(sorted[i].Name) < strings.ToLower(sorted[j].Name)
		})
	}
	return sorted
}
