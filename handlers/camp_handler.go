package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/medcamp/camp-system/middleware"
	"github.com/medcamp/camp-system/services"
)

type CampHandler struct {
	campService services.CampService
	logger      *slog.Logger
}

func NewCampHandler(campService services.CampService, logger *slog.Logger) *CampHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &CampHandler{
		campService: campService,
		logger:      logger,
	}
}

// campRequest повторяет легаси-формат тела create/update лагеря. Старый
// клиент присылает organizerName/organizerEmail/participants (сервер берёт
// организатора из токена, счётчик ведёт сам), а fees на update приходит
// строкой из формы.
type campRequest struct {
	Name           string      `json:"campName"`
	ImageURL       *string     `json:"image"`
	Location       string      `json:"location"`
	DateTime       string      `json:"dateTime"`
	Fees           json.Number `json:"fees"`
	DoctorName     string      `json:"doctorName"`
	Description    string      `json:"description"`
	OrganizerName  string      `json:"organizerName,omitempty"`
	OrganizerEmail string      `json:"organizerEmail,omitempty"`
	Participants   json.Number `json:"participants,omitempty"`
	Status         string      `json:"status,omitempty"`
	ID             json.Number `json:"id,omitempty"`
}

func (req campRequest) toInput() (services.CampInput, error) {
	fees := 0.0
	if req.Fees.String() != "" {
		parsed, err := req.Fees.Float64()
		if err != nil {
			return services.CampInput{}, errInvalidFees
		}
		fees = parsed
	}
	return services.CampInput{
		Name:        req.Name,
		ImageURL:    req.ImageURL,
		Location:    req.Location,
		DateTime:    req.DateTime,
		Fees:        fees,
		DoctorName:  req.DoctorName,
		Description: req.Description,
	}, nil
}

func listParams(r *http.Request) (search string, sortBy services.SortKey) {
	q := r.URL.Query()
	search = q.Get("search")
	sortBy = services.SortKey(q.Get("sortBy"))
	if sortBy == "" {
		sortBy = services.SortDefault
	}
	return search, sortBy
}

// ListCamps обрабатывает GET /camps?search=&sortBy=
func (h *CampHandler) ListCamps(w http.ResponseWriter, r *http.Request) {
	search, sortBy := listParams(r)

	camps, err := h.campService.ListCamps(r.Context(), search, sortBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"camps": camps}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListAvailable обрабатывает GET /available-camps?search=&sortBy=
func (h *CampHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	search, sortBy := listParams(r)

	camps, err := h.campService.ListAvailableCamps(r.Context(), search, sortBy)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"camps": camps}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetCamp обрабатывает GET /available-camps/{campID}
func (h *CampHandler) GetCamp(w http.ResponseWriter, r *http.Request) {
	campID, err := getIDFromURL(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camp, err := h.campService.GetCamp(r.Context(), campID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"camp": camp}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListOrganizerCamps обрабатывает GET /organizer-camps
func (h *CampHandler) ListOrganizerCamps(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	camps, err := h.campService.ListOrganizerCamps(r.Context(), email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"camps": camps}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Create обрабатывает POST /camps
func (h *CampHandler) Create(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	var req campRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camp, err := h.campService.CreateCamp(r.Context(), input, email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("camp created", slog.Int("camp_id", camp.ID), slog.String("organizer", email))

	err = writeJSON(w, http.StatusCreated, jsonResponse{"camp": camp}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Update обрабатывает PATCH /update-camp/{campID}
func (h *CampHandler) Update(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	campID, err := getIDFromURL(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var req campRequest
	if err := readJSON(w, r, &req); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input, err := req.toInput()
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	camp, err := h.campService.UpdateCamp(r.Context(), campID, input, email)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"camp": camp}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Delete обрабатывает DELETE /delete-camp/{campID}
func (h *CampHandler) Delete(w http.ResponseWriter, r *http.Request) {
	email, err := middleware.GetUserEmailFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, err.Error())
		return
	}

	campID, err := getIDFromURL(r, "campID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.campService.DeleteCamp(r.Context(), campID, email); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	h.logger.Info("camp deleted", slog.Int("camp_id", campID), slog.String("organizer", email))

	err = writeJSON(w, http.StatusOK, jsonResponse{"message": "camp deleted successfully"}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// UploadImage обрабатывает POST /upload-image (multipart/form-data, поле "image")
func (h *CampHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")

	url, err := h.campService.UploadCampImage(r.Context(), file, contentType)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"url": url}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
