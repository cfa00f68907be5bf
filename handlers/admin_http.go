package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"biketowork/core"
	"biketowork/middleware"
	"biketowork/models"
	"biketowork/services"
)

const (
	adminRidesPath    = "/admin/rides/"
	RideDeletedNotice = "The ride was deleted."
)

type AdminHTTPHandler struct {
	ridesService services.RidesService
	location     *time.Location
	layout       Layout
}

func NewAdminHTTPHandler(ridesService services.RidesService, location *time.Location, layout Layout) *AdminHTTPHandler {
	return &AdminHTTPHandler{
		ridesService: ridesService,
		location:     location,
		layout:       layout,
	}
}

type adminRow struct {
	ID    string
	Cells []string
}

type adminRidesPage struct {
	pageData
	Columns      []models.AdminColumn
	Rows         []adminRow
	Page         *models.RidesPage
	PreviousPage int
	NextPage     int
}

func (h *AdminHTTPHandler) HandleIndex(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, adminRidesPath, http.StatusFound)
}

func (h *AdminHTTPHandler) HandleListRides(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Admin rides list request received from %s", r.RemoteAddr)

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	notice := popFlash(w, r)
	ridesPage, err := h.ridesService.ListRides(r.Context(), page)
	if err != nil {
		log.Printf("❌ Failed to list rides: %v", err)
		renderError(w, r, h.layout, http.StatusInternalServerError, "Rides could not be loaded.")
		return
	}

	rows := make([]adminRow, 0, len(ridesPage.Rides))
	for _, ride := range ridesPage.Rides {
		cells := make([]string, 0, len(models.RideAdminColumns))
		for _, column := range models.RideAdminColumns {
			cells = append(cells, column.Value(ride, h.location))
		}
		rows = append(rows, adminRow{ID: ride.ID, Cells: cells})
	}

	render(w, http.StatusOK, "admin_rides", adminRidesPage{
		pageData:     newPageData(r, h.layout, "Rides", notice),
		Columns:      models.RideAdminColumns,
		Rows:         rows,
		Page:         ridesPage,
		PreviousPage: ridesPage.Page - 1,
		NextPage:     ridesPage.Page + 1,
	})
}

func (h *AdminHTTPHandler) HandleDeleteRide(w http.ResponseWriter, r *http.Request) {
	rideID := mux.Vars(r)["id"]
	log.Printf("🗑️ Admin delete request for ride %s", rideID)

	if err := h.ridesService.DeleteRide(r.Context(), rideID); err != nil {
		if core.IsNotFoundError(err) {
			log.Printf("❌ Ride %s not found", rideID)
			renderError(w, r, h.layout, http.StatusNotFound, "That ride does not exist.")
			return
		}
		log.Printf("❌ Failed to delete ride %s: %v", rideID, err)
		renderError(w, r, h.layout, http.StatusInternalServerError, "The ride could not be deleted.")
		return
	}

	log.Printf("✅ Ride %s deleted", rideID)
	setFlash(w, RideDeletedNotice)
	http.Redirect(w, r, adminRidesPath, http.StatusSeeOther)
}

func (h *AdminHTTPHandler) SetupEndpoints(router *mux.Router, authMiddleware *middleware.AuthMiddleware) {
	log.Printf("🚀 Registering admin endpoints")

	router.HandleFunc("/admin/", authMiddleware.WithAdmin(h.HandleIndex)).Methods("GET")
	log.Printf("✅ GET /admin/ endpoint registered")

	router.HandleFunc(adminRidesPath, authMiddleware.WithAdmin(h.HandleListRides)).Methods("GET")
	log.Printf("✅ GET %s endpoint registered", adminRidesPath)

	router.HandleFunc("/admin/rides/{id}/delete", authMiddleware.WithAdmin(h.HandleDeleteRide)).Methods("POST")
	log.Printf("✅ POST /admin/rides/{id}/delete endpoint registered")

	log.Printf("✅ All admin endpoints registered successfully")
}
