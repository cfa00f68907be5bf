package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"biketowork/appctx"
	"biketowork/core"
	"biketowork/middleware"
	"biketowork/models"
	"biketowork/services"
	"biketowork/services/rides"
)

const RideSavedNotice = "Your ride was saved."

// accepted layouts for start_time and end_time, tried in order
var dateTimeLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

type RidesHTTPHandler struct {
	ridesService services.RidesService
	location     *time.Location
	layout       Layout
}

func NewRidesHTTPHandler(ridesService services.RidesService, location *time.Location, layout Layout) *RidesHTTPHandler {
	return &RidesHTTPHandler{
		ridesService: ridesService,
		location:     location,
		layout:       layout,
	}
}

type recentRidesPage struct {
	pageData
	Rides []*models.Ride
}

// rideForm holds the raw submitted values so they can be echoed back
type rideForm struct {
	StartTime string
	EndTime   string
	Distance  string
}

type newRidePage struct {
	pageData
	Form     rideForm
	Errors   core.FieldErrors
	TimeZone string
}

func (h *RidesHTTPHandler) HandleRecentRides(w http.ResponseWriter, r *http.Request) {
	log.Printf("📋 Recent rides request received from %s", r.RemoteAddr)

	notice := popFlash(w, r)
	recent, err := h.ridesService.ListRecentRides(r.Context())
	if err != nil {
		log.Printf("❌ Failed to list recent rides: %v", err)
		renderError(w, r, h.layout, http.StatusInternalServerError, "Recent rides could not be loaded.")
		return
	}

	render(w, http.StatusOK, "recent_rides", recentRidesPage{
		pageData: newPageData(r, h.layout, "Recent rides", notice),
		Rides:    recent,
	})
}

func (h *RidesHTTPHandler) HandleNewRide(w http.ResponseWriter, r *http.Request) {
	// Get user entity from context (set by authentication middleware)
	user, ok := appctx.GetUser(r.Context())
	if !ok {
		log.Printf("❌ User not found in context")
		http.Error(w, "authentication required", http.StatusUnauthorized)
		return
	}

	if r.Method != http.MethodPost {
		h.renderForm(w, r, http.StatusOK, rideForm{}, nil)
		return
	}

	log.Printf("➕ New ride submitted by user %s", user.ID)
	if err := r.ParseForm(); err != nil {
		log.Printf("❌ Failed to parse ride form: %v", err)
		renderError(w, r, h.layout, http.StatusBadRequest, "The submitted form could not be read.")
		return
	}

	form := rideForm{
		StartTime: strings.TrimSpace(r.PostForm.Get("start_time")),
		EndTime:   strings.TrimSpace(r.PostForm.Get("end_time")),
		Distance:  strings.TrimSpace(r.PostForm.Get("distance")),
	}
	input, fieldErrs := h.bindRideForm(form)
	if len(fieldErrs) > 0 {
		// report domain rules for the fields that did parse as well
		fieldErrs.Merge(rides.ValidateRideInput(input))
		h.renderForm(w, r, http.StatusUnprocessableEntity, form, fieldErrs)
		return
	}

	ride, err := h.ridesService.CreateRide(r.Context(), user.ID, input)
	if err != nil {
		var validationErr *core.ValidationError
		if errors.As(err, &validationErr) {
			h.renderForm(w, r, http.StatusUnprocessableEntity, form, validationErr.Fields)
			return
		}
		log.Printf("❌ Failed to create ride: %v", err)
		renderError(w, r, h.layout, http.StatusInternalServerError, "Your ride could not be saved.")
		return
	}

	log.Printf("✅ Ride %s saved for user %s", ride.ID, user.ID)
	setFlash(w, RideSavedNotice)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// bindRideForm converts raw form values into a RideInput. Fields that fail to parse are left zero.
func (h *RidesHTTPHandler) bindRideForm(form rideForm) (models.RideInput, core.FieldErrors) {
	errs := core.FieldErrors{}
	var input models.RideInput

	if form.StartTime == "" {
		errs.Add("start_time", rides.MsgRequired)
	} else if t, err := parseDateTime(form.StartTime, h.location); err != nil {
		errs.Add("start_time", rides.MsgInvalidDateTime)
	} else {
		input.StartTime = t
	}

	if form.EndTime == "" {
		errs.Add("end_time", rides.MsgRequired)
	} else if t, err := parseDateTime(form.EndTime, h.location); err != nil {
		errs.Add("end_time", rides.MsgInvalidDateTime)
	} else {
		input.EndTime = t
	}

	if form.Distance == "" {
		errs.Add("distance", rides.MsgRequired)
	} else if d, err := decimal.NewFromString(form.Distance); err != nil {
		errs.Add("distance", rides.MsgInvalidNumber)
	} else {
		input.Distance = d
	}

	return input, errs
}

// parseDateTime reads local wall-clock values in loc, or RFC 3339 values with their own offset
func parseDateTime(value string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}

	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.ParseInLocation(layout, value, loc)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (h *RidesHTTPHandler) renderForm(
	w http.ResponseWriter,
	r *http.Request,
	status int,
	form rideForm,
	errs core.FieldErrors,
) {
	render(w, status, "new_ride", newRidePage{
		pageData: newPageData(r, h.layout, "Log a ride", ""),
		Form:     form,
		Errors:   errs,
		TimeZone: h.location.String(),
	})
}

func (h *RidesHTTPHandler) SetupEndpoints(router *mux.Router, authMiddleware *middleware.AuthMiddleware) {
	log.Printf("🚀 Registering ride endpoints")

	router.HandleFunc("/", h.HandleRecentRides).Methods("GET")
	log.Printf("✅ GET / endpoint registered")

	router.HandleFunc("/new/", authMiddleware.WithAuth(h.HandleNewRide)).Methods("GET", "POST")
	log.Printf("✅ GET, POST /new/ endpoints registered")

	log.Printf("✅ All ride endpoints registered successfully")
}
