package http

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/couchcryptid/hazard-risk-dashboard/internal/dashboard"
	"github.com/go-playground/validator/v10"
)

type assessmentQuery struct {
	Lat *float64 `query:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `query:"lon" validate:"required,gte=-180,lte=180"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return v
}

func (s *Server) handleAssessment(w http.ResponseWriter, r *http.Request) {
	var q assessmentQuery
	var err error
	if q.Lat, err = parseOptionalFloat(r, "lat"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if q.Lon, err = parseOptionalFloat(r, "lon"); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.validate.Struct(q); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	writeJSON(w, http.StatusOK, s.dashboard.Assess(r.Context(), *q.Lat, *q.Lon))
}

func (s *Server) handleHazards(w http.ResponseWriter, r *http.Request) {
	fires, err := parseBool(r, "fires", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	alerts, err := parseBool(r, "alerts", true)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, s.dashboard.Hazards(r.Context(), dashboard.HazardQuery{Fires: fires, Alerts: alerts}))
}

func parseOptionalFloat(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s must be a number", name)
	}
	return &v, nil
}

func parseBool(r *http.Request, name string, def bool) (bool, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be true or false", name)
	}
	return v, nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	fe := verrs[0]
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "gte", "lte":
		lo, hi := "-90", "90"
		if fe.Field() == "lon" {
			lo, hi = "-180", "180"
		}
		return fmt.Sprintf("%s must be between %s and %s", fe.Field(), lo, hi)
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
