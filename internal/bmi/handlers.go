package bmi

import (
	"encoding/json"
	"math"
	"net/http"

	"github.com/HerbHall/healthgenie/pkg/plugin"
)

// CalculateRequest is the body for POST /bmi/calculate.
type CalculateRequest struct {
	WeightKg float64 `json:"weight_kg"`
	HeightCm float64 `json:"height_cm"`
}

// CalculateResponse is the success body for POST /bmi/calculate.
type CalculateResponse struct {
	BMI      float64 `json:"bmi"`
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Advice   string  `json:"advice"`
	Severity string  `json:"severity"`
}

// Routes implements plugin.HTTPProvider.
func (m *Module) Routes() []plugin.Route {
	return []plugin.Route{
		{Method: "POST", Path: "/calculate", Handler: m.handleCalculate},
	}
}

// handleCalculate computes and classifies a BMI value.
//
//	@Summary		Calculate BMI
//	@Description	Computes the body mass index from weight and height and classifies it.
//	@Tags			bmi
//	@Accept			json
//	@Produce		json
//	@Param			request body CalculateRequest true "Measurements"
//	@Success		200 {object} CalculateResponse
//	@Failure		400 {object} map[string]any "Non-positive measurements"
//	@Router			/bmi/calculate [post]
func (m *Module) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	value, err := Compute(req.WeightKg, req.HeightCm)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Please enter valid positive numbers")
		return
	}

	// Two decimals, matching what the page displays.
	rounded := math.Round(value*100) / 100
	cat := Classify(rounded)

	writeJSON(w, http.StatusOK, CalculateResponse{
		BMI:      rounded,
		Category: cat.Key,
		Label:    cat.Label,
		Advice:   cat.Advice,
		Severity: cat.Severity,
	})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"type":   "https://healthgenie.dev/problems/" + http.StatusText(status),
		"title":  http.StatusText(status),
		"status": status,
		"detail": detail,
	})
}
