// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	app "github.com/okian/lodestar/internal/app"
	"github.com/okian/lodestar/internal/domain/model"
	signal "github.com/okian/lodestar/internal/domain/signal"
)

// TelemetryHandler handles telemetry ingestion requests.
type TelemetryHandler struct {
	deps         Dependencies
	maxBodyBytes int64
}

// NewTelemetryHandler creates a new telemetry handler.
func NewTelemetryHandler(deps Dependencies, maxBodyBytes int64) *TelemetryHandler {
	return &TelemetryHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

// telemetryRequest mirrors the JSON body of POST /api/v1/telemetry.
// Signal values stay untyped here; the decoder runs in UseNumber mode so
// the integer/float wire distinction survives into classification.
type telemetryRequest struct {
	VesselID     string         `json:"vesselId"`
	TimestampUTC string         `json:"timestampUTC"`
	EpochUTC     *int64         `json:"epochUTC,omitempty"`
	Signals      map[string]any `json:"signals"`
}

func (r telemetryRequest) validate() error {
	switch {
	case strings.TrimSpace(r.VesselID) == "":
		return errors.New("missing vesselId")
	case strings.TrimSpace(r.TimestampUTC) == "":
		return errors.New("missing timestampUTC")
	case r.Signals == nil:
		return errors.New("missing signals")
	}
	return nil
}

// toBatch converts the wire request into the domain batch.
func (r telemetryRequest) toBatch() model.Batch {
	readings := make(map[string]signal.RawValue, len(r.Signals))
	for name, value := range r.Signals {
		readings[name] = toRawValue(value)
	}
	batch := model.Batch{
		VesselID:     r.VesselID,
		TimestampUTC: r.TimestampUTC,
		Readings:     readings,
	}
	if r.EpochUTC != nil {
		batch.EpochUTC = *r.EpochUTC
	}
	return batch
}

// toRawValue maps a decoded JSON value onto the domain tagged union.
// Numbers arrive as json.Number; the literal form decides integer vs
// float, mirroring how the producers encode the two signal kinds.
func toRawValue(value any) signal.RawValue {
	switch v := value.(type) {
	case json.Number:
		literal := v.String()
		if strings.ContainsAny(literal, ".eE") {
			f, err := v.Float64()
			if err != nil {
				return signal.NonNumeric(signal.ShapeOther)
			}
			return signal.Float(f)
		}
		i, err := v.Int64()
		if err != nil {
			// Integer literal too large for int64; still a float64-representable number.
			f, ferr := v.Float64()
			if ferr != nil {
				return signal.NonNumeric(signal.ShapeOther)
			}
			return signal.Float(f)
		}
		return signal.Integer(i)
	case string:
		return signal.NonNumeric(signal.ShapeString)
	case bool:
		return signal.NonNumeric(signal.ShapeBool)
	default:
		return signal.NonNumeric(signal.ShapeOther)
	}
}

// ingestResponse mirrors the success body of POST /api/v1/telemetry.
type ingestResponse struct {
	OK           bool   `json:"ok"`
	VesselID     string `json:"vesselId"`
	ValidSignals int    `json:"validSignals"`
	ValidationMs int64  `json:"validationMs"`
	IngestionMs  int64  `json:"ingestionMs"`
	TotalMs      int64  `json:"totalMs"`
}

// HandlePostTelemetry handles POST /api/v1/telemetry requests.
func (h *TelemetryHandler) HandlePostTelemetry(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_telemetry"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()

	var req telemetryRequest
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, ErrBadRequest))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	summary, err := h.deps.Ingest(r.Context(), req.toBatch())
	switch {
	case err == nil:
	case errors.Is(err, app.ErrInvalidTimestamp):
		writeError(w, http.StatusBadRequest, "bad_request", errors.New("invalid timestampUTC"))
		return
	case errors.Is(err, app.ErrUnknownVessel):
		writeError(w, http.StatusForbidden, "unknown_vessel", errors.New("unknown or inactive vessel"))
		return
	default:
		// Storage failure; details are logged upstream and never leak here.
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}

	writeJSON(w, http.StatusOK, ingestResponse{
		OK:           true,
		VesselID:     summary.VesselID,
		ValidSignals: summary.Accepted,
		ValidationMs: summary.ValidationMs,
		IngestionMs:  summary.IngestionMs,
		TotalMs:      summary.TotalMs,
	})
}
