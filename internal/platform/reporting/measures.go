package reporting

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/vitalwatch/vitalwatch/internal/platform/auth"
)

// MeasureParameter is a numeric query parameter accepted by a measure,
// bound positionally into the measure SQL.
type MeasureParameter struct {
	Name    string `json:"name"`
	Default int    `json:"default"`
}

// MeasureDefinition defines a fleet-level reporting measure with its SQL query.
type MeasureDefinition struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Description string             `json:"description"`
	SQL         string             `json:"sql"`
	Parameters  []MeasureParameter `json:"parameters,omitempty"`
}

// MeasureReport holds the results of evaluating a measure.
type MeasureReport struct {
	MeasureID   string                   `json:"measure_id"`
	MeasureName string                   `json:"measure_name"`
	GeneratedAt time.Time                `json:"generated_at"`
	Results     []map[string]interface{} `json:"results"`
	Parameters  map[string]string        `json:"parameters,omitempty"`
}

// PredefinedMeasures is the list of available fleet measures.
var PredefinedMeasures = []MeasureDefinition{
	{
		ID:          "patient-count",
		Name:        "Patient Count",
		Description: "Total number of registered patients",
		SQL:         `SELECT COUNT(*) AS total FROM patients`,
	},
	{
		ID:          "reading-volume-by-day",
		Name:        "Reading Volume by Day",
		Description: "Number of readings stored per day over a trailing window",
		SQL:         `SELECT date_trunc('day', recorded_at)::date AS day, COUNT(*) AS total FROM readings WHERE recorded_at > NOW() - ($1 * INTERVAL '1 day') GROUP BY day ORDER BY day DESC`,
		Parameters:  []MeasureParameter{{Name: "days", Default: 7}},
	},
	{
		ID:          "active-medication-courses",
		Name:        "Active Medication Courses",
		Description: "Medication courses currently in effect",
		SQL:         `SELECT COUNT(*) AS total FROM medications WHERE (start_date IS NULL OR start_date <= CURRENT_DATE) AND (end_date IS NULL OR end_date >= CURRENT_DATE)`,
	},
	{
		ID:          "condition-prevalence",
		Name:        "Condition Prevalence",
		Description: "Active medical conditions grouped by name",
		SQL:         `SELECT name, COUNT(*) AS total FROM medical_conditions WHERE status = 'active' GROUP BY name ORDER BY total DESC, name`,
	},
}

// MeasuresHandler provides HTTP handlers for the fleet measures API.
type MeasuresHandler struct {
	pool *pgxpool.Pool
}

// NewMeasuresHandler creates a new measures handler.
func NewMeasuresHandler(pool *pgxpool.Pool) *MeasuresHandler {
	return &MeasuresHandler{pool: pool}
}

// RegisterRoutes registers the measures API routes.
func (h *MeasuresHandler) RegisterRoutes(api *echo.Group) {
	group := api.Group("/reports", auth.RequireRole("admin", "physician"))
	group.GET("/measures", h.ListMeasures)
	group.GET("/measures/:id/evaluate", h.EvaluateMeasure)
}

// ListMeasures returns all available measure definitions.
func (h *MeasuresHandler) ListMeasures(c echo.Context) error {
	return c.JSON(http.StatusOK, PredefinedMeasures)
}

// EvaluateMeasure executes a measure's SQL and returns the results.
func (h *MeasuresHandler) EvaluateMeasure(c echo.Context) error {
	measure := FindMeasure(c.Param("id"))
	if measure == nil {
		return echo.NewHTTPError(http.StatusNotFound, "measure not found")
	}

	params := map[string]string{}
	args := make([]interface{}, 0, len(measure.Parameters))
	for _, p := range measure.Parameters {
		v := p.Default
		if raw := c.QueryParam(p.Name); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid %s: %s", p.Name, raw))
			}
			v = n
		}
		params[p.Name] = strconv.Itoa(v)
		args = append(args, v)
	}

	results, err := h.executeSQL(c.Request().Context(), measure.SQL, args...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, fmt.Sprintf("query failed: %v", err))
	}

	report := MeasureReport{
		MeasureID:   measure.ID,
		MeasureName: measure.Name,
		GeneratedAt: time.Now(),
		Results:     results,
		Parameters:  params,
	}

	return c.JSON(http.StatusOK, report)
}

// executeSQL runs a measure query and returns results as a slice of maps.
func (h *MeasuresHandler) executeSQL(ctx context.Context, sql string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := h.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fieldDescs := rows.FieldDescriptions()
	var results []map[string]interface{}

	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}

		row := make(map[string]interface{}, len(fieldDescs))
		for i, fd := range fieldDescs {
			row[string(fd.Name)] = values[i]
		}
		results = append(results, row)
	}

	if results == nil {
		results = []map[string]interface{}{}
	}

	return results, rows.Err()
}

// FindMeasure looks up a measure by ID.
func FindMeasure(id string) *MeasureDefinition {
	for i := range PredefinedMeasures {
		if PredefinedMeasures[i].ID == id {
			return &PredefinedMeasures[i]
		}
	}
	return nil
}
