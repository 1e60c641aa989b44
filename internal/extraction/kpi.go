// Package extraction issues LLM extraction requests over canonical sheet text
// and reconciles the responses into the run's aggregate artifacts.
package extraction

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ShravaniAWanjari/parser-pipeline/internal/llm"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/observability"
	"github.com/ShravaniAWanjari/parser-pipeline/internal/workbook"
)

// KPIAliases is the closed vocabulary of recognized KPI keys with their unit
// descriptions. Aliases outside this set returned by the model are still
// accepted and merged.
var KPIAliases = map[string]string{
	"accidents":          "Number of safety incidents reported",
	"productionLossHrs":  "Production hours lost due to supplier-caused material shortage",
	"okDeliveryPercent":  "Percentage of OK deliveries based on ACMA standards",
	"trips":              "Number of shipment trips completed per month",
	"quantityShipped":    "Number of parts shipped by the supplier",
	"partsPerTrip":       "Efficiency metric showing avg. parts shipped per trip",
	"vehicleTAT":         "Average vehicle turnaround time at the plant (in hours)",
	"machineDowntimeHrs": "Machine breakdown time (in hours)",
	"machineBreakdowns":  "Number of machine breakdowns",
}

// kpiSourceNames maps the KPI row labels as they appear in supplier sheets to
// their aliases; the mapping is embedded in the extraction prompt.
var kpiSourceNames = map[string]string{
	"Safety- Accident data":                                              "accidents",
	"Production loss due to Material shortage":                           "productionLossHrs",
	"OK delivery cycles- as per delivery calculation sheet of ACMA (%)":  "okDeliveryPercent",
	"Number of trips / month":                                            "trips",
	"Qty Shipped / month":                                                "quantityShipped",
	"No of Parts/ Trip":                                                  "partsPerTrip",
	"Vehicle turnaround time":                                            "vehicleTAT",
	"Machin break down Hrs":                                              "machineDowntimeHrs",
	"No of Machines breakdown":                                           "machineBreakdowns",
}

// MonthValues maps each month abbreviation to a nullable numeric value.
type MonthValues map[string]*float64

// KPIAggregate is the cross-supplier result of one extraction run, keyed by
// KPI alias and supplier name. It is populated sheet by sheet and never
// mutated after the run completes.
type KPIAggregate struct {
	GeneratedOn string
	KPIs        map[string]map[string]MonthValues
}

// NewKPIAggregate creates an empty aggregate stamped with today's date.
func NewKPIAggregate() *KPIAggregate {
	return &KPIAggregate{
		GeneratedOn: time.Now().Format("2006-01-02"),
		KPIs:        make(map[string]map[string]MonthValues),
	}
}

// Merge folds one per-sheet extraction response into the aggregate. Every
// alias present in the response gets all twelve months, absent months filled
// with null, and the (alias, supplier) slot is overwritten wholesale.
func (a *KPIAggregate) Merge(supplier string, kpis map[string]MonthValues) {
	for alias, values := range kpis {
		complete := make(MonthValues, len(workbook.Months))
		for _, month := range workbook.Months {
			complete[month] = values[month]
		}

		if a.KPIs[alias] == nil {
			a.KPIs[alias] = make(map[string]MonthValues)
		}
		a.KPIs[alias][supplier] = complete
	}
}

// MarshalJSON flattens the aggregate into the artifact layout: generatedOn and
// kpiMetadata alongside one top-level key per alias.
func (a *KPIAggregate) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(a.KPIs)+2)
	out["generatedOn"] = a.GeneratedOn
	out["kpiMetadata"] = map[string]interface{}{
		"unitDescriptions": KPIAliases,
	}
	for alias, suppliers := range a.KPIs {
		out[alias] = suppliers
	}
	return json.Marshal(out)
}

// kpiResponse is the schema the model is asked to produce per sheet.
type kpiResponse struct {
	Supplier string                 `json:"supplier"`
	KPIs     map[string]MonthValues `json:"kpis"`
}

// KPIExtractor runs one extraction call per sheet and merges the results.
type KPIExtractor struct {
	logger    *observability.Logger
	completer llm.Completer
}

// NewKPIExtractor creates a KPI extractor using the given provider client.
func NewKPIExtractor(logger *observability.Logger, completer llm.Completer) *KPIExtractor {
	return &KPIExtractor{logger: logger, completer: completer}
}

// ExtractAll issues exactly one call per sheet, sequentially and without
// retry; a call or decode failure drops that sheet's supplier from the
// aggregate and the run continues.
func (e *KPIExtractor) ExtractAll(ctx context.Context, sheets []workbook.CanonicalSheet) *KPIAggregate {
	aggregate := NewKPIAggregate()

	for _, sheet := range sheets {
		log := e.logger.WithSheet(sheet.OriginalName)

		start := time.Now()
		content, err := e.completer.Complete(ctx, llm.CompletionRequest{
			System:      kpiSystemPrompt,
			User:        buildKPIPrompt(sheet.Supplier, sheet.Text),
			Temperature: 0,
		})
		if err != nil {
			log.Error().Err(err).Msg("KPI extraction call failed")
			continue
		}
		log.Debug().Dur("elapsed", time.Since(start)).Msg("KPI extraction call completed")

		raw, err := llm.ExtractJSONObject(content)
		if err != nil {
			log.Error().Err(err).Msg("No JSON object in KPI response")
			continue
		}

		var resp kpiResponse
		if err := json.Unmarshal([]byte(raw), &resp); err != nil {
			log.Error().Err(err).Msg("Failed to decode KPI response")
			continue
		}

		aggregate.Merge(sheet.Supplier, resp.KPIs)
		log.Info().Int("kpis", len(resp.KPIs)).Msg("Merged KPI extraction result")
	}

	return aggregate
}
